package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

func newTestService(st *store.Memory, today string) *Service {
	s := New(st, zap.NewNop().Sugar())
	day := dates.MustParseDate(today)
	s.now = func() time.Time { return day.Time() }
	return s
}

func activeMembership(id string) *models.Membership {
	return &models.Membership{
		ID:        id,
		MemberID:  "M000001",
		PlanID:    "P001",
		StartDate: dates.MustParseDate("2024-01-01"),
		EndDate:   dates.MustParseDate("2024-06-30"),
		Status:    types.MembershipStatusActive,
	}
}

func TestCanFreeze(t *testing.T) {
	st := store.NewMemory()

	tests := []struct {
		name     string
		status   types.MembershipStatus
		endDate  string
		today    string
		eligible bool
		message  string
	}{
		{
			name:     "active with 60 days remaining",
			status:   types.MembershipStatusActive,
			endDate:  "2024-06-30",
			today:    "2024-05-01",
			eligible: true,
			message:  "Membership is eligible for freezing",
		},
		{
			name:    "frozen membership",
			status:  types.MembershipStatusFrozen,
			endDate: "2024-06-30",
			today:   "2024-05-01",
			message: "Only active memberships can be frozen",
		},
		{
			name:    "exactly 30 days remaining",
			status:  types.MembershipStatusActive,
			endDate: "2024-05-31",
			today:   "2024-05-01",
			message: "Membership must have more than 30 days remaining to freeze",
		},
		{
			name:     "31 days remaining",
			status:   types.MembershipStatusActive,
			endDate:  "2024-06-01",
			today:    "2024-05-01",
			eligible: true,
			message:  "Membership is eligible for freezing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(st, tt.today)
			m := activeMembership("MS1")
			m.Status = tt.status
			m.EndDate = dates.MustParseDate(tt.endDate)

			eligible, msg := s.CanFreeze(m)
			assert.Equal(t, tt.eligible, eligible)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestAddFreeze(t *testing.T) {
	ctx := context.Background()

	t.Run("active window freezes immediately", func(t *testing.T) {
		st := store.NewMemory()
		m := activeMembership("MS1")
		st.Memberships = append(st.Memberships, m)
		s := newTestService(st, "2024-05-01")

		res, err := s.AddFreeze(ctx, "MS1", dates.MustParseDate("2024-05-01"), dates.MustParseDate("2024-05-31"), "Vacation", "admin")
		require.NoError(t, err)
		require.Equal(t, OutcomeOK, res.Outcome)

		assert.Equal(t, "2024-07-30", res.NewEndDate.String())
		assert.Equal(t, "2024-07-30", m.EndDate.String())
		assert.Equal(t, types.MembershipStatusFrozen, m.Status)
		assert.Equal(t, 30, m.TotalFreezeDays)

		freezes := m.Freezes()
		require.Len(t, freezes, 1)
		assert.Equal(t, "F001", freezes[0].ID)
		assert.Equal(t, 30, freezes[0].FreezeDays)
		assert.Equal(t, "Vacation", freezes[0].Reason)
		assert.Equal(t, "admin", freezes[0].ApprovedBy)
		assert.Equal(t, 1, st.SaveCount)
	})

	t.Run("future window keeps membership active", func(t *testing.T) {
		st := store.NewMemory()
		m := activeMembership("MS1")
		st.Memberships = append(st.Memberships, m)
		s := newTestService(st, "2024-05-01")

		res, err := s.AddFreeze(ctx, "MS1", dates.MustParseDate("2024-06-01"), dates.MustParseDate("2024-06-11"), "Travel", "admin")
		require.NoError(t, err)
		require.Equal(t, OutcomeOK, res.Outcome)

		assert.Equal(t, types.MembershipStatusActive, m.Status)
		assert.Equal(t, "2024-07-10", m.EndDate.String())
	})

	t.Run("unknown membership", func(t *testing.T) {
		st := store.NewMemory()
		s := newTestService(st, "2024-05-01")

		res, err := s.AddFreeze(ctx, "MS404", dates.MustParseDate("2024-05-01"), dates.MustParseDate("2024-05-31"), "x", "admin")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, res.Outcome)
		assert.Equal(t, "Membership not found", res.Message)
	})

	t.Run("not eligible reuses eligibility message", func(t *testing.T) {
		st := store.NewMemory()
		m := activeMembership("MS1")
		m.Status = types.MembershipStatusExpired
		st.Memberships = append(st.Memberships, m)
		s := newTestService(st, "2024-05-01")

		res, err := s.AddFreeze(ctx, "MS1", dates.MustParseDate("2024-05-01"), dates.MustParseDate("2024-05-31"), "x", "admin")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotEligible, res.Outcome)
		assert.Equal(t, "Only active memberships can be frozen", res.Message)
	})

	t.Run("reversed range rejected", func(t *testing.T) {
		st := store.NewMemory()
		m := activeMembership("MS1")
		st.Memberships = append(st.Memberships, m)
		s := newTestService(st, "2024-05-01")

		res, err := s.AddFreeze(ctx, "MS1", dates.MustParseDate("2024-05-31"), dates.MustParseDate("2024-05-01"), "x", "admin")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalidRange, res.Outcome)

		res, err = s.AddFreeze(ctx, "MS1", dates.MustParseDate("2024-05-01"), dates.MustParseDate("2024-05-01"), "x", "admin")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalidRange, res.Outcome)
		assert.Equal(t, 0, st.SaveCount)
	})
}

// End date must always equal the contractual end date plus the sum of all
// committed freeze days.
func TestAddFreezeExtensionInvariant(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m := activeMembership("MS1")
	originalEnd := m.EndDate
	st.Memberships = append(st.Memberships, m)
	s := newTestService(st, "2024-03-01")

	// Future-dated windows leave the membership Active, so several can be
	// booked back to back.
	windows := [][2]string{
		{"2024-04-01", "2024-04-08"},
		{"2024-05-01", "2024-05-11"},
		{"2024-06-01", "2024-06-16"},
	}
	for _, w := range windows {
		res, err := s.AddFreeze(ctx, "MS1", dates.MustParseDate(w[0]), dates.MustParseDate(w[1]), "trip", "admin")
		require.NoError(t, err)
		require.Equal(t, OutcomeOK, res.Outcome)
	}

	total := 0
	for _, f := range m.Freezes() {
		total += f.FreezeDays
	}
	assert.Equal(t, 7+10+15, total)
	assert.Equal(t, m.TotalFreezeDays, total)
	assert.True(t, originalEnd.AddDays(total).Equal(m.EndDate))
	assert.Equal(t, []string{"F001", "F002", "F003"}, []string{m.Freezes()[0].ID, m.Freezes()[1].ID, m.Freezes()[2].ID})
}

func TestUnfreeze(t *testing.T) {
	ctx := context.Background()

	frozenFixture := func() (*store.Memory, *models.Membership) {
		st := store.NewMemory()
		m := activeMembership("MS1")
		st.Memberships = append(st.Memberships, m)
		s := newTestService(st, "2024-05-01")
		res, err := s.AddFreeze(ctx, "MS1", dates.MustParseDate("2024-05-01"), dates.MustParseDate("2024-05-31"), "Vacation", "admin")
		if err != nil || res.Outcome != OutcomeOK {
			panic("fixture freeze failed")
		}
		return st, m
	}

	t.Run("ten days into a thirty day freeze", func(t *testing.T) {
		st, m := frozenFixture()
		s := newTestService(st, "2024-05-11")

		res, err := s.Unfreeze(ctx, "MS1")
		require.NoError(t, err)
		require.Equal(t, OutcomeOK, res.Outcome)

		// 20 unused days retracted: 2024-07-30 back to 2024-06-10.
		assert.Equal(t, "2024-06-10", m.EndDate.String())
		assert.Equal(t, types.MembershipStatusActive, m.Status)
		assert.Equal(t, 10, m.TotalFreezeDays)

		f := m.Freezes()[0]
		assert.Equal(t, "2024-05-10", f.FreezeEnd.String())
		assert.Equal(t, 10, f.FreezeDays)
		assert.Equal(t, "Vacation (Unfrozen early)", f.Reason)
	})

	t.Run("same day unfreeze leaves zero length marker", func(t *testing.T) {
		st, m := frozenFixture()
		s := newTestService(st, "2024-05-01")

		res, err := s.Unfreeze(ctx, "MS1")
		require.NoError(t, err)
		require.Equal(t, OutcomeOK, res.Outcome)

		assert.Equal(t, "2024-06-30", m.EndDate.String())
		assert.Equal(t, 0, m.TotalFreezeDays)

		f := m.Freezes()[0]
		require.Len(t, m.Freezes(), 1)
		assert.Equal(t, 0, f.FreezeDays)
		assert.True(t, f.FreezeEnd.Equal(f.FreezeStart))
	})

	t.Run("not frozen", func(t *testing.T) {
		st := store.NewMemory()
		st.Memberships = append(st.Memberships, activeMembership("MS1"))
		s := newTestService(st, "2024-05-01")

		res, err := s.Unfreeze(ctx, "MS1")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFrozen, res.Outcome)
		assert.Equal(t, "Membership is not currently frozen", res.Message)
	})

	t.Run("not found", func(t *testing.T) {
		st := store.NewMemory()
		s := newTestService(st, "2024-05-01")

		res, err := s.Unfreeze(ctx, "MS404")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, res.Outcome)
	})

	t.Run("frozen without covering window self-heals", func(t *testing.T) {
		st := store.NewMemory()
		m := activeMembership("MS1")
		m.Status = types.MembershipStatusFrozen
		m.SetFreezes([]models.FreezeRecord{{
			ID:          "F001",
			FreezeStart: dates.MustParseDate("2024-02-01"),
			FreezeEnd:   dates.MustParseDate("2024-02-10"),
			FreezeDays:  9,
		}})
		st.Memberships = append(st.Memberships, m)
		s := newTestService(st, "2024-05-01")

		res, err := s.Unfreeze(ctx, "MS1")
		require.NoError(t, err)
		assert.Equal(t, OutcomeCorrected, res.Outcome)
		assert.Equal(t, "Membership status corrected to Active", res.Message)
		assert.Equal(t, types.MembershipStatusActive, m.Status)
		assert.Equal(t, 1, st.SaveCount)
	})
}

func TestUpdateMembershipStatuses(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	// Active membership whose freeze window covers today: should freeze.
	a := activeMembership("MS1")
	a.SetFreezes([]models.FreezeRecord{{
		ID: "F001", FreezeStart: dates.MustParseDate("2024-05-01"),
		FreezeEnd: dates.MustParseDate("2024-05-31"), FreezeDays: 30,
	}})

	// Frozen membership whose window lapsed, term still running: back to Active.
	b := activeMembership("MS2")
	b.Status = types.MembershipStatusFrozen
	b.SetFreezes([]models.FreezeRecord{{
		ID: "F001", FreezeStart: dates.MustParseDate("2024-04-01"),
		FreezeEnd: dates.MustParseDate("2024-04-10"), FreezeDays: 9,
	}})

	// Frozen membership whose window lapsed, term over: Expired.
	c := activeMembership("MS3")
	c.Status = types.MembershipStatusFrozen
	c.EndDate = dates.MustParseDate("2024-05-01")
	c.SetFreezes([]models.FreezeRecord{{
		ID: "F001", FreezeStart: dates.MustParseDate("2024-04-01"),
		FreezeEnd: dates.MustParseDate("2024-04-10"), FreezeDays: 9,
	}})

	// No freeze history: left alone even while lapsed.
	d := activeMembership("MS4")
	d.EndDate = dates.MustParseDate("2024-01-31")

	st.Memberships = append(st.Memberships, a, b, c, d)
	s := newTestService(st, "2024-05-15")

	changed, err := s.UpdateMembershipStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	assert.Equal(t, types.MembershipStatusFrozen, a.Status)
	assert.Equal(t, types.MembershipStatusActive, b.Status)
	assert.Equal(t, types.MembershipStatusExpired, c.Status)
	assert.Equal(t, types.MembershipStatusActive, d.Status)

	// Idempotent: nothing moves on the second run.
	changed, err = s.UpdateMembershipStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}
