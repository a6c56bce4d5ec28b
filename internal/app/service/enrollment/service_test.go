package enrollment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/app/service/lifecycle"
	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

func newTestService(st *store.Memory, today string) *Service {
	day := dates.MustParseDate(today)
	clock := func() time.Time { return day.Time() }
	log := zap.NewNop().Sugar()
	s := New(st, lifecycle.NewWithClock(st, log, clock), log)
	s.now = clock
	return s
}

func seedCatalog(st *store.Memory) {
	st.Plans = append(st.Plans,
		&models.Plan{ID: "P001", Name: "Monthly", DurationMonths: 1, BasePrice: 3000},
		&models.Plan{ID: "P003", Name: "Quarterly", DurationMonths: 3, BasePrice: 8000},
	)
	st.Trainers = append(st.Trainers,
		&models.Trainer{ID: "T001", Name: "Bilal", MonthlyFee: 2000, Active: true},
	)
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("plan only", func(t *testing.T) {
		st := store.NewMemory()
		seedCatalog(st)
		s := newTestService(st, "2024-05-01")

		res, err := s.Enroll(ctx, EnrollInput{
			FirstName: "Ali", LastName: "Khan", Contact: "03001234567", PlanID: "P003",
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(res.Member.ID, "M"))
		assert.Equal(t, "2024-05-01", res.Member.JoinDate.String())

		assert.True(t, strings.HasPrefix(res.Membership.ID, "MS"))
		assert.Equal(t, types.MembershipStatusActive, res.Membership.Status)
		assert.Equal(t, "2024-05-01", res.Membership.StartDate.String())
		// Three 30-day months.
		assert.Equal(t, "2024-07-30", res.Membership.EndDate.String())
		assert.Nil(t, res.Membership.AssignedTrainerID)

		assert.True(t, strings.HasPrefix(res.Payment.ID, "PAY"))
		assert.Equal(t, 8000.0, res.Payment.AmountDue)
		assert.Zero(t, res.Payment.AmountPaid)
		assert.Equal(t, types.PaymentStatusUnpaid, res.Payment.Status)
		assert.Equal(t, "2024-05-01", res.Payment.DueDate.String())

		require.Len(t, st.Members, 1)
		require.Len(t, st.Memberships, 1)
		require.Len(t, st.Payments, 1)
	})

	t.Run("trainer fee added to dues", func(t *testing.T) {
		st := store.NewMemory()
		seedCatalog(st)
		s := newTestService(st, "2024-05-01")

		trainerID := "T001"
		res, err := s.Enroll(ctx, EnrollInput{
			FirstName: "Sara", LastName: "Ahmed", PlanID: "P001", TrainerID: &trainerID,
		})
		require.NoError(t, err)
		assert.Equal(t, 5000.0, res.Payment.AmountDue)
		require.NotNil(t, res.Membership.AssignedTrainerID)
		assert.Equal(t, "T001", *res.Membership.AssignedTrainerID)
	})

	t.Run("validation failures", func(t *testing.T) {
		st := store.NewMemory()
		seedCatalog(st)
		s := newTestService(st, "2024-05-01")

		_, err := s.Enroll(ctx, EnrollInput{LastName: "Khan", PlanID: "P001"})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = s.Enroll(ctx, EnrollInput{FirstName: "Ali", LastName: "Khan", Contact: "12ab", PlanID: "P001"})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = s.Enroll(ctx, EnrollInput{FirstName: "Ali", LastName: "Khan"})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = s.Enroll(ctx, EnrollInput{FirstName: "Ali", LastName: "Khan", PlanID: "P404"})
		assert.ErrorIs(t, err, ErrValidation)

		assert.Empty(t, st.Memberships)
	})
}

func TestRenew(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedCatalog(st)
	st.Members = append(st.Members, &models.Member{ID: "M1", FirstName: "Ali", LastName: "Khan"})
	st.Memberships = append(st.Memberships, &models.Membership{
		ID: "MS1", MemberID: "M1", PlanID: "P001",
		StartDate: dates.MustParseDate("2024-01-01"),
		EndDate:   dates.MustParseDate("2024-04-25"),
		Status:    types.MembershipStatusExpired,
	})
	s := newTestService(st, "2024-05-01")

	res, err := s.Renew(ctx, "M1", "P003", nil)
	require.NoError(t, err)

	assert.Equal(t, "M1", res.Membership.MemberID)
	assert.NotEqual(t, "MS1", res.Membership.ID)
	assert.Equal(t, types.MembershipStatusActive, res.Membership.Status)
	assert.Equal(t, 8000.0, res.Payment.AmountDue)
	require.Len(t, st.Memberships, 2)

	_, err = s.Renew(ctx, "M404", "P001", nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLatestMembership(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Memberships = append(st.Memberships,
		&models.Membership{ID: "MS1", MemberID: "M1", StartDate: dates.MustParseDate("2023-01-01")},
		&models.Membership{ID: "MS2", MemberID: "M1", StartDate: dates.MustParseDate("2024-03-01")},
		&models.Membership{ID: "MS3", MemberID: "M2", StartDate: dates.MustParseDate("2024-04-01")},
	)
	s := newTestService(st, "2024-05-01")

	latest, err := s.LatestMembership(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, "MS2", latest.ID)

	_, err = s.LatestMembership(ctx, "M404")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestChangePlanTrainer(t *testing.T) {
	ctx := context.Background()

	fixture := func() (*store.Memory, *Service) {
		st := store.NewMemory()
		seedCatalog(st)
		st.Memberships = append(st.Memberships, &models.Membership{
			ID: "MS1", MemberID: "M1", PlanID: "P001",
			StartDate: dates.MustParseDate("2024-04-01"),
			EndDate:   dates.MustParseDate("2024-05-01"),
			Status:    types.MembershipStatusActive,
		})
		return st, newTestService(st, "2024-04-15")
	}

	t.Run("no change mints nothing", func(t *testing.T) {
		st, s := fixture()
		payment, err := s.ChangePlanTrainer(ctx, "MS1", "P001", nil)
		require.NoError(t, err)
		assert.Nil(t, payment)
		assert.Empty(t, st.Payments)
	})

	t.Run("plan change mints payment at new price", func(t *testing.T) {
		st, s := fixture()
		payment, err := s.ChangePlanTrainer(ctx, "MS1", "P003", nil)
		require.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, 8000.0, payment.AmountDue)
		assert.Equal(t, types.PaymentStatusUnpaid, payment.Status)
		assert.Equal(t, "P003", st.Memberships[0].PlanID)
	})

	t.Run("trainer change mints payment including fee", func(t *testing.T) {
		_, s := fixture()
		trainerID := "T001"
		payment, err := s.ChangePlanTrainer(ctx, "MS1", "P001", &trainerID)
		require.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, 5000.0, payment.AmountDue)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	fixture := func(status types.MembershipStatus) (*store.Memory, *Service, *models.Membership) {
		st := store.NewMemory()
		seedCatalog(st)
		m := &models.Membership{
			ID: "MS1", MemberID: "M1", PlanID: "P001",
			StartDate: dates.MustParseDate("2024-01-01"),
			EndDate:   dates.MustParseDate("2024-06-30"),
			Status:    status,
		}
		st.Memberships = append(st.Memberships, m)
		return st, newTestService(st, "2024-05-01"), m
	}

	t.Run("expired drops unpaid payments", func(t *testing.T) {
		st, s, m := fixture(types.MembershipStatusActive)
		st.Payments = append(st.Payments,
			&models.Payment{ID: "PAY1", MembershipID: "MS1", AmountDue: 3000, Status: types.PaymentStatusUnpaid},
			&models.Payment{ID: "PAY2", MembershipID: "MS1", AmountDue: 3000, AmountPaid: 3000, Status: types.PaymentStatusPaid},
			&models.Payment{ID: "PAY3", MembershipID: "MS2", AmountDue: 3000, Status: types.PaymentStatusUnpaid},
		)

		res, err := s.ChangeStatus(ctx, "MS1", types.MembershipStatusExpired, 0, "left town", "admin")
		require.NoError(t, err)
		assert.Equal(t, 1, res.DeletedUnpaid)
		assert.Equal(t, types.MembershipStatusExpired, m.Status)
		require.Len(t, st.Payments, 2)

		history := m.StatusHistory.Data()
		require.Len(t, history, 1)
		assert.Equal(t, types.MembershipStatusActive, history[0].OldStatus)
		assert.Equal(t, types.MembershipStatusExpired, history[0].NewStatus)
		assert.Equal(t, "left town", history[0].Note)
	})

	t.Run("reactivation mints new payment", func(t *testing.T) {
		_, s, m := fixture(types.MembershipStatusExpired)

		res, err := s.ChangeStatus(ctx, "MS1", types.MembershipStatusActive, 0, "came back", "admin")
		require.NoError(t, err)
		require.NotNil(t, res.MintedPayment)
		assert.Equal(t, 3000.0, res.MintedPayment.AmountDue)
		assert.Equal(t, types.PaymentStatusUnpaid, res.MintedPayment.Status)
		assert.Equal(t, types.MembershipStatusActive, m.Status)
	})

	t.Run("frozen goes through freeze accounting", func(t *testing.T) {
		_, s, m := fixture(types.MembershipStatusActive)

		res, err := s.ChangeStatus(ctx, "MS1", types.MembershipStatusFrozen, 1, "", "admin")
		require.NoError(t, err)
		require.NotNil(t, res.Freeze)
		assert.True(t, res.Freeze.OK())

		assert.Equal(t, types.MembershipStatusFrozen, m.Status)
		assert.Equal(t, "2024-07-30", m.EndDate.String())
		require.Len(t, m.Freezes(), 1)
		assert.Equal(t, "Manual Status Change", m.Freezes()[0].Reason)
		require.Len(t, m.StatusHistory.Data(), 1)
	})

	t.Run("ineligible freeze leaves status untouched", func(t *testing.T) {
		_, s, m := fixture(types.MembershipStatusActive)
		m.EndDate = dates.MustParseDate("2024-05-20")

		res, err := s.ChangeStatus(ctx, "MS1", types.MembershipStatusFrozen, 1, "", "admin")
		require.NoError(t, err)
		require.NotNil(t, res.Freeze)
		assert.False(t, res.Freeze.OK())
		assert.Equal(t, types.MembershipStatusActive, m.Status)
		assert.Empty(t, m.StatusHistory.Data())
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		st, s, m := fixture(types.MembershipStatusActive)
		res, err := s.ChangeStatus(ctx, "MS1", types.MembershipStatusActive, 0, "", "admin")
		require.NoError(t, err)
		assert.Nil(t, res.MintedPayment)
		assert.Empty(t, m.StatusHistory.Data())
		assert.Zero(t, st.SaveCount)
	})
}
