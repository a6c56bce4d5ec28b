package analytics

import (
	"context"
	"fmt"
	"math/rand"
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
	s.rng = rand.New(rand.NewSource(1))
	return s
}

func membership(id, memberID, start, end string, status types.MembershipStatus) *models.Membership {
	return &models.Membership{
		ID:        id,
		MemberID:  memberID,
		PlanID:    "P001",
		StartDate: dates.MustParseDate(start),
		EndDate:   dates.MustParseDate(end),
		Status:    status,
	}
}

func paidPayment(id, paidAt string, amount float64) *models.Payment {
	at := dates.MustParseDateTime(paidAt)
	return &models.Payment{
		ID:           id,
		MemberID:     "M000001",
		MembershipID: "MS1",
		AmountDue:    amount,
		AmountPaid:   amount,
		DueDate:      at.Date(),
		PaymentDate:  &at,
		Status:       types.PaymentStatusPaid,
	}
}

func TestChurnAndRetention(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	// Three memberships ended in the last month. M1 renewed, M2 and M3 did
	// not. One more ended well outside the window and must not count.
	st.Memberships = append(st.Memberships,
		membership("MS1", "M1", "2024-01-01", "2024-04-20", types.MembershipStatusExpired),
		membership("MS2", "M1", "2024-04-25", "2024-07-25", types.MembershipStatusActive),
		membership("MS3", "M2", "2024-01-01", "2024-04-22", types.MembershipStatusExpired),
		membership("MS4", "M3", "2024-01-01", "2024-04-25", types.MembershipStatusExpired),
		membership("MS5", "M4", "2023-01-01", "2023-04-01", types.MembershipStatusExpired),
	)
	s := newTestService(st, "2024-05-01")

	churn, err := s.ChurnRate(ctx, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 66.67, churn, 0.001)

	retention, err := s.RetentionRate(ctx, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 33.33, retention, 0.001)
	assert.InDelta(t, 100, churn+retention, 0.001)
}

func TestChurnRateEmptyWindow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Memberships = append(st.Memberships,
		membership("MS1", "M1", "2023-01-01", "2023-04-01", types.MembershipStatusExpired),
	)
	s := newTestService(st, "2024-05-01")

	churn, err := s.ChurnRate(ctx, 1, 0)
	require.NoError(t, err)
	assert.Zero(t, churn)

	retention, err := s.RetentionRate(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, retention)
}

func TestAtRiskMembers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Members = append(st.Members,
		&models.Member{ID: "M1", FirstName: "Ali", LastName: "Khan", Contact: "03001234567"},
		&models.Member{ID: "M2", FirstName: "Sara", LastName: "Ahmed", Contact: "03007654321"},
		&models.Member{ID: "M3", FirstName: "Omar", LastName: "Malik"},
	)
	st.Memberships = append(st.Memberships,
		membership("MS1", "M1", "2024-01-01", "2024-05-20", types.MembershipStatusActive),
		membership("MS2", "M2", "2024-01-01", "2024-05-05", types.MembershipStatusActive),
		// Frozen: excluded regardless of expiry.
		membership("MS3", "M3", "2024-01-01", "2024-05-10", types.MembershipStatusFrozen),
		// Expiring today: window is exclusive at the lower bound.
		membership("MS4", "M1", "2024-01-01", "2024-05-01", types.MembershipStatusActive),
		// Beyond the threshold.
		membership("MS5", "M2", "2024-01-01", "2024-07-01", types.MembershipStatusActive),
		// Orphaned member reference: skipped.
		membership("MS6", "M404", "2024-01-01", "2024-05-15", types.MembershipStatusActive),
	)
	s := newTestService(st, "2024-05-01")

	atRisk, err := s.AtRiskMembers(ctx, 30)
	require.NoError(t, err)
	require.Len(t, atRisk, 2)

	assert.Equal(t, "M2", atRisk[0].MemberID)
	assert.Equal(t, "Sara Ahmed", atRisk[0].MemberName)
	assert.Equal(t, 4, atRisk[0].DaysRemaining)
	assert.Equal(t, "M1", atRisk[1].MemberID)
	assert.Equal(t, 19, atRisk[1].DaysRemaining)

	for i := 1; i < len(atRisk); i++ {
		assert.GreaterOrEqual(t, atRisk[i].DaysRemaining, atRisk[i-1].DaysRemaining)
	}
}

func TestRetentionTrend(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestService(st, "2024-07-15")

	trend, err := s.RetentionTrend(ctx, 6)
	require.NoError(t, err)
	require.Len(t, trend.Months, 6)
	require.Len(t, trend.Rates, 6)

	// Oldest first: 6 * 30 days back from 2024-07-15 is mid January.
	assert.Equal(t, "Jan 2024", trend.Months[0])
	assert.Equal(t, "Jun 2024", trend.Months[5])
	for _, rate := range trend.Rates {
		assert.Equal(t, 100.0, rate)
	}
}

func TestHistoricalRevenueTrend(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	// One payment per month for six months plus one Unpaid that must not
	// count and one Paid outside the window.
	amounts := []float64{500, 700, 600, 900, 1100, 1200}
	for i, amount := range amounts {
		month := time.Month(i + 1)
		st.Payments = append(st.Payments,
			paidPayment(fmt.Sprintf("PAY%d", i), fmt.Sprintf("2024-%02d-10T12:00:00", month), amount))
	}
	st.Payments = append(st.Payments,
		paidPayment("PAYOLD", "2023-06-10T12:00:00", 9999),
		&models.Payment{ID: "PAYUNPAID", MembershipID: "MS1", AmountDue: 800,
			DueDate: dates.MustParseDate("2024-06-01"), Status: types.PaymentStatusUnpaid},
	)
	s := newTestService(st, "2024-06-20")

	trend, err := s.HistoricalRevenueTrend(ctx, 6)
	require.NoError(t, err)
	require.Len(t, trend.Months, 6)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024", "May 2024", "Jun 2024"}, trend.Months)
	assert.Equal(t, []float64{500, 700, 600, 900, 1100, 1200}, trend.Revenue)
}

func TestPredictRevenue(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	// Two months of history averaging 1000, plus 600 of unpaid dues on an
	// Active membership for the guaranteed floor.
	st.Payments = append(st.Payments,
		paidPayment("PAY1", "2024-04-10T12:00:00", 800),
		paidPayment("PAY2", "2024-05-10T12:00:00", 1200),
		&models.Payment{ID: "PAY3", MembershipID: "MS1", AmountDue: 600,
			DueDate: dates.MustParseDate("2024-06-01"), Status: types.PaymentStatusUnpaid},
		// Unpaid on an expired membership: not guaranteed.
		&models.Payment{ID: "PAY4", MembershipID: "MS2", AmountDue: 400,
			DueDate: dates.MustParseDate("2024-06-01"), Status: types.PaymentStatusUnpaid},
	)
	st.Memberships = append(st.Memberships,
		membership("MS1", "M1", "2024-01-01", "2024-12-31", types.MembershipStatusActive),
		membership("MS2", "M2", "2023-01-01", "2024-01-01", types.MembershipStatusExpired),
	)
	s := newTestService(st, "2024-06-01")

	forecast, err := s.PredictRevenue(ctx, 6)
	require.NoError(t, err)
	require.Len(t, forecast.Months, 6)
	require.Len(t, forecast.Predicted, 6)
	require.Len(t, forecast.Guaranteed, 6)

	assert.Equal(t, "Jul 2024", forecast.Months[0])
	for i, predicted := range forecast.Predicted {
		assert.Equal(t, 100.0, forecast.Guaranteed[i])
		// avg 1000 with 0.9-1.1 jitter plus the 100 floor.
		assert.GreaterOrEqual(t, predicted, 1000.0)
		assert.LessOrEqual(t, predicted, 1200.0)
	}

	// Seeded jitter makes runs reproducible.
	s.rng = rand.New(rand.NewSource(1))
	again, err := s.PredictRevenue(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, forecast, again)
}

func TestExpectedRenewals(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Members = append(st.Members,
		&models.Member{ID: "M1", FirstName: "Ali", LastName: "Khan"},
		&models.Member{ID: "M2", FirstName: "Sara", LastName: "Ahmed"},
		&models.Member{ID: "M3", FirstName: "Omar", LastName: "Malik"},
	)
	st.Plans = append(st.Plans,
		&models.Plan{ID: "P001", Name: "Monthly", DurationMonths: 1, BasePrice: 3000},
		&models.Plan{ID: "P002", Name: "Quarterly", DurationMonths: 3, BasePrice: 8000},
	)
	// Three expiring soon; retention window has one renewal out of two.
	st.Memberships = append(st.Memberships,
		membership("MS1", "M1", "2024-01-01", "2024-05-10", types.MembershipStatusActive),
		membership("MS2", "M2", "2024-01-01", "2024-05-15", types.MembershipStatusActive),
		membership("MS3", "M3", "2024-01-01", "2024-05-20", types.MembershipStatusActive),
		membership("MS4", "M1", "2023-10-01", "2024-04-15", types.MembershipStatusExpired),
		membership("MS5", "M2", "2023-10-01", "2024-04-20", types.MembershipStatusExpired),
		membership("MS6", "M2", "2024-04-25", "2024-05-15", types.MembershipStatusActive),
	)
	s := newTestService(st, "2024-05-01")

	forecast, err := s.ExpectedRenewals(ctx, 30)
	require.NoError(t, err)

	// 4 at-risk memberships (MS1-3 plus the renewal MS6), retention 50%.
	assert.Equal(t, 4, forecast.TotalExpiring)
	assert.Equal(t, 50.0, forecast.RetentionRate)
	assert.Equal(t, 2, forecast.ExpectedRenewals)
	assert.Equal(t, 11000.0, forecast.ExpectedRevenue)
}

func TestConfidenceInterval(t *testing.T) {
	ctx := context.Background()

	t.Run("no data", func(t *testing.T) {
		s := newTestService(store.NewMemory(), "2024-05-01")
		c, err := s.ConfidenceInterval(ctx)
		require.NoError(t, err)
		assert.Equal(t, 50, c.Confidence)
		assert.Equal(t, "Medium confidence - limited historical data", c.Message)
	})

	t.Run("moderate data", func(t *testing.T) {
		st := store.NewMemory()
		for i := 0; i < 25; i++ {
			st.Payments = append(st.Payments, paidPayment(fmt.Sprintf("PAY%d", i), "2024-04-10T12:00:00", 100))
			st.Memberships = append(st.Memberships,
				membership(fmt.Sprintf("MS%d", i), "M1", "2024-01-01", "2024-12-31", types.MembershipStatusActive))
		}
		s := newTestService(st, "2024-05-01")
		c, err := s.ConfidenceInterval(ctx)
		require.NoError(t, err)
		assert.Equal(t, 70, c.Confidence)
		assert.Equal(t, "High confidence - sufficient historical data", c.Message)
	})

	t.Run("caps at ninety", func(t *testing.T) {
		st := store.NewMemory()
		for i := 0; i < 60; i++ {
			st.Payments = append(st.Payments, paidPayment(fmt.Sprintf("PAY%d", i), "2024-04-10T12:00:00", 100))
			st.Memberships = append(st.Memberships,
				membership(fmt.Sprintf("MS%d", i), "M1", "2024-01-01", "2024-12-31", types.MembershipStatusActive))
		}
		s := newTestService(st, "2024-05-01")
		c, err := s.ConfidenceInterval(ctx)
		require.NoError(t, err)
		assert.Equal(t, 90, c.Confidence)
	})
}

func TestMemberLifetimeValue(t *testing.T) {
	ctx := context.Background()

	t.Run("no members", func(t *testing.T) {
		s := newTestService(store.NewMemory(), "2024-05-01")
		clv, err := s.MemberLifetimeValue(ctx)
		require.NoError(t, err)
		assert.Zero(t, clv)
	})

	t.Run("paid revenue averaged over all members", func(t *testing.T) {
		st := store.NewMemory()
		st.Members = append(st.Members,
			&models.Member{ID: "M1"}, &models.Member{ID: "M2"}, &models.Member{ID: "M3"},
		)
		st.Payments = append(st.Payments,
			paidPayment("PAY1", "2024-01-10T12:00:00", 4000),
			paidPayment("PAY2", "2024-02-10T12:00:00", 5000),
			&models.Payment{ID: "PAY3", MembershipID: "MS1", AmountDue: 700,
				DueDate: dates.MustParseDate("2024-06-01"), Status: types.PaymentStatusUnpaid},
		)
		s := newTestService(st, "2024-05-01")

		clv, err := s.MemberLifetimeValue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3000.0, clv)
	})
}
