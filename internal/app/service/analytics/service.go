// Package analytics derives retention, churn and revenue metrics from store
// snapshots. Every operation is a pure read, no mutation or persistence.
package analytics

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

// AtRiskMember is an Active membership expiring inside the lookahead window.
type AtRiskMember struct {
	MemberID      string     `json:"member_id"`
	MemberName    string     `json:"member_name"`
	Contact       string     `json:"contact"`
	ExpiryDate    dates.Date `json:"expiry_date"`
	DaysRemaining int        `json:"days_remaining"`
}

// RetentionTrend holds parallel month-label and rate arrays, oldest first.
type RetentionTrend struct {
	Months []string  `json:"months"`
	Rates  []float64 `json:"rates"`
}

// RevenueForecast pairs the jittered prediction with the guaranteed floor
// spread evenly over the horizon.
type RevenueForecast struct {
	Months     []string  `json:"months"`
	Predicted  []float64 `json:"predicted"`
	Guaranteed []float64 `json:"guaranteed"`
}

type RevenueTrend struct {
	Months  []string  `json:"months"`
	Revenue []float64 `json:"revenue"`
}

type RenewalForecast struct {
	TotalExpiring    int     `json:"total_expiring"`
	ExpectedRenewals int     `json:"expected_renewals"`
	ExpectedRevenue  float64 `json:"expected_revenue"`
	RetentionRate    float64 `json:"retention_rate"`
}

type Confidence struct {
	Confidence int    `json:"confidence"`
	Message    string `json:"message"`
}

type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
	// rng supplies the forecast jitter. Injectable so tests can pin a seed.
	rng *rand.Rand
}

func New(st store.Store, log *zap.SugaredLogger) *Service {
	return &Service{
		store: st,
		log:   log,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) today() dates.Date {
	return dates.FromTime(s.now())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ChurnRate computes the share of memberships ending in the window whose
// member never took out a later membership. The window is
// [today - (offset+period) months, today - offset months], months counted
// as 30 days. Returns 0 when nothing ended in the window.
func (s *Service) ChurnRate(ctx context.Context, periodMonths, monthOffset int) (float64, error) {
	memberships, err := s.store.ListMemberships(ctx)
	if err != nil {
		return 0, err
	}
	return s.churnRate(memberships, periodMonths, monthOffset), nil
}

func (s *Service) churnRate(memberships []*models.Membership, periodMonths, monthOffset int) float64 {
	periodEnd := s.today().AddMonths(-monthOffset)
	periodStart := periodEnd.AddMonths(-periodMonths)

	var expired, renewed int
	for _, m := range memberships {
		if !m.EndDate.Covers(periodStart, periodEnd) {
			continue
		}

		hasRenewed := lo.SomeBy(memberships, func(other *models.Membership) bool {
			return other.MemberID == m.MemberID &&
				other.ID != m.ID &&
				!other.StartDate.Before(m.EndDate)
		})
		if hasRenewed {
			renewed++
		} else {
			expired++
		}
	}

	total := expired + renewed
	if total == 0 {
		return 0.0
	}
	return round2(float64(expired) / float64(total) * 100)
}

// RetentionRate is the complement of ChurnRate for the same window.
func (s *Service) RetentionRate(ctx context.Context, periodMonths, monthOffset int) (float64, error) {
	churn, err := s.ChurnRate(ctx, periodMonths, monthOffset)
	if err != nil {
		return 0, err
	}
	return round2(100 - churn), nil
}

// AtRiskMembers lists Active memberships expiring within daysThreshold days,
// most urgent first. Memberships whose member cannot be resolved are skipped.
func (s *Service) AtRiskMembers(ctx context.Context, daysThreshold int) ([]AtRiskMember, error) {
	memberships, err := s.store.ListMemberships(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	threshold := today.AddDays(daysThreshold)

	var atRisk []AtRiskMember
	for _, m := range memberships {
		if m.Status != types.MembershipStatusActive {
			continue
		}
		if !m.EndDate.After(today) || m.EndDate.After(threshold) {
			continue
		}

		member, err := s.store.GetMember(ctx, m.MemberID)
		if err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, err
		}

		atRisk = append(atRisk, AtRiskMember{
			MemberID:      m.MemberID,
			MemberName:    member.FullName(),
			Contact:       member.Contact,
			ExpiryDate:    m.EndDate,
			DaysRemaining: today.DaysUntil(m.EndDate),
		})
	}

	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].DaysRemaining < atRisk[j].DaysRemaining
	})
	return atRisk, nil
}

// RetentionTrend computes the monthly retention rate for each of the last
// `months` 30-day months, oldest to newest.
func (s *Service) RetentionTrend(ctx context.Context, months int) (RetentionTrend, error) {
	memberships, err := s.store.ListMemberships(ctx)
	if err != nil {
		return RetentionTrend{}, err
	}

	trend := RetentionTrend{
		Months: make([]string, 0, months),
		Rates:  make([]float64, 0, months),
	}
	for i := months; i >= 1; i-- {
		trend.Months = append(trend.Months, s.today().AddMonths(-i).MonthLabel())
		trend.Rates = append(trend.Rates, round2(100-s.churnRate(memberships, 1, i)))
	}
	return trend, nil
}

// monthlyPaidRevenue sums Paid payments by calendar month of payment date,
// restricted to the last `months` 30-day months.
func (s *Service) monthlyPaidRevenue(payments []*models.Payment, months int) map[string]float64 {
	start := s.today().AddMonths(-months)

	monthly := map[string]float64{}
	for _, p := range payments {
		if !p.IsPaid() || p.PaymentDate == nil {
			continue
		}
		day := p.PaymentDate.Date()
		if day.Before(start) {
			continue
		}
		monthly[day.MonthKey()] += p.AmountPaid
	}
	return monthly
}

// guaranteedRevenue sums amounts owed on Unpaid payments whose membership is
// still Active, treated as near-certain future income.
func (s *Service) guaranteedRevenue(ctx context.Context, payments []*models.Payment) (float64, error) {
	memberships, err := s.store.ListMemberships(ctx)
	if err != nil {
		return 0, err
	}
	activeIDs := map[string]bool{}
	for _, m := range memberships {
		if m.Status == types.MembershipStatusActive {
			activeIDs[m.ID] = true
		}
	}

	var total float64
	for _, p := range payments {
		if p.Status == types.PaymentStatusUnpaid && activeIDs[p.MembershipID] {
			total += p.AmountDue
		}
	}
	return total, nil
}

// PredictRevenue forecasts the next monthsAhead months: the six-month average
// of paid revenue with a 0.9-1.1 jitter, plus the guaranteed floor spread
// evenly across the horizon.
func (s *Service) PredictRevenue(ctx context.Context, monthsAhead int) (RevenueForecast, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return RevenueForecast{}, err
	}

	monthly := s.monthlyPaidRevenue(payments, 6)
	var avg float64
	if len(monthly) > 0 {
		avg = round2(lo.Sum(lo.Values(monthly)) / float64(len(monthly)))
	}

	guaranteed, err := s.guaranteedRevenue(ctx, payments)
	if err != nil {
		return RevenueForecast{}, err
	}
	perMonthFloor := guaranteed / float64(monthsAhead)

	forecast := RevenueForecast{
		Months:     make([]string, 0, monthsAhead),
		Predicted:  make([]float64, 0, monthsAhead),
		Guaranteed: make([]float64, 0, monthsAhead),
	}
	for i := 1; i <= monthsAhead; i++ {
		jitter := 0.9 + s.rng.Float64()*0.2
		forecast.Months = append(forecast.Months, s.today().AddMonths(i).MonthLabel())
		forecast.Predicted = append(forecast.Predicted, round2(avg*jitter+perMonthFloor))
		forecast.Guaranteed = append(forecast.Guaranteed, round2(perMonthFloor))
	}
	return forecast, nil
}

// ExpectedRenewals projects how many of the memberships expiring in the next
// daysAhead days will renew, priced at the unweighted mean plan price.
func (s *Service) ExpectedRenewals(ctx context.Context, daysAhead int) (RenewalForecast, error) {
	atRisk, err := s.AtRiskMembers(ctx, daysAhead)
	if err != nil {
		return RenewalForecast{}, err
	}
	retention, err := s.RetentionRate(ctx, 1, 0)
	if err != nil {
		return RenewalForecast{}, err
	}
	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return RenewalForecast{}, err
	}

	var avgPrice float64
	if len(plans) > 0 {
		avgPrice = lo.SumBy(plans, func(p *models.Plan) float64 { return p.BasePrice }) / float64(len(plans))
	}

	expected := int(math.Floor(float64(len(atRisk)) * retention / 100))
	return RenewalForecast{
		TotalExpiring:    len(atRisk),
		ExpectedRenewals: expected,
		ExpectedRevenue:  round2(float64(expected) * avgPrice),
		RetentionRate:    retention,
	}, nil
}

// HistoricalRevenueTrend aggregates Paid payments by calendar month over the
// last `months` 30-day months. Only months with revenue appear, sorted
// ascending.
func (s *Service) HistoricalRevenueTrend(ctx context.Context, months int) (RevenueTrend, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return RevenueTrend{}, err
	}

	monthly := s.monthlyPaidRevenue(payments, months)
	keys := lo.Keys(monthly)
	sort.Strings(keys)

	trend := RevenueTrend{
		Months:  make([]string, 0, len(keys)),
		Revenue: make([]float64, 0, len(keys)),
	}
	for _, key := range keys {
		t, err := time.Parse("2006-01", key)
		if err != nil {
			return RevenueTrend{}, err
		}
		trend.Months = append(trend.Months, t.Format("Jan 2006"))
		trend.Revenue = append(trend.Revenue, round2(monthly[key]))
	}
	return trend, nil
}

// ConfidenceInterval scores forecast reliability from data volume. Base 50,
// bonuses for paid-payment and active-membership counts, capped at 90.
func (s *Service) ConfidenceInterval(ctx context.Context) (Confidence, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return Confidence{}, err
	}
	memberships, err := s.store.ListMemberships(ctx)
	if err != nil {
		return Confidence{}, err
	}

	paid := lo.CountBy(payments, func(p *models.Payment) bool { return p.IsPaid() })
	active := lo.CountBy(memberships, func(m *models.Membership) bool {
		return m.Status == types.MembershipStatusActive
	})

	confidence := 50
	switch {
	case paid > 50:
		confidence += 20
	case paid > 20:
		confidence += 10
	}
	switch {
	case active > 50:
		confidence += 20
	case active > 20:
		confidence += 10
	}
	if confidence > 90 {
		confidence = 90
	}

	var message string
	switch {
	case confidence >= 70:
		message = "High confidence - sufficient historical data"
	case confidence >= 50:
		message = "Medium confidence - limited historical data"
	default:
		message = "Low confidence - insufficient data for accurate predictions"
	}
	return Confidence{Confidence: confidence, Message: message}, nil
}

// MemberLifetimeValue is total paid revenue averaged over every member ever
// registered. Zero when there are no members.
func (s *Service) MemberLifetimeValue(ctx context.Context) (float64, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return 0, err
	}

	total := lo.SumBy(payments, func(p *models.Payment) float64 {
		if p.IsPaid() {
			return p.AmountPaid
		}
		return 0
	})
	return round2(total / float64(len(members))), nil
}
