// Package enrollment covers the member-facing desk flows: signing up a new
// member, renewing, changing plan or trainer, and manual status edits with
// their billing side effects.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/app/service/lifecycle"
	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/logctx"
	"github.com/flexfit/gymdesk/pkg/phone"
	"github.com/flexfit/gymdesk/pkg/tool"
	"github.com/flexfit/gymdesk/pkg/types"
)

// ErrValidation wraps all input validation failures so handlers can map them
// to a 400 without inspecting messages.
var ErrValidation = errors.New("validation failed")

type EnrollInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Contact   string  `json:"contact"`
	PlanID    string  `json:"plan_id"`
	TrainerID *string `json:"trainer_id"`
}

// EnrollResult carries everything minted by an enrollment or renewal.
type EnrollResult struct {
	Member     *models.Member     `json:"member"`
	Membership *models.Membership `json:"membership"`
	Payment    *models.Payment    `json:"payment"`
}

// StatusChangeResult reports the billing side effects of a manual status
// edit.
type StatusChangeResult struct {
	OldStatus     types.MembershipStatus `json:"old_status"`
	NewStatus     types.MembershipStatus `json:"new_status"`
	DeletedUnpaid int                    `json:"deleted_unpaid"`
	MintedPayment *models.Payment        `json:"minted_payment,omitempty"`
	Freeze        *lifecycle.Result      `json:"freeze,omitempty"`
}

type Service struct {
	store     store.Store
	lifecycle *lifecycle.Service
	log       *zap.SugaredLogger
	now       func() time.Time
}

func New(st store.Store, lc *lifecycle.Service, log *zap.SugaredLogger) *Service {
	return &Service{store: st, lifecycle: lc, log: log, now: time.Now}
}

func (s *Service) today() dates.Date {
	return dates.FromTime(s.now())
}

func validateIdentity(firstName, lastName, contact string) error {
	if firstName == "" || lastName == "" {
		return fmt.Errorf("%w: first name and last name are required", ErrValidation)
	}
	if contact != "" {
		if err := phone.Validate(contact); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	return nil
}

// membershipPrice is the plan price plus the assigned trainer's monthly fee.
func (s *Service) membershipPrice(ctx context.Context, planID string, trainerID *string) (float64, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		if err == store.ErrNotFound {
			return 0, fmt.Errorf("%w: unknown plan %s", ErrValidation, planID)
		}
		return 0, err
	}

	amount := plan.BasePrice
	if trainerID != nil {
		trainer, err := s.store.GetTrainer(ctx, *trainerID)
		if err != nil {
			if err == store.ErrNotFound {
				return 0, fmt.Errorf("%w: unknown trainer %s", ErrValidation, *trainerID)
			}
			return 0, err
		}
		amount += trainer.MonthlyFee
	}
	return amount, nil
}

func (s *Service) mintUnpaidPayment(ctx context.Context, memberID, membershipID string, amount float64) (*models.Payment, error) {
	payment := &models.Payment{
		ID:           tool.GenerateShortID("PAY"),
		MemberID:     memberID,
		MembershipID: membershipID,
		AmountDue:    amount,
		AmountPaid:   0,
		DueDate:      s.today(),
		Status:       types.PaymentStatusUnpaid,
	}
	if err := s.store.SavePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	return payment, nil
}

func (s *Service) createMembership(ctx context.Context, memberID, planID string, trainerID *string) (*models.Membership, *models.Payment, error) {
	amount, err := s.membershipPrice(ctx, planID, trainerID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, nil, err
	}

	start := s.today()
	membership := &models.Membership{
		ID:                tool.GenerateShortID("MS"),
		MemberID:          memberID,
		PlanID:            planID,
		AssignedTrainerID: trainerID,
		StartDate:         start,
		EndDate:           start.AddMonths(plan.DurationMonths),
		Status:            types.MembershipStatusActive,
	}
	if err := s.store.SaveMembership(ctx, membership); err != nil {
		return nil, nil, fmt.Errorf("failed to save membership: %w", err)
	}

	payment, err := s.mintUnpaidPayment(ctx, memberID, membership.ID, amount)
	if err != nil {
		return nil, nil, err
	}
	return membership, payment, nil
}

// Enroll registers a new member with an Active membership and an Unpaid
// payment for the first term.
func (s *Service) Enroll(ctx context.Context, in EnrollInput) (*EnrollResult, error) {
	if err := validateIdentity(in.FirstName, in.LastName, in.Contact); err != nil {
		return nil, err
	}
	if in.PlanID == "" {
		return nil, fmt.Errorf("%w: a membership plan is required", ErrValidation)
	}

	member := &models.Member{
		ID:        tool.GenerateShortID("M"),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Contact:   in.Contact,
		JoinDate:  s.today(),
	}
	if err := s.store.SaveMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}

	membership, payment, err := s.createMembership(ctx, member.ID, in.PlanID, in.TrainerID)
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("member enrolled",
		"member_id", member.ID, "membership_id", membership.ID,
		"plan_id", in.PlanID, "amount_due", payment.AmountDue)

	return &EnrollResult{Member: member, Membership: membership, Payment: payment}, nil
}

// Renew starts a fresh membership term for an existing member. The old
// membership is left untouched; renewal detection in analytics keys off the
// new term's start date.
func (s *Service) Renew(ctx context.Context, memberID, planID string, trainerID *string) (*EnrollResult, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	membership, payment, err := s.createMembership(ctx, memberID, planID, trainerID)
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("membership renewed",
		"member_id", memberID, "membership_id", membership.ID, "plan_id", planID)

	return &EnrollResult{Member: member, Membership: membership, Payment: payment}, nil
}

// UpdateMember edits the identity fields only. Membership edits go through
// ChangePlanTrainer and ChangeStatus.
func (s *Service) UpdateMember(ctx context.Context, memberID, firstName, lastName, contact string) (*models.Member, error) {
	if err := validateIdentity(firstName, lastName, contact); err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	member.FirstName = firstName
	member.LastName = lastName
	member.Contact = contact

	if err := s.store.SaveMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}
	return member, nil
}

// LatestMembership returns the member's most recent membership by start
// date, regardless of status.
func (s *Service) LatestMembership(ctx context.Context, memberID string) (*models.Membership, error) {
	memberships, err := s.store.ListMembershipsByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, store.ErrNotFound
	}
	return lo.MaxBy(memberships, func(a, b *models.Membership) bool {
		return a.StartDate.After(b.StartDate)
	}), nil
}

// ChangePlanTrainer swaps the plan and/or trainer on a membership. Any
// actual change mints a new Unpaid payment at the new combined price; a
// no-op change returns nil.
func (s *Service) ChangePlanTrainer(ctx context.Context, membershipID, planID string, trainerID *string) (*models.Payment, error) {
	m, err := s.store.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	planChanged := planID != "" && planID != m.PlanID
	trainerChanged := !sameTrainer(m.AssignedTrainerID, trainerID)
	if !planChanged && !trainerChanged {
		return nil, nil
	}

	if planChanged {
		m.PlanID = planID
	}
	m.AssignedTrainerID = trainerID

	amount, err := s.membershipPrice(ctx, m.PlanID, m.AssignedTrainerID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save membership: %w", err)
	}

	payment, err := s.mintUnpaidPayment(ctx, m.MemberID, m.ID, amount)
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("plan or trainer changed",
		"membership_id", m.ID, "plan_id", m.PlanID, "amount_due", amount)
	return payment, nil
}

func sameTrainer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ChangeStatus applies a manual status edit with the legacy desk rules:
// every real change is appended to the status audit trail; Frozen goes
// through the lifecycle engine so freeze accounting stays consistent;
// Expired drops the membership's Unpaid payments; reactivating an Expired
// membership mints a fresh Unpaid payment.
func (s *Service) ChangeStatus(ctx context.Context, membershipID string, newStatus types.MembershipStatus, freezeMonths int, note, changedBy string) (*StatusChangeResult, error) {
	m, err := s.store.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	oldStatus := m.Status
	result := &StatusChangeResult{OldStatus: oldStatus, NewStatus: newStatus}
	if newStatus == oldStatus {
		return result, nil
	}

	if newStatus == types.MembershipStatusFrozen {
		if freezeMonths < 1 {
			return nil, fmt.Errorf("%w: freeze duration must be at least one month", ErrValidation)
		}
		reason := note
		if reason == "" {
			reason = "Manual Status Change"
		}
		start := s.today()
		freeze, err := s.lifecycle.AddFreeze(ctx, membershipID, start, start.AddMonths(freezeMonths), reason, changedBy)
		if err != nil {
			return nil, err
		}
		result.Freeze = &freeze
		if !freeze.OK() {
			return result, nil
		}
		// AddFreeze already flipped and saved the status; reload for the
		// audit entry.
		if m, err = s.store.GetMembership(ctx, membershipID); err != nil {
			return nil, err
		}
	} else {
		m.Status = newStatus
	}

	m.AppendStatusChange(models.StatusChange{
		Date:      s.today(),
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Note:      note,
	})
	if err := s.store.SaveMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save membership: %w", err)
	}

	switch {
	case newStatus == types.MembershipStatusExpired:
		deleted, err := s.store.DeleteUnpaidPayments(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		result.DeletedUnpaid = deleted

	case oldStatus == types.MembershipStatusExpired && newStatus == types.MembershipStatusActive:
		amount, err := s.membershipPrice(ctx, m.PlanID, m.AssignedTrainerID)
		if err != nil {
			return nil, err
		}
		payment, err := s.mintUnpaidPayment(ctx, m.MemberID, m.ID, amount)
		if err != nil {
			return nil, err
		}
		result.MintedPayment = payment
	}

	logctx.FromCtx(ctx, s.log).Infow("membership status changed",
		"membership_id", m.ID, "old_status", oldStatus, "new_status", newStatus,
		"deleted_unpaid", result.DeletedUnpaid)
	return result, nil
}
