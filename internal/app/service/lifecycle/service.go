// Package lifecycle owns membership status transitions: freeze eligibility,
// freeze/unfreeze date accounting and the periodic status sweep.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/logctx"
	"github.com/flexfit/gymdesk/pkg/types"
)

// MinDaysRemainingToFreeze guards the extension mechanic: memberships about
// to expire cannot be frozen.
const MinDaysRemainingToFreeze = 30

type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(st store.Store, log *zap.SugaredLogger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

// NewWithClock pins "today" for fixtures that exercise date arithmetic.
func NewWithClock(st store.Store, log *zap.SugaredLogger, now func() time.Time) *Service {
	return &Service{store: st, log: log, now: now}
}

func (s *Service) today() dates.Date {
	return dates.FromTime(s.now())
}

// CanFreeze checks freeze eligibility: the membership must be Active with
// more than 30 days remaining.
func (s *Service) CanFreeze(m *models.Membership) (bool, string) {
	if m.Status != types.MembershipStatusActive {
		return false, "Only active memberships can be frozen"
	}
	if m.DaysRemaining(s.today()) <= MinDaysRemainingToFreeze {
		return false, "Membership must have more than 30 days remaining to freeze"
	}
	return true, "Membership is eligible for freezing"
}

// AddFreeze records a freeze window and extends the end date by its length.
// The extension is prospective: it is applied on creation, even for
// future-dated windows. Status flips to Frozen only when the window covers
// today.
func (s *Service) AddFreeze(ctx context.Context, membershipID string, freezeStart, freezeEnd dates.Date, reason, approvedBy string) (Result, error) {
	m, err := s.store.GetMembership(ctx, membershipID)
	if err != nil {
		if err == store.ErrNotFound {
			return failure(OutcomeNotFound, "Membership not found"), nil
		}
		return Result{}, err
	}

	if eligible, msg := s.CanFreeze(m); !eligible {
		return failure(OutcomeNotEligible, msg), nil
	}

	freezeDays := freezeStart.DaysUntil(freezeEnd)
	if freezeDays <= 0 {
		return failure(OutcomeInvalidRange, "Invalid freeze period"), nil
	}

	record := models.FreezeRecord{
		ID:          m.NextFreezeID(),
		FreezeStart: freezeStart,
		FreezeEnd:   freezeEnd,
		Reason:      reason,
		ApprovedBy:  approvedBy,
		FreezeDays:  freezeDays,
	}
	m.SetFreezes(append(m.Freezes(), record))
	m.TotalFreezeDays += freezeDays
	m.EndDate = m.EndDate.AddDays(freezeDays)

	if record.Covers(s.today()) {
		m.Status = types.MembershipStatusFrozen
	}

	if err := s.store.SaveMembership(ctx, m); err != nil {
		return Result{}, fmt.Errorf("failed to save membership: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("membership frozen",
		"membership_id", m.ID, "freeze_id", record.ID,
		"freeze_days", freezeDays, "new_end_date", m.EndDate.String())

	return Result{
		Outcome:    OutcomeOK,
		Message:    fmt.Sprintf("Membership frozen successfully. New end date: %s", m.EndDate),
		NewEndDate: m.EndDate,
	}, nil
}

// Unfreeze ends the currently-active freeze early. The freeze record is
// truncated to the days actually used and the end date is pulled back by the
// unused portion. A same-day unfreeze collapses the record to a zero-length
// marker; it is kept, not pruned.
func (s *Service) Unfreeze(ctx context.Context, membershipID string) (Result, error) {
	m, err := s.store.GetMembership(ctx, membershipID)
	if err != nil {
		if err == store.ErrNotFound {
			return failure(OutcomeNotFound, "Membership not found"), nil
		}
		return Result{}, err
	}

	if m.Status != types.MembershipStatusFrozen {
		return failure(OutcomeNotFrozen, "Membership is not currently frozen"), nil
	}

	today := s.today()
	idx := m.ActiveFreezeIndex(today)
	if idx < 0 {
		// Status says Frozen but no window covers today. Self-heal rather
		// than fail, and report it so callers can log the inconsistency.
		m.Status = types.MembershipStatusActive
		if err := s.store.SaveMembership(ctx, m); err != nil {
			return Result{}, fmt.Errorf("failed to save membership: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Warnw("frozen membership had no active freeze window, corrected to active",
			"membership_id", m.ID)
		return Result{
			Outcome:    OutcomeCorrected,
			Message:    "Membership status corrected to Active",
			NewEndDate: m.EndDate,
		}, nil
	}

	freezes := m.Freezes()
	active := &freezes[idx]

	actualFreezeDays := active.FreezeStart.DaysUntil(today)
	if actualFreezeDays < 0 {
		actualFreezeDays = 0
	}
	diff := active.FreezeDays - actualFreezeDays

	// The record ends yesterday since the member is active again today; a
	// same-day unfreeze pins the end to the start instead.
	newFreezeEnd := today.AddDays(-1)
	if newFreezeEnd.Before(active.FreezeStart) {
		newFreezeEnd = active.FreezeStart
	}
	active.FreezeEnd = newFreezeEnd
	active.FreezeDays = actualFreezeDays
	active.Reason += " (Unfrozen early)"
	m.SetFreezes(freezes)

	m.TotalFreezeDays -= diff
	if m.TotalFreezeDays < 0 {
		m.TotalFreezeDays = 0
	}
	m.EndDate = m.EndDate.AddDays(-diff)
	m.Status = types.MembershipStatusActive

	if err := s.store.SaveMembership(ctx, m); err != nil {
		return Result{}, fmt.Errorf("failed to save membership: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("membership unfrozen",
		"membership_id", m.ID, "freeze_id", active.ID,
		"actual_freeze_days", actualFreezeDays, "retracted_days", diff,
		"new_end_date", m.EndDate.String())

	return Result{
		Outcome:    OutcomeOK,
		Message:    fmt.Sprintf("Membership unfrozen. New end date: %s", m.EndDate),
		NewEndDate: m.EndDate,
	}, nil
}

// UpdateMembershipStatuses sweeps every membership with freeze history and
// reconciles its status against today's date. It is the only mechanism that
// demotes a membership out of Frozen when its window lapses without an
// explicit unfreeze. Idempotent: a second run with no time elapsed changes
// nothing.
func (s *Service) UpdateMembershipStatuses(ctx context.Context) (int, error) {
	memberships, err := s.store.ListMemberships(ctx)
	if err != nil {
		return 0, err
	}

	today := s.today()
	var changed []*models.Membership

	for _, m := range memberships {
		if len(m.Freezes()) == 0 {
			continue
		}

		inFreeze := m.ActiveFreezeIndex(today) >= 0

		switch {
		case inFreeze && m.Status != types.MembershipStatusFrozen:
			m.Status = types.MembershipStatusFrozen
			changed = append(changed, m)
		case !inFreeze && m.Status == types.MembershipStatusFrozen:
			if today.After(m.EndDate) {
				m.Status = types.MembershipStatusExpired
			} else {
				m.Status = types.MembershipStatusActive
			}
			changed = append(changed, m)
		}
	}

	if len(changed) > 0 {
		if err := s.store.SaveMemberships(ctx, changed); err != nil {
			return 0, fmt.Errorf("failed to save swept memberships: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("membership status sweep applied", "changed", len(changed))
	}
	return len(changed), nil
}
