// Package billing handles payment settlement and WhatsApp payment reminders.
package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/logctx"
	"github.com/flexfit/gymdesk/pkg/phone"
	"github.com/flexfit/gymdesk/pkg/types"
)

var (
	ErrAlreadyPaid   = errors.New("payment is already marked as paid")
	ErrAlreadyUnpaid = errors.New("payment is already marked as unpaid")
	ErrNoContact     = errors.New("member has no contact number on file")
)

type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(st store.Store, log *zap.SugaredLogger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

// List returns all payments desk-ordered: Unpaid first by due date
// ascending, then Paid by payment date descending.
func (s *Service) List(ctx context.Context, unpaidOnly bool) ([]*models.Payment, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	var unpaid, paid []*models.Payment
	for _, p := range payments {
		if p.Status == types.PaymentStatusUnpaid {
			unpaid = append(unpaid, p)
		} else if !unpaidOnly {
			paid = append(paid, p)
		}
	}

	sort.SliceStable(unpaid, func(i, j int) bool {
		return unpaid[i].DueDate.Before(unpaid[j].DueDate)
	})
	sort.SliceStable(paid, func(i, j int) bool {
		var a, b string
		if paid[i].PaymentDate != nil {
			a = paid[i].PaymentDate.String()
		}
		if paid[j].PaymentDate != nil {
			b = paid[j].PaymentDate.String()
		}
		return a > b
	})
	return append(unpaid, paid...), nil
}

// MarkPaid settles a payment in full: the paid amount snaps to the amount
// due and the payment date is stamped.
func (s *Service) MarkPaid(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status == types.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	paidAt := dates.DateTimeOf(s.now())
	p.Status = types.PaymentStatusPaid
	p.AmountPaid = p.AmountDue
	p.PaymentDate = &paidAt

	if err := s.store.SavePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("payment marked paid",
		"payment_id", p.ID, "amount", p.AmountPaid)
	return p, nil
}

// MarkUnpaid reverts a settled payment back to owed.
func (s *Service) MarkUnpaid(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status == types.PaymentStatusUnpaid {
		return nil, ErrAlreadyUnpaid
	}

	p.Status = types.PaymentStatusUnpaid
	p.AmountPaid = 0
	p.PaymentDate = nil

	if err := s.store.SavePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("payment marked unpaid", "payment_id", p.ID)
	return p, nil
}

// EditAmount sets a new amount due. Payments already settled keep the
// paid-in-full invariant, so their paid amount follows.
func (s *Service) EditAmount(ctx context.Context, paymentID string, newAmount float64) (*models.Payment, error) {
	if newAmount < 0 {
		return nil, fmt.Errorf("amount due cannot be negative")
	}

	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	p.AmountDue = newAmount
	if p.Status == types.PaymentStatusPaid {
		p.AmountPaid = newAmount
	}

	if err := s.store.SavePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	return p, nil
}

// ReminderLink builds a WhatsApp chat link carrying the payment reminder
// message for an outstanding payment.
func (s *Service) ReminderLink(ctx context.Context, paymentID string) (string, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if p.Status == types.PaymentStatusPaid {
		return "", ErrAlreadyPaid
	}

	member, err := s.store.GetMember(ctx, p.MemberID)
	if err != nil {
		return "", err
	}
	if member.Contact == "" {
		return "", ErrNoContact
	}

	message := phone.PaymentReminder(member.FullName(), p.AmountDue, p.DueDate.String())
	return phone.ChatURL(member.Contact, message)
}
