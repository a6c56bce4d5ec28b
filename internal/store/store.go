// Package store is the persistence boundary injected into the lifecycle and
// analytics engines. Engines mutate records in memory and save them back
// through the store immediately after each mutation; analytics only reads
// snapshots.
package store

import (
	"context"
	"errors"

	"github.com/flexfit/gymdesk/internal/models"
)

// ErrNotFound is returned for point lookups that match nothing.
var ErrNotFound = errors.New("record not found")

type MembershipStore interface {
	GetMembership(ctx context.Context, id string) (*models.Membership, error)
	ListMemberships(ctx context.Context) ([]*models.Membership, error)
	ListMembershipsByMember(ctx context.Context, memberID string) ([]*models.Membership, error)
	SaveMembership(ctx context.Context, m *models.Membership) error
	SaveMemberships(ctx context.Context, ms []*models.Membership) error
}

type PaymentStore interface {
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]*models.Payment, error)
	SavePayment(ctx context.Context, p *models.Payment) error
	// DeleteUnpaidPayments removes all Unpaid payments of a membership and
	// returns how many were deleted.
	DeleteUnpaidPayments(ctx context.Context, membershipID string) (int, error)
}

type MemberStore interface {
	GetMember(ctx context.Context, id string) (*models.Member, error)
	ListMembers(ctx context.Context) ([]*models.Member, error)
	SaveMember(ctx context.Context, m *models.Member) error
	DeleteMember(ctx context.Context, id string) error
}

type PlanStore interface {
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

type TrainerStore interface {
	GetTrainer(ctx context.Context, id string) (*models.Trainer, error)
	ListTrainers(ctx context.Context) ([]*models.Trainer, error)
	SaveTrainer(ctx context.Context, t *models.Trainer) error
}

type AttendanceStore interface {
	ListAttendance(ctx context.Context) ([]*models.AttendanceLog, error)
	// OpenAttendance returns the member's log without a check-out time, or
	// ErrNotFound when the member is not checked in.
	OpenAttendance(ctx context.Context, memberID string) (*models.AttendanceLog, error)
	SaveAttendance(ctx context.Context, a *models.AttendanceLog) error
	DeleteAttendance(ctx context.Context, id string) error
}

type VisitorStore interface {
	GetVisitor(ctx context.Context, id string) (*models.Visitor, error)
	ListVisitors(ctx context.Context) ([]*models.Visitor, error)
	SaveVisitor(ctx context.Context, v *models.Visitor) error
	DeleteVisitor(ctx context.Context, id string) error
}

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	SaveUser(ctx context.Context, u *models.User) error
}

// Store is the full persistence surface.
type Store interface {
	MembershipStore
	PaymentStore
	MemberStore
	PlanStore
	TrainerStore
	AttendanceStore
	VisitorStore
	UserStore
}
