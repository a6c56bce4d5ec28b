package store

import (
	"context"
	"sort"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/pkg/types"
)

// Memory is an in-memory Store used as a test fixture. It deliberately
// mirrors the legacy app's data shape: plain collections mutated in place.
type Memory struct {
	Memberships []*models.Membership
	Payments    []*models.Payment
	Members     []*models.Member
	Plans       []*models.Plan
	Trainers    []*models.Trainer
	Attendance  []*models.AttendanceLog
	Visitors    []*models.Visitor
	Users       []*models.User

	// SaveCount tracks how many mutating calls were made, so tests can
	// assert that engines persist after each mutation.
	SaveCount int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) GetMembership(_ context.Context, id string) (*models.Membership, error) {
	for _, ms := range m.Memberships {
		if ms.ID == id {
			return ms, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListMemberships(_ context.Context) ([]*models.Membership, error) {
	return m.Memberships, nil
}

func (m *Memory) ListMembershipsByMember(_ context.Context, memberID string) ([]*models.Membership, error) {
	var out []*models.Membership
	for _, ms := range m.Memberships {
		if ms.MemberID == memberID {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *Memory) SaveMembership(_ context.Context, ms *models.Membership) error {
	m.SaveCount++
	for i, existing := range m.Memberships {
		if existing.ID == ms.ID {
			m.Memberships[i] = ms
			return nil
		}
	}
	m.Memberships = append(m.Memberships, ms)
	return nil
}

func (m *Memory) SaveMemberships(ctx context.Context, ms []*models.Membership) error {
	for _, one := range ms {
		if err := m.SaveMembership(ctx, one); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	for _, p := range m.Payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListPayments(_ context.Context) ([]*models.Payment, error) {
	return m.Payments, nil
}

func (m *Memory) SavePayment(_ context.Context, p *models.Payment) error {
	m.SaveCount++
	for i, existing := range m.Payments {
		if existing.ID == p.ID {
			m.Payments[i] = p
			return nil
		}
	}
	m.Payments = append(m.Payments, p)
	return nil
}

func (m *Memory) DeleteUnpaidPayments(_ context.Context, membershipID string) (int, error) {
	kept := m.Payments[:0]
	deleted := 0
	for _, p := range m.Payments {
		if p.MembershipID == membershipID && p.Status == types.PaymentStatusUnpaid {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	m.Payments = kept
	if deleted > 0 {
		m.SaveCount++
	}
	return deleted, nil
}

func (m *Memory) GetMember(_ context.Context, id string) (*models.Member, error) {
	for _, mem := range m.Members {
		if mem.ID == id {
			return mem, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListMembers(_ context.Context) ([]*models.Member, error) {
	return m.Members, nil
}

func (m *Memory) SaveMember(_ context.Context, mem *models.Member) error {
	m.SaveCount++
	for i, existing := range m.Members {
		if existing.ID == mem.ID {
			m.Members[i] = mem
			return nil
		}
	}
	m.Members = append(m.Members, mem)
	return nil
}

func (m *Memory) DeleteMember(_ context.Context, id string) error {
	for i, mem := range m.Members {
		if mem.ID == id {
			m.Members = append(m.Members[:i], m.Members[i+1:]...)
			m.SaveCount++
			return nil
		}
	}
	return nil
}

func (m *Memory) GetPlan(_ context.Context, id string) (*models.Plan, error) {
	for _, p := range m.Plans {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListPlans(_ context.Context) ([]*models.Plan, error) {
	return m.Plans, nil
}

func (m *Memory) GetTrainer(_ context.Context, id string) (*models.Trainer, error) {
	for _, t := range m.Trainers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListTrainers(_ context.Context) ([]*models.Trainer, error) {
	return m.Trainers, nil
}

func (m *Memory) SaveTrainer(_ context.Context, t *models.Trainer) error {
	m.SaveCount++
	for i, existing := range m.Trainers {
		if existing.ID == t.ID {
			m.Trainers[i] = t
			return nil
		}
	}
	m.Trainers = append(m.Trainers, t)
	return nil
}

func (m *Memory) ListAttendance(_ context.Context) ([]*models.AttendanceLog, error) {
	return m.Attendance, nil
}

func (m *Memory) OpenAttendance(_ context.Context, memberID string) (*models.AttendanceLog, error) {
	for _, a := range m.Attendance {
		if a.MemberID == memberID && a.Open() {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SaveAttendance(_ context.Context, a *models.AttendanceLog) error {
	m.SaveCount++
	for i, existing := range m.Attendance {
		if existing.ID == a.ID {
			m.Attendance[i] = a
			return nil
		}
	}
	m.Attendance = append(m.Attendance, a)
	return nil
}

func (m *Memory) DeleteAttendance(_ context.Context, id string) error {
	for i, a := range m.Attendance {
		if a.ID == id {
			m.Attendance = append(m.Attendance[:i], m.Attendance[i+1:]...)
			m.SaveCount++
			return nil
		}
	}
	return nil
}

func (m *Memory) GetVisitor(_ context.Context, id string) (*models.Visitor, error) {
	for _, v := range m.Visitors {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListVisitors(_ context.Context) ([]*models.Visitor, error) {
	return m.Visitors, nil
}

func (m *Memory) SaveVisitor(_ context.Context, v *models.Visitor) error {
	m.SaveCount++
	for i, existing := range m.Visitors {
		if existing.ID == v.ID {
			m.Visitors[i] = v
			return nil
		}
	}
	m.Visitors = append(m.Visitors, v)
	return nil
}

func (m *Memory) DeleteVisitor(_ context.Context, id string) error {
	for i, v := range m.Visitors {
		if v.ID == id {
			m.Visitors = append(m.Visitors[:i], m.Visitors[i+1:]...)
			m.SaveCount++
			return nil
		}
	}
	return nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CountUsers(_ context.Context) (int64, error) {
	return int64(len(m.Users)), nil
}

func (m *Memory) SaveUser(_ context.Context, u *models.User) error {
	m.SaveCount++
	for i, existing := range m.Users {
		if existing.ID == u.ID {
			m.Users[i] = u
			return nil
		}
	}
	m.Users = append(m.Users, u)
	return nil
}
