package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/pkg/types"
)

// Gorm is the postgres-backed Store.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

var Module = fx.Options(
	fx.Provide(NewGorm),
	fx.Provide(func(g *Gorm) Store { return g }),
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *Gorm) GetMembership(ctx context.Context, id string) (*models.Membership, error) {
	var m models.Membership
	if err := g.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (g *Gorm) ListMemberships(ctx context.Context) ([]*models.Membership, error) {
	var ms []*models.Membership
	if err := g.db.WithContext(ctx).Order("start_date, id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (g *Gorm) ListMembershipsByMember(ctx context.Context, memberID string) ([]*models.Membership, error) {
	var ms []*models.Membership
	if err := g.db.WithContext(ctx).Where("member_id = ?", memberID).Order("start_date, id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (g *Gorm) SaveMembership(ctx context.Context, m *models.Membership) error {
	return g.db.WithContext(ctx).Save(m).Error
}

func (g *Gorm) SaveMemberships(ctx context.Context, ms []*models.Membership) error {
	if len(ms) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range ms {
			if err := tx.Save(m).Error; err != nil {
				return fmt.Errorf("failed to save membership %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (g *Gorm) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var p models.Payment
	if err := g.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (g *Gorm) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	var ps []*models.Payment
	if err := g.db.WithContext(ctx).Order("due_date, id").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (g *Gorm) SavePayment(ctx context.Context, p *models.Payment) error {
	return g.db.WithContext(ctx).Save(p).Error
}

func (g *Gorm) DeleteUnpaidPayments(ctx context.Context, membershipID string) (int, error) {
	res := g.db.WithContext(ctx).
		Where("membership_id = ? AND status = ?", membershipID, types.PaymentStatusUnpaid).
		Delete(&models.Payment{})
	return int(res.RowsAffected), res.Error
}

func (g *Gorm) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	if err := g.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (g *Gorm) ListMembers(ctx context.Context) ([]*models.Member, error) {
	var ms []*models.Member
	if err := g.db.WithContext(ctx).Order("join_date, id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (g *Gorm) SaveMember(ctx context.Context, m *models.Member) error {
	return g.db.WithContext(ctx).Save(m).Error
}

func (g *Gorm) DeleteMember(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", id).Error
}

func (g *Gorm) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	var p models.Plan
	if err := g.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (g *Gorm) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	var ps []*models.Plan
	if err := g.db.WithContext(ctx).Order("id").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (g *Gorm) GetTrainer(ctx context.Context, id string) (*models.Trainer, error) {
	var t models.Trainer
	if err := g.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (g *Gorm) ListTrainers(ctx context.Context) ([]*models.Trainer, error) {
	var ts []*models.Trainer
	if err := g.db.WithContext(ctx).Order("id").Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

func (g *Gorm) SaveTrainer(ctx context.Context, t *models.Trainer) error {
	return g.db.WithContext(ctx).Save(t).Error
}

func (g *Gorm) ListAttendance(ctx context.Context) ([]*models.AttendanceLog, error) {
	var as []*models.AttendanceLog
	if err := g.db.WithContext(ctx).Order("check_in_time desc").Find(&as).Error; err != nil {
		return nil, err
	}
	return as, nil
}

func (g *Gorm) OpenAttendance(ctx context.Context, memberID string) (*models.AttendanceLog, error) {
	var a models.AttendanceLog
	err := g.db.WithContext(ctx).
		Where("member_id = ? AND check_out_time IS NULL", memberID).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (g *Gorm) SaveAttendance(ctx context.Context, a *models.AttendanceLog) error {
	return g.db.WithContext(ctx).Save(a).Error
}

func (g *Gorm) DeleteAttendance(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Delete(&models.AttendanceLog{}, "id = ?", id).Error
}

func (g *Gorm) GetVisitor(ctx context.Context, id string) (*models.Visitor, error) {
	var v models.Visitor
	if err := g.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (g *Gorm) ListVisitors(ctx context.Context) ([]*models.Visitor, error) {
	var vs []*models.Visitor
	if err := g.db.WithContext(ctx).Order("visit_date desc, id").Find(&vs).Error; err != nil {
		return nil, err
	}
	return vs, nil
}

func (g *Gorm) SaveVisitor(ctx context.Context, v *models.Visitor) error {
	return g.db.WithContext(ctx).Save(v).Error
}

func (g *Gorm) DeleteVisitor(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Delete(&models.Visitor{}, "id = ?", id).Error
}

func (g *Gorm) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (g *Gorm) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (g *Gorm) SaveUser(ctx context.Context, u *models.User) error {
	return g.db.WithContext(ctx).Save(u).Error
}
