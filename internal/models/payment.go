package models

import (
	"time"

	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

// Payment is one billing event tied to a membership. Plan/trainer changes,
// renewals and reactivations each mint a new Unpaid payment, so many
// payments may reference one membership.
//
// Invariant: AmountPaid == AmountDue when Paid; AmountPaid == 0 when Unpaid.
type Payment struct {
	ID           string              `gorm:"column:id;type:varchar(32);primary_key" json:"payment_id"`
	MemberID     string              `gorm:"column:member_id;type:varchar(32);not null;index" json:"member_id"`
	MembershipID string              `gorm:"column:membership_id;type:varchar(32);not null;index" json:"membership_id"`
	AmountDue    float64             `gorm:"column:amount_due;not null" json:"amount_due"`
	AmountPaid   float64             `gorm:"column:amount_paid;not null;default:0" json:"amount_paid"`
	DueDate      dates.Date          `gorm:"column:due_date;not null" json:"due_date"`
	PaymentDate  *dates.DateTime     `gorm:"column:payment_date" json:"payment_date"`
	Status       types.PaymentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}

func (p *Payment) IsPaid() bool {
	return p != nil && p.Status == types.PaymentStatusPaid
}
