package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

// FreezeRecord is one committed freeze window inside a membership's freeze
// history. IDs are sequential within the membership ("F001", "F002", ...).
type FreezeRecord struct {
	ID          string     `json:"freeze_id"`
	FreezeStart dates.Date `json:"freeze_start"`
	FreezeEnd   dates.Date `json:"freeze_end"`
	Reason      string     `json:"reason"`
	ApprovedBy  string     `json:"approved_by"`
	FreezeDays  int        `json:"freeze_days"`
}

// Covers reports whether the freeze window contains the given day, bounds
// included.
func (f FreezeRecord) Covers(day dates.Date) bool {
	return day.Covers(f.FreezeStart, f.FreezeEnd)
}

// StatusChange is an audit entry written on manual status edits.
type StatusChange struct {
	Date      dates.Date             `json:"date"`
	OldStatus types.MembershipStatus `json:"old_status"`
	NewStatus types.MembershipStatus `json:"new_status"`
	Note      string                 `json:"note"`
}

// Membership is one subscription term for one member.
//
// Invariants the lifecycle engine maintains:
//   - EndDate equals the contractual end date plus the sum of FreezeDays
//     across all committed freeze records.
//   - At most one freeze record covers "today" at any time.
type Membership struct {
	ID                string                                `gorm:"column:id;type:varchar(32);primary_key" json:"membership_id"`
	MemberID          string                                `gorm:"column:member_id;type:varchar(32);not null;index" json:"member_id"`
	PlanID            string                                `gorm:"column:plan_id;type:varchar(32);not null" json:"plan_id"`
	AssignedTrainerID *string                               `gorm:"column:assigned_trainer_id;type:varchar(32)" json:"assigned_trainer_id"`
	StartDate         dates.Date                            `gorm:"column:start_date;not null" json:"start_date"`
	EndDate           dates.Date                            `gorm:"column:end_date;not null" json:"end_date"`
	Status            types.MembershipStatus                `gorm:"column:status;type:varchar(16);not null" json:"status"`
	TotalFreezeDays   int                                   `gorm:"column:total_freeze_days;not null;default:0" json:"total_freeze_days"`
	FreezeHistory     datatypes.JSONType[[]FreezeRecord]    `gorm:"column:freeze_history;type:jsonb;default:'[]'" json:"freeze_history"`
	StatusHistory     datatypes.JSONType[[]StatusChange]    `gorm:"column:status_history;type:jsonb;default:'[]'" json:"status_history"`
	CreatedAt         time.Time                             `json:"created_at"`
	UpdatedAt         time.Time                             `json:"updated_at"`
}

func (Membership) TableName() string {
	return "membership"
}

// Freezes returns the committed freeze history, oldest first.
func (m *Membership) Freezes() []FreezeRecord {
	return m.FreezeHistory.Data()
}

// SetFreezes replaces the freeze history.
func (m *Membership) SetFreezes(freezes []FreezeRecord) {
	m.FreezeHistory = datatypes.NewJSONType(freezes)
}

// ActiveFreezeIndex returns the index of the freeze record whose window
// contains the given day, or -1 if none does.
func (m *Membership) ActiveFreezeIndex(day dates.Date) int {
	for i, f := range m.Freezes() {
		if f.Covers(day) {
			return i
		}
	}
	return -1
}

// NextFreezeID mints the next sequential freeze id within this membership.
func (m *Membership) NextFreezeID() string {
	return fmt.Sprintf("F%03d", len(m.Freezes())+1)
}

// AppendStatusChange records a manual status edit in the audit trail.
func (m *Membership) AppendStatusChange(change StatusChange) {
	history := m.StatusHistory.Data()
	history = append(history, change)
	m.StatusHistory = datatypes.NewJSONType(history)
}

// DaysRemaining is the whole number of days from the given day until the
// membership's end date. Negative once expired.
func (m *Membership) DaysRemaining(day dates.Date) int {
	return day.DaysUntil(m.EndDate)
}
