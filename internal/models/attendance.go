package models

import (
	"time"

	"github.com/flexfit/gymdesk/pkg/dates"
)

// AttendanceLog is one gym visit. CheckOutTime and DurationMinutes stay nil
// while the member is still on the floor.
type AttendanceLog struct {
	ID              string          `gorm:"column:id;type:varchar(32);primary_key" json:"log_id"`
	MemberID        string          `gorm:"column:member_id;type:varchar(32);not null;index" json:"member_id"`
	CheckInTime     dates.DateTime  `gorm:"column:check_in_time;not null" json:"check_in_time"`
	CheckOutTime    *dates.DateTime `gorm:"column:check_out_time" json:"check_out_time"`
	DurationMinutes *int            `gorm:"column:duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (AttendanceLog) TableName() string {
	return "attendance_log"
}

func (a *AttendanceLog) Open() bool {
	return a != nil && a.CheckOutTime == nil
}
