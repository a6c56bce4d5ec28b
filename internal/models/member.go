package models

import (
	"strings"
	"time"

	"github.com/flexfit/gymdesk/pkg/dates"
)

// Member is the identity anchor that memberships, payments and attendance
// key off of.
type Member struct {
	ID        string     `gorm:"column:id;type:varchar(32);primary_key" json:"member_id"`
	FirstName string     `gorm:"column:first_name;type:varchar(64);not null" json:"first_name"`
	LastName  string     `gorm:"column:last_name;type:varchar(64);not null" json:"last_name"`
	Contact   string     `gorm:"column:contact;type:varchar(32)" json:"contact"`
	JoinDate  dates.Date `gorm:"column:join_date" json:"join_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Member) TableName() string {
	return "member"
}

func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
