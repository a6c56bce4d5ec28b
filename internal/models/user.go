package models

import (
	"time"

	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

// User is a staff login. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           string         `gorm:"column:id;type:varchar(32);primary_key" json:"user_id"`
	Username     string         `gorm:"column:username;type:varchar(64);not null;uniqueIndex" json:"username"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	Role         types.UserRole `gorm:"column:role;type:varchar(16);not null" json:"role"`
	CreatedDate  dates.Date     `gorm:"column:created_date" json:"created_date"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (User) TableName() string {
	return "app_user"
}
