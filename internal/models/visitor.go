package models

import (
	"time"

	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

// Visitor is a walk-in lead tracked through the sales pipeline.
type Visitor struct {
	ID        string              `gorm:"column:id;type:varchar(32);primary_key" json:"visitor_id"`
	Name      string              `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Contact   string              `gorm:"column:contact;type:varchar(32)" json:"contact"`
	VisitDate dates.Date          `gorm:"column:visit_date" json:"visit_date"`
	Interest  string              `gorm:"column:interest;type:varchar(128)" json:"interest"`
	Status    types.VisitorStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Notes     string              `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (Visitor) TableName() string {
	return "visitor"
}
