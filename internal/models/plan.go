package models

import "time"

// Plan is the pricing/duration template for memberships. Immutable reference
// data as far as the engines are concerned.
type Plan struct {
	ID             string    `gorm:"column:id;type:varchar(32);primary_key" json:"plan_id"`
	Name           string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	DurationMonths int       `gorm:"column:duration_months;not null" json:"duration_months"`
	BasePrice      float64   `gorm:"column:base_price;not null" json:"base_price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "plan"
}
