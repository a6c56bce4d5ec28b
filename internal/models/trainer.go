package models

import "time"

// Trainer is reference data; MonthlyFee is added on top of the plan price
// when a membership has an assigned trainer.
type Trainer struct {
	ID         string    `gorm:"column:id;type:varchar(32);primary_key" json:"trainer_id"`
	Name       string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Contact    string    `gorm:"column:contact;type:varchar(32)" json:"contact"`
	Specialty  string    `gorm:"column:specialty;type:varchar(128)" json:"specialty"`
	MonthlyFee float64   `gorm:"column:monthly_fee;not null;default:0" json:"fee"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Trainer) TableName() string {
	return "trainer"
}
