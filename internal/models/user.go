package models

import "time"

// User is an internal staff member (manager) assignable to interventions.
// Code is the short token used in the tracking sheets (A, B, D, ...).
type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Code      string `gorm:"size:10;not null;uniqueIndex"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255"`
	Phone     string `gorm:"size:50"`
	Role      string `gorm:"size:50;default:gestionnaire"`
	Status    string `gorm:"size:50;default:actif"`
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
