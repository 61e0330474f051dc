package models

import "time"

// Agency is the client organization requesting interventions.
type Agency struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:255;not null;index"`
	Address   string `gorm:"type:text"`
	Phone     string `gorm:"size:50"`
	Email     string `gorm:"size:255"`
	Manager   string `gorm:"size:255"`
	Status    string `gorm:"size:50;default:actif"`
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for Agency
func (Agency) TableName() string {
	return "agencies"
}
