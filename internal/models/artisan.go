package models

import "time"

// Artisan is the tradesperson or subcontractor performing interventions.
// Names are unique by convention only; no constraint enforces it.
type Artisan struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	Name          string `gorm:"size:255;not null;index"`
	Phone         string `gorm:"size:50"`
	Email         string `gorm:"size:255"`
	Address       string `gorm:"type:text"`
	Speciality    string `gorm:"size:255"`
	Status        string `gorm:"size:50;default:actif"`
	DossierStatus string `gorm:"size:50;default:en_cours"`
	Notes         string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for Artisan
func (Artisan) TableName() string {
	return "artisans"
}
