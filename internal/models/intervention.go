package models

import "time"

// Intervention is a field-service work order. The three cost columns are
// summed on projection; the total is never stored. Tags are persisted as a
// comma-joined string (see JoinTags/SplitTags). The artisan/agency/user
// foreign keys are optional and may dangle after related rows change.
type Intervention struct {
	ID               uint       `gorm:"primaryKey;autoIncrement"`
	Address          string     `gorm:"type:text;not null"`
	Context          string     `gorm:"type:text"`
	Status           string     `gorm:"size:50;default:demande"`
	CreatedDate      *time.Time `gorm:"index:idx_interventions_created_date"`
	InterventionDate *time.Time
	SstCost          float64 `gorm:"default:0"`
	MaterialCost     float64 `gorm:"default:0"`
	InterventionCost float64 `gorm:"default:0"`
	TenantName       string  `gorm:"size:255"`
	TenantPhone      string  `gorm:"size:50"`
	TenantEmail      string  `gorm:"size:255"`
	Manager          string  `gorm:"size:255"`
	Notes            string  `gorm:"type:text"`
	Priority         string  `gorm:"size:50;default:normale"`
	Tags             string  `gorm:"type:text"`
	ArtisanID        *uint   `gorm:"index"`
	AgencyID         *uint   `gorm:"index"`
	UserID           *uint   `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the table name for Intervention
func (Intervention) TableName() string {
	return "interventions"
}

// TotalCost is the recomputed monetary total of the three cost columns.
func (i *Intervention) TotalCost() float64 {
	return i.SstCost + i.MaterialCost + i.InterventionCost
}
