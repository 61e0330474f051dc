package helpers

import (
	"testing"
	"time"

	"github.com/gmbs/interventions-api/internal/models"
	"gorm.io/gorm"
)

// CreateTestArtisan creates an artisan row with the given name.
func CreateTestArtisan(t *testing.T, db *gorm.DB, name string) *models.Artisan {
	t.Helper()
	artisan := models.Artisan{
		Name:          name,
		Speciality:    "Plomberie",
		Status:        "actif",
		DossierStatus: "en_cours",
	}
	if err := db.Create(&artisan).Error; err != nil {
		t.Fatalf("Failed to create artisan: %v", err)
	}
	return &artisan
}

// CreateTestAgency creates an agency row with the given name.
func CreateTestAgency(t *testing.T, db *gorm.DB, name string) *models.Agency {
	t.Helper()
	agency := models.Agency{
		Name:   name,
		Status: "actif",
	}
	if err := db.Create(&agency).Error; err != nil {
		t.Fatalf("Failed to create agency: %v", err)
	}
	return &agency
}

// CreateTestUser creates a user row with the given code and name.
func CreateTestUser(t *testing.T, db *gorm.DB, code, name string) *models.User {
	t.Helper()
	user := models.User{
		Code:   code,
		Name:   name,
		Role:   "gestionnaire",
		Status: "actif",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

// CreateTestIntervention creates an intervention row with sensible defaults.
// Callers mutate the returned row and Save when a test needs specific values.
func CreateTestIntervention(t *testing.T, db *gorm.DB, address string) *models.Intervention {
	t.Helper()
	now := time.Now()
	itv := models.Intervention{
		Address:     address,
		Status:      models.StatusDemande,
		CreatedDate: &now,
		Priority:    "normale",
	}
	if err := db.Create(&itv).Error; err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}
	return &itv
}
