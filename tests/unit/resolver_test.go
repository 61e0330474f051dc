package unit_test

import (
	"testing"

	"github.com/gmbs/interventions-api/internal/models"
	"github.com/gmbs/interventions-api/internal/services"
)

// TestResolveArtisan tests find-or-create and caching for artisans
func TestResolveArtisan(t *testing.T) {
	db := setupTestDB(t)
	resolver := services.NewResolver(db)

	first, err := resolver.ResolveArtisan("  Dupont Plomberie  ")
	if err != nil {
		t.Fatalf("Failed to resolve artisan: %v", err)
	}
	if first.Name != "Dupont Plomberie" {
		t.Errorf("Expected trimmed name, got %q", first.Name)
	}
	if first.Status != "actif" || first.DossierStatus != "en_cours" {
		t.Errorf("Expected default statuses, got %q/%q", first.Status, first.DossierStatus)
	}

	second, err := resolver.ResolveArtisan("Dupont Plomberie")
	if err != nil {
		t.Fatalf("Failed to resolve artisan again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected the same artisan from cache, got %d and %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.Artisan{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single artisan row, got %d", count)
	}

	// Names are case sensitive
	other, err := resolver.ResolveArtisan("dupont plomberie")
	if err != nil {
		t.Fatalf("Failed to resolve artisan: %v", err)
	}
	if other.ID == first.ID {
		t.Error("Expected a distinct artisan for a different-cased name")
	}
}

// TestResolveArtisanEmpty tests that blank names resolve to nil
func TestResolveArtisanEmpty(t *testing.T) {
	db := setupTestDB(t)
	resolver := services.NewResolver(db)

	for _, name := range []string{"", "   "} {
		artisan, err := resolver.ResolveArtisan(name)
		if err != nil {
			t.Fatalf("Failed to resolve blank artisan: %v", err)
		}
		if artisan != nil {
			t.Errorf("Expected nil for blank name %q, got %v", name, artisan)
		}
	}

	var count int64
	db.Model(&models.Artisan{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no artisan rows, got %d", count)
	}
}

// TestResolveAgency tests find-or-create for agencies
func TestResolveAgency(t *testing.T) {
	db := setupTestDB(t)
	resolver := services.NewResolver(db)

	agency, err := resolver.ResolveAgency("Foncia Lyon")
	if err != nil {
		t.Fatalf("Failed to resolve agency: %v", err)
	}
	if agency.Status != "actif" {
		t.Errorf("Expected default status 'actif', got %q", agency.Status)
	}

	// A second resolver finds the existing row instead of duplicating it
	again, err := services.NewResolver(db).ResolveAgency("Foncia Lyon")
	if err != nil {
		t.Fatalf("Failed to resolve agency with new resolver: %v", err)
	}
	if again.ID != agency.ID {
		t.Errorf("Expected existing agency row, got %d and %d", agency.ID, again.ID)
	}
}

// TestResolveUserKnownCode tests the static code table
func TestResolveUserKnownCode(t *testing.T) {
	db := setupTestDB(t)
	resolver := services.NewResolver(db)

	user, err := resolver.ResolveUser("b")
	if err != nil {
		t.Fatalf("Failed to resolve user: %v", err)
	}
	if user.Code != "B" {
		t.Errorf("Expected upper-cased code 'B', got %q", user.Code)
	}
	if user.Name != "Badr" {
		t.Errorf("Expected name 'Badr', got %q", user.Name)
	}
	if user.Email != "badr@gmbs.fr" {
		t.Errorf("Expected email 'badr@gmbs.fr', got %q", user.Email)
	}
	if user.Role != "gestionnaire" {
		t.Errorf("Expected role 'gestionnaire', got %q", user.Role)
	}
}

// TestResolveUserUnknownCode tests the placeholder user path
func TestResolveUserUnknownCode(t *testing.T) {
	db := setupTestDB(t)
	resolver := services.NewResolver(db)

	user, err := resolver.ResolveUser("Z")
	if err != nil {
		t.Fatalf("Failed to resolve user: %v", err)
	}
	if user.Name != "Gestionnaire Z" {
		t.Errorf("Expected placeholder name 'Gestionnaire Z', got %q", user.Name)
	}
	if user.Email != "gestionnairez@gmbs.fr" {
		t.Errorf("Expected placeholder email, got %q", user.Email)
	}
}
