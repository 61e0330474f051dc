package unit_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gmbs/interventions-api/internal/models"
	"github.com/gmbs/interventions-api/internal/services"
	"github.com/gmbs/interventions-api/internal/types"
	"github.com/gmbs/interventions-api/tests/helpers"
)

// TestPartialUpdateIsolation tests that absent fields survive a sparse update
func TestPartialUpdateIsolation(t *testing.T) {
	db := setupTestDB(t)

	created, err := services.CreateIntervention(db, services.CreateInterventionInput{
		Address:     "10 rue des Acacias",
		Context:     "chaudière en panne",
		TenantName:  "M. Dupont",
		TenantPhone: "0601020304",
		Notes:       "accès par la cour",
		SstCost:     120,
	}, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}

	var input services.UpdateInterventionInput
	if err := json.Unmarshal([]byte(`{"status": "accepte"}`), &input); err != nil {
		t.Fatalf("Failed to unmarshal update: %v", err)
	}

	updated, err := services.UpdateIntervention(db, created.ID, input, "system", "system")
	if err != nil {
		t.Fatalf("Failed to update intervention: %v", err)
	}

	if updated.Status != "accepte" {
		t.Errorf("Expected status 'accepte', got %s", updated.Status)
	}
	if updated.Context != "chaudière en panne" {
		t.Errorf("Context should be untouched, got %q", updated.Context)
	}
	if updated.TenantName != "M. Dupont" || updated.TenantPhone != "0601020304" {
		t.Errorf("Tenant fields should be untouched, got %q / %q", updated.TenantName, updated.TenantPhone)
	}
	if updated.Notes != "accès par la cour" {
		t.Errorf("Notes should be untouched, got %q", updated.Notes)
	}
	if updated.SstCost != 120 {
		t.Errorf("SstCost should be untouched, got %v", updated.SstCost)
	}
}

// TestExplicitNullClears tests that a JSON null clears optional fields
func TestExplicitNullClears(t *testing.T) {
	db := setupTestDB(t)

	created, err := services.CreateIntervention(db, services.CreateInterventionInput{
		Address: "11 rue des Acacias",
		Context: "fuite sous évier",
		Notes:   "clé chez le gardien",
	}, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}

	var input services.UpdateInterventionInput
	if err := json.Unmarshal([]byte(`{"context": null, "notes": null, "address": null}`), &input); err != nil {
		t.Fatalf("Failed to unmarshal update: %v", err)
	}

	updated, err := services.UpdateIntervention(db, created.ID, input, "system", "system")
	if err != nil {
		t.Fatalf("Failed to update intervention: %v", err)
	}

	if updated.Context != "" {
		t.Errorf("Expected context cleared, got %q", updated.Context)
	}
	if updated.Notes != "" {
		t.Errorf("Expected notes cleared, got %q", updated.Notes)
	}
	// Address is required and ignores an explicit null
	if updated.Address != "11 rue des Acacias" {
		t.Errorf("Address should survive an explicit null, got %q", updated.Address)
	}
}

// TestNegativeCostRejected tests cost validation on create and update
func TestNegativeCostRejected(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.CreateIntervention(db, services.CreateInterventionInput{
		Address: "1 rue Négative",
		SstCost: -5,
	}, "system", "system")
	if err == nil {
		t.Fatal("Expected validation error for negative cost")
	}

	created, err := services.CreateIntervention(db, services.CreateInterventionInput{
		Address: "2 rue Positive",
	}, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}

	var input services.UpdateInterventionInput
	if err := json.Unmarshal([]byte(`{"material_cost": -1}`), &input); err != nil {
		t.Fatalf("Failed to unmarshal update: %v", err)
	}
	if _, err := services.UpdateIntervention(db, created.ID, input, "system", "system"); err == nil {
		t.Fatal("Expected validation error for negative cost update")
	}
}

// TestTagsRoundTrip tests that tags survive persistence as a list
func TestTagsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	var createInput services.CreateInterventionInput
	if err := json.Unmarshal([]byte(`{"address": "7 rue des Tags", "tags": ["urgent", "plomberie"]}`), &createInput); err != nil {
		t.Fatalf("Failed to unmarshal input: %v", err)
	}
	created, err := services.CreateIntervention(db, createInput, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}

	view, err := services.ProjectIntervention(db, created)
	if err != nil {
		t.Fatalf("Failed to project intervention: %v", err)
	}
	if len(view.Tags) != 2 || view.Tags[0] != "urgent" || view.Tags[1] != "plomberie" {
		t.Errorf("Expected tags [urgent plomberie], got %v", view.Tags)
	}

	// Comma-joined string input resolves to the same list
	var stringInput services.CreateInterventionInput
	if err := json.Unmarshal([]byte(`{"address": "8 rue des Tags", "tags": "urgent,plomberie"}`), &stringInput); err != nil {
		t.Fatalf("Failed to unmarshal input: %v", err)
	}
	if got := models.JoinTags(stringInput.Tags.Slice()); got != "urgent,plomberie" {
		t.Errorf("Expected joined tags 'urgent,plomberie', got %q", got)
	}

	// No tags projects to an empty array, not null
	bare, err := services.CreateIntervention(db, services.CreateInterventionInput{Address: "9 rue Vide"}, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}
	bareView, err := services.ProjectIntervention(db, bare)
	if err != nil {
		t.Fatalf("Failed to project intervention: %v", err)
	}
	if bareView.Tags == nil || len(bareView.Tags) != 0 {
		t.Errorf("Expected empty tags array, got %v", bareView.Tags)
	}
}

// TestListSortAliases tests the sheet-era sort aliases
func TestListSortAliases(t *testing.T) {
	db := setupTestDB(t)

	old := helpers.CreateTestIntervention(t, db, "ancienne intervention")
	past := time.Now().AddDate(0, -2, 0)
	old.CreatedDate = &past
	db.Save(old)

	recent := helpers.CreateTestIntervention(t, db, "intervention récente")

	items, _, err := services.ListInterventions(db, services.ListQuery{
		Page: 1, Limit: 10, SortField: "cree", SortDirection: "asc",
	})
	if err != nil {
		t.Fatalf("Failed to list interventions: %v", err)
	}
	if len(items) != 2 || items[0].ID != old.ID {
		t.Errorf("Expected oldest first with sort cree asc, got %v", items)
	}

	// Unknown sort falls back to created_date desc
	items, _, err = services.ListInterventions(db, services.ListQuery{
		Page: 1, Limit: 10, SortField: "nonexistent", SortDirection: "asc",
	})
	if err != nil {
		t.Fatalf("Failed to list interventions: %v", err)
	}
	if len(items) != 2 || items[0].ID != recent.ID {
		t.Errorf("Expected newest first for unknown sort field, got %v", items)
	}
}

// TestListSearch tests the substring search across address, context and tenant
func TestListSearch(t *testing.T) {
	db := setupTestDB(t)

	itv := helpers.CreateTestIntervention(t, db, "25 boulevard Magenta")
	itv.TenantName = "Mme Ferrand"
	db.Save(itv)
	helpers.CreateTestIntervention(t, db, "4 impasse des Roses")

	items, total, err := services.ListInterventions(db, services.ListQuery{
		Page: 1, Limit: 10, Search: "Ferrand",
	})
	if err != nil {
		t.Fatalf("Failed to list interventions: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != itv.ID {
		t.Errorf("Expected one search hit, got %d items total %d", len(items), total)
	}
}

// TestDeleteLeavesOrphanComments tests that delete does not cascade
func TestDeleteLeavesOrphanComments(t *testing.T) {
	db := setupTestDB(t)

	created, err := services.CreateIntervention(db, services.CreateInterventionInput{
		Address: "6 rue des Orphelins",
	}, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}

	if err := services.DeleteIntervention(db, created.ID); err != nil {
		t.Fatalf("Failed to delete intervention: %v", err)
	}

	// The creation history comment survives the delete
	var count int64
	db.Model(&models.Comment{}).
		Where("entity_type = ? AND entity_id = ?", models.EntityTypeIntervention, created.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected orphan comment to survive, got %d", count)
	}
}

// TestProjectionFallbacks tests the masked display values for dangling refs
func TestProjectionFallbacks(t *testing.T) {
	db := setupTestDB(t)

	missing := uint(9999)
	itv := helpers.CreateTestIntervention(t, db, "13 rue Fantôme")
	itv.UserID = &missing
	db.Save(itv)

	view, err := services.ProjectIntervention(db, itv)
	if err != nil {
		t.Fatalf("Failed to project intervention: %v", err)
	}
	if view.UtilisateurAssigne != "Utilisateur 9999" {
		t.Errorf("Expected masked user fallback, got %q", view.UtilisateurAssigne)
	}
	if view.Artisan != "Non assigné" {
		t.Errorf("Expected artisan fallback, got %q", view.Artisan)
	}
	if view.Client != "Client inconnu" {
		t.Errorf("Expected client fallback, got %q", view.Client)
	}
	if view.Reference != fmt.Sprintf("INT-%06d", itv.ID) {
		t.Errorf("Unexpected reference %q", view.Reference)
	}
}

// TestFlexInputParsing tests comma-decimal costs and multi-format dates
func TestFlexInputParsing(t *testing.T) {
	db := setupTestDB(t)

	var input services.CreateInterventionInput
	payload := `{"address": "20 rue Flexible", "sst_cost": "1234,56", "created_date": "15/03/2025"}`
	if err := json.Unmarshal([]byte(payload), &input); err != nil {
		t.Fatalf("Failed to unmarshal input: %v", err)
	}

	created, err := services.CreateIntervention(db, input, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}
	if created.SstCost != 1234.56 {
		t.Errorf("Expected sst_cost 1234.56, got %v", created.SstCost)
	}
	if created.CreatedDate == nil || created.CreatedDate.Format("2006-01-02") != "2025-03-15" {
		t.Errorf("Expected created_date 2025-03-15, got %v", created.CreatedDate)
	}
}

// TestCostAliases tests the cout_* field aliases on create
func TestCostAliases(t *testing.T) {
	db := setupTestDB(t)

	var input services.CreateInterventionInput
	payload := `{"address": "21 rue Alias", "cout_sst": 10, "cout_materiaux": "20,5", "cout_interventions": 30}`
	if err := json.Unmarshal([]byte(payload), &input); err != nil {
		t.Fatalf("Failed to unmarshal input: %v", err)
	}

	created, err := services.CreateIntervention(db, input, "system", "system")
	if err != nil {
		t.Fatalf("Failed to create intervention: %v", err)
	}
	if created.SstCost != 10 || created.MaterialCost != 20.5 || created.InterventionCost != 30 {
		t.Errorf("Expected alias costs applied, got %v/%v/%v",
			created.SstCost, created.MaterialCost, created.InterventionCost)
	}
	if created.TotalCost() != 60.5 {
		t.Errorf("Expected total 60.5, got %v", created.TotalCost())
	}
}

// TestTotalPages tests page count arithmetic
func TestTotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		limit    int
		expected int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{25, 10, 3},
	}
	for _, c := range cases {
		if got := services.TotalPages(c.total, c.limit); got != c.expected {
			t.Errorf("TotalPages(%d, %d) = %d, expected %d", c.total, c.limit, got, c.expected)
		}
	}
}

// TestFlexTimeParsing exercises the date parsing helper directly
func TestFlexTimeParsing(t *testing.T) {
	if _, err := types.ParseFlexTime("not a date"); err == nil {
		t.Error("Expected error for unparseable date")
	}
	parsed, err := types.ParseFlexTime("2025-07-01")
	if err != nil {
		t.Fatalf("Failed to parse ISO date: %v", err)
	}
	if parsed.Format("02/01/2006") != "01/07/2025" {
		t.Errorf("Unexpected parsed date %v", parsed)
	}
}
