package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gmbs/interventions-api/internal/models"
	"github.com/gmbs/interventions-api/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

var (
	// ErrNotFound is returned by id-based lookups that find no row.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed or out-of-range input.
	ErrValidation = errors.New("validation")
)

// CreateInterventionInput carries the creatable fields of an intervention.
// The cout_* aliases are accepted from older clients and used only when the
// canonical field is absent.
type CreateInterventionInput struct {
	Address          string          `json:"address"`
	Context          string          `json:"context"`
	Status           string          `json:"status"`
	CreatedDate      *types.FlexTime `json:"created_date"`
	InterventionDate *types.FlexTime `json:"intervention_date"`

	SstCost          types.FlexFloat64 `json:"sst_cost"`
	MaterialCost     types.FlexFloat64 `json:"material_cost"`
	InterventionCost types.FlexFloat64 `json:"intervention_cost"`

	TenantName  string        `json:"tenant_name"`
	TenantPhone string        `json:"tenant_phone"`
	TenantEmail string        `json:"tenant_email"`
	Manager     string        `json:"manager"`
	Notes       string        `json:"notes"`
	Priority    string        `json:"priority"`
	Tags        types.TagList `json:"tags"`
	ArtisanID   *uint         `json:"artisan_id"`
	AgencyID    *uint         `json:"agency_id"`
	UserID      *uint         `json:"user_id"`

	CoutSst           *types.FlexFloat64 `json:"cout_sst"`
	CoutMateriaux     *types.FlexFloat64 `json:"cout_materiaux"`
	CoutInterventions *types.FlexFloat64 `json:"cout_interventions"`
}

// UpdateInterventionInput carries a sparse update. Absent fields leave the
// stored value untouched; an explicit null clears optional fields.
type UpdateInterventionInput struct {
	Address          types.Optional[string]            `json:"address"`
	Context          types.Optional[string]            `json:"context"`
	Status           types.Optional[string]            `json:"status"`
	CreatedDate      types.Optional[types.FlexTime]    `json:"created_date"`
	InterventionDate types.Optional[types.FlexTime]    `json:"intervention_date"`
	SstCost          types.Optional[types.FlexFloat64] `json:"sst_cost"`
	MaterialCost     types.Optional[types.FlexFloat64] `json:"material_cost"`
	InterventionCost types.Optional[types.FlexFloat64] `json:"intervention_cost"`
	TenantName       types.Optional[string]            `json:"tenant_name"`
	TenantPhone      types.Optional[string]            `json:"tenant_phone"`
	TenantEmail      types.Optional[string]            `json:"tenant_email"`
	Manager          types.Optional[string]            `json:"manager"`
	Notes            types.Optional[string]            `json:"notes"`
	Priority         types.Optional[string]            `json:"priority"`
	Tags             types.Optional[types.TagList]     `json:"tags"`
	ArtisanID        types.Optional[uint]              `json:"artisan_id"`
	AgencyID         types.Optional[uint]              `json:"agency_id"`
	UserID           types.Optional[uint]              `json:"user_id"`
}

// ListQuery carries the filter, sort and pagination parameters of a list call.
type ListQuery struct {
	Page          int
	Limit         int
	Status        string
	ArtisanID     *uint
	AgencyID      *uint
	UserID        *uint
	Search        string
	SortField     string
	SortDirection string
}

// Stats aggregates the whole interventions table.
type Stats struct {
	Total          int64            `json:"total"`
	ParStatut      map[string]int64 `json:"par_statut"`
	ParAgence      map[string]int64 `json:"par_agence"`
	ParArtisan     map[string]int64 `json:"par_artisan"`
	ParUtilisateur map[string]int64 `json:"par_utilisateur"`
	MontantTotal   float64          `json:"montant_total"`
}

// sortAliases maps external sort keys to real column names.
var sortAliases = map[string]string{
	"cree":       "created_date",
	"echeance":   "intervention_date",
	"marge":      "intervention_cost",
	"created_at": "created_at",
}

// sortColumns is the allow-list of sortable columns. Anything that does not
// resolve into it falls back to created_date descending without erroring.
var sortColumns = map[string]bool{
	"id":                true,
	"address":           true,
	"status":            true,
	"created_date":      true,
	"intervention_date": true,
	"sst_cost":          true,
	"material_cost":     true,
	"intervention_cost": true,
	"tenant_name":       true,
	"manager":           true,
	"priority":          true,
	"created_at":        true,
	"updated_at":        true,
}

// CreateIntervention inserts a new intervention and records a creation history
// entry. The history write is best-effort and never fails the create.
func CreateIntervention(db *gorm.DB, input CreateInterventionInput, actorID, actorName string) (*models.Intervention, error) {
	if strings.TrimSpace(input.Address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrValidation)
	}

	sst := input.SstCost.Float64()
	material := input.MaterialCost.Float64()
	inter := input.InterventionCost.Float64()
	if input.CoutSst != nil && sst == 0 {
		sst = input.CoutSst.Float64()
	}
	if input.CoutMateriaux != nil && material == 0 {
		material = input.CoutMateriaux.Float64()
	}
	if input.CoutInterventions != nil && inter == 0 {
		inter = input.CoutInterventions.Float64()
	}
	if sst < 0 || material < 0 || inter < 0 {
		return nil, fmt.Errorf("%w: costs must be non-negative", ErrValidation)
	}

	status := input.Status
	if status == "" {
		status = models.StatusDemande
	}
	priority := input.Priority
	if priority == "" {
		priority = "normale"
	}

	itv := models.Intervention{
		Address:          input.Address,
		Context:          input.Context,
		Status:           status,
		CreatedDate:      flexTimePtr(input.CreatedDate),
		InterventionDate: flexTimePtr(input.InterventionDate),
		SstCost:          sst,
		MaterialCost:     material,
		InterventionCost: inter,
		TenantName:       input.TenantName,
		TenantPhone:      input.TenantPhone,
		TenantEmail:      input.TenantEmail,
		Manager:          input.Manager,
		Notes:            input.Notes,
		Priority:         priority,
		Tags:             models.JoinTags(input.Tags.Slice()),
		ArtisanID:        input.ArtisanID,
		AgencyID:         input.AgencyID,
		UserID:           input.UserID,
	}

	if err := db.Create(&itv).Error; err != nil {
		return nil, err
	}

	subject := input.Context
	if subject == "" {
		subject = "Nouvelle intervention"
	}
	RecordHistory(db, models.EntityTypeIntervention, itv.ID,
		fmt.Sprintf("Intervention créée: %s", subject), actorID, actorName)

	return &itv, nil
}

// UpdateIntervention applies a sparse update to an existing intervention and
// records history entries for status and context changes. Returns ErrNotFound
// when the id does not resolve.
func UpdateIntervention(db *gorm.DB, id uint, input UpdateInterventionInput, actorID, actorName string) (*models.Intervention, error) {
	var itv models.Intervention
	if err := db.First(&itv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	oldStatus := itv.Status
	oldContext := itv.Context

	if err := applyUpdate(&itv, input); err != nil {
		return nil, err
	}

	if err := db.Save(&itv).Error; err != nil {
		return nil, err
	}

	var changes []string
	if oldStatus != itv.Status {
		changes = append(changes, fmt.Sprintf("statut: '%s' → '%s'", oldStatus, itv.Status))
	}
	if oldContext != itv.Context {
		changes = append(changes, "contexte modifié")
	}
	if len(changes) > 0 {
		RecordHistory(db, models.EntityTypeIntervention, itv.ID,
			fmt.Sprintf("Intervention modifiée: %s", strings.Join(changes, ", ")), actorID, actorName)
	}

	return &itv, nil
}

// applyUpdate mutates itv in place from the present fields of input.
// Address is required and ignores an explicit null; optional fields honor it.
func applyUpdate(itv *models.Intervention, input UpdateInterventionInput) error {
	if input.Address.Set && input.Address.Valid {
		if strings.TrimSpace(input.Address.Value) == "" {
			return fmt.Errorf("%w: address cannot be empty", ErrValidation)
		}
		itv.Address = input.Address.Value
	}
	if input.Context.Set {
		itv.Context = optString(input.Context)
	}
	if input.Status.Set && input.Status.Valid && input.Status.Value != "" {
		itv.Status = input.Status.Value
	}
	if input.CreatedDate.Set {
		itv.CreatedDate = optTime(input.CreatedDate)
	}
	if input.InterventionDate.Set {
		itv.InterventionDate = optTime(input.InterventionDate)
	}
	for _, c := range []struct {
		in  types.Optional[types.FlexFloat64]
		out *float64
	}{
		{input.SstCost, &itv.SstCost},
		{input.MaterialCost, &itv.MaterialCost},
		{input.InterventionCost, &itv.InterventionCost},
	} {
		if !c.in.Set {
			continue
		}
		v := 0.0
		if c.in.Valid {
			v = c.in.Value.Float64()
		}
		if v < 0 {
			return fmt.Errorf("%w: costs must be non-negative", ErrValidation)
		}
		*c.out = v
	}
	if input.TenantName.Set {
		itv.TenantName = optString(input.TenantName)
	}
	if input.TenantPhone.Set {
		itv.TenantPhone = optString(input.TenantPhone)
	}
	if input.TenantEmail.Set {
		itv.TenantEmail = optString(input.TenantEmail)
	}
	if input.Manager.Set {
		itv.Manager = optString(input.Manager)
	}
	if input.Notes.Set {
		itv.Notes = optString(input.Notes)
	}
	if input.Priority.Set && input.Priority.Valid && input.Priority.Value != "" {
		itv.Priority = input.Priority.Value
	}
	if input.Tags.Set {
		if input.Tags.Valid {
			itv.Tags = models.JoinTags(input.Tags.Value.Slice())
		} else {
			itv.Tags = ""
		}
	}
	if input.ArtisanID.Set {
		itv.ArtisanID = optUint(input.ArtisanID)
	}
	if input.AgencyID.Set {
		itv.AgencyID = optUint(input.AgencyID)
	}
	if input.UserID.Set {
		itv.UserID = optUint(input.UserID)
	}
	return nil
}

// DeleteIntervention hard-deletes an intervention row. Associated comments and
// documents are left in place; the projection layer masks the dangling
// references they become.
func DeleteIntervention(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Intervention{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetIntervention fetches a single intervention by id.
func GetIntervention(db *gorm.DB, id uint) (*models.Intervention, error) {
	var itv models.Intervention
	if err := db.First(&itv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &itv, nil
}

// Normalize clamps pagination to its allowed range (page >= 1, 1 <= limit <= 100).
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// ListInterventions returns one page of matching interventions plus the
// pre-pagination total count.
func ListInterventions(db *gorm.DB, q ListQuery) ([]models.Intervention, int64, error) {
	q.Normalize()

	query := db.Model(&models.Intervention{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.ArtisanID != nil {
		query = query.Where("artisan_id = ?", *q.ArtisanID)
	}
	if q.AgencyID != nil {
		query = query.Where("agency_id = ?", *q.AgencyID)
	}
	if q.UserID != nil {
		query = query.Where("user_id = ?", *q.UserID)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("address LIKE ? OR context LIKE ? OR tenant_name LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, direction := resolveSort(q.SortField, q.SortDirection)
	if column == "created_date" && db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_interventions_created_date"))
	}

	var items []models.Intervention
	err := query.Order(column + " " + direction).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// resolveSort maps an external sort key through the alias table and the
// column allow-list. Unknown fields fall back to created_date descending.
func resolveSort(field, direction string) (string, string) {
	column := field
	if alias, ok := sortAliases[field]; ok {
		column = alias
	}
	if !sortColumns[column] {
		return "created_date", "desc"
	}
	if direction == "asc" {
		return column, "asc"
	}
	return column, "desc"
}

// TotalPages computes the page count for a total and page size.
func TotalPages(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// InterventionStats aggregates counts and the monetary total across all rows.
// Group-by-name counts go through joins, so related entities with zero
// interventions do not appear.
func InterventionStats(db *gorm.DB) (*Stats, error) {
	stats := &Stats{
		ParStatut:      map[string]int64{},
		ParAgence:      map[string]int64{},
		ParArtisan:     map[string]int64{},
		ParUtilisateur: map[string]int64{},
	}

	if err := db.Model(&models.Intervention{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type nameCount struct {
		Name  string
		Count int64
	}

	var byStatus []nameCount
	if err := db.Model(&models.Intervention{}).
		Select("status AS name, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.ParStatut[row.Name] = row.Count
	}

	var byAgency []nameCount
	if err := db.Table("interventions").
		Select("agencies.name AS name, COUNT(*) AS count").
		Joins("JOIN agencies ON agencies.id = interventions.agency_id").
		Group("agencies.name").
		Scan(&byAgency).Error; err != nil {
		return nil, err
	}
	for _, row := range byAgency {
		stats.ParAgence[row.Name] = row.Count
	}

	var byArtisan []nameCount
	if err := db.Table("interventions").
		Select("artisans.name AS name, COUNT(*) AS count").
		Joins("JOIN artisans ON artisans.id = interventions.artisan_id").
		Group("artisans.name").
		Scan(&byArtisan).Error; err != nil {
		return nil, err
	}
	for _, row := range byArtisan {
		stats.ParArtisan[row.Name] = row.Count
	}

	var byUser []nameCount
	if err := db.Table("interventions").
		Select("users.name AS name, COUNT(*) AS count").
		Joins("JOIN users ON users.id = interventions.user_id").
		Group("users.name").
		Scan(&byUser).Error; err != nil {
		return nil, err
	}
	for _, row := range byUser {
		stats.ParUtilisateur[row.Name] = row.Count
	}

	var montant *float64
	if err := db.Model(&models.Intervention{}).
		Select("SUM(sst_cost + material_cost + intervention_cost)").
		Scan(&montant).Error; err != nil {
		return nil, err
	}
	if montant != nil {
		stats.MontantTotal = *montant
	}

	return stats, nil
}

func flexTimePtr(f *types.FlexTime) *time.Time {
	if f == nil {
		return nil
	}
	t := f.Time()
	return &t
}

func optString(o types.Optional[string]) string {
	if o.Valid {
		return o.Value
	}
	return ""
}

func optTime(o types.Optional[types.FlexTime]) *time.Time {
	if !o.Valid {
		return nil
	}
	t := o.Value.Time()
	return &t
}

func optUint(o types.Optional[uint]) *uint {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
