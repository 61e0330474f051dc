package models

import (
	"strings"
	"time"
)

// Entity kinds referenced by Comment and Document rows. The entity_type +
// entity_id pair is a weak reference: it is resolved by lookup at read time and
// is never enforced by a storage-level constraint, so readers must tolerate a
// target that no longer exists.
const (
	EntityTypeIntervention = "intervention"
	EntityTypeArtisan      = "artisan"
	EntityTypeClient       = "client"
	EntityTypeAgency       = "agency"
)

// Intervention statuses. The set is open: any string value is accepted and
// persisted, these constants only name the values the application knows about.
const (
	StatusDemande         = "demande"
	StatusDevisEnvoye     = "devis_envoye"
	StatusAccepte         = "accepte"
	StatusEnCours         = "en_cours"
	StatusAnnulee         = "annulee"
	StatusTerminee        = "terminee"
	StatusVisiteTechnique = "visite_technique"
	StatusRefuse          = "refuse"
	StatusStandBy         = "stand_by"
	StatusSav             = "sav"
	StatusAttAcompte      = "att_acompte"

	// Legacy values still present in imported data.
	StatusBloque    = "bloque"
	StatusEnAttente = "en_attente"
)

// Comment is a free-text comment doubling as an append-only history entry.
// The repository inserts synthetic comments on every create and update.
type Comment struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	EntityType string `gorm:"size:50;not null;index:idx_comments_entity"`
	EntityID   uint   `gorm:"not null;index:idx_comments_entity"`
	Content    string `gorm:"type:text;not null"`
	UserID     string `gorm:"size:255;not null"`
	UserName   string `gorm:"size:255;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Document is a metadata row pointing at an externally stored file blob.
type Document struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	EntityType string `gorm:"size:50;not null;index:idx_documents_entity"`
	EntityID   uint   `gorm:"not null;index:idx_documents_entity"`
	Filename   string `gorm:"size:255;not null"`
	FilePath   string `gorm:"size:500;not null"`
	FileType   string `gorm:"size:100;not null"`
	FileSize   int64  `gorm:"not null"`
	UploadedBy string `gorm:"size:255;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}

// JoinTags serializes a tag list to its persisted comma-joined form.
// An empty list serializes to the empty string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags is the inverse of JoinTags. An empty or unset value yields an
// empty list, never nil, so JSON output is always an array.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
