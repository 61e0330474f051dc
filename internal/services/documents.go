package services

import (
	"fmt"

	"github.com/gmbs/interventions-api/internal/models"
	"gorm.io/gorm"
)

// DocumentInput holds document metadata to register. The file itself is
// stored elsewhere; only metadata is persisted.
type DocumentInput struct {
	Filename   string `json:"filename"`
	FilePath   string `json:"file_path"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	UploadedBy string `json:"uploaded_by"`
}

// RegisterDocument persists document metadata attached to an entity.
func RegisterDocument(db *gorm.DB, entityType string, entityID uint, input DocumentInput) (*models.Document, error) {
	if input.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrValidation)
	}
	if input.FileSize < 0 {
		input.FileSize = 0
	}
	if input.UploadedBy == "" {
		input.UploadedBy = "system"
	}

	doc := models.Document{
		EntityType: entityType,
		EntityID:   entityID,
		Filename:   input.Filename,
		FilePath:   input.FilePath,
		FileType:   input.FileType,
		FileSize:   input.FileSize,
		UploadedBy: input.UploadedBy,
	}
	if err := db.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}
