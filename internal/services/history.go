package services

import (
	"log"

	"github.com/gmbs/interventions-api/internal/models"
	"gorm.io/gorm"
)

// RecordHistory appends a Comment row narrating an event on an entity.
// History is advisory: a failed write is logged and never surfaced, so the
// caller's mutation is never failed or rolled back because of it.
func RecordHistory(db *gorm.DB, entityType string, entityID uint, content, actorID, actorName string) {
	if actorID == "" {
		actorID = "system"
	}
	if actorName == "" {
		actorName = "system"
	}

	comment := models.Comment{
		EntityType: entityType,
		EntityID:   entityID,
		Content:    content,
		UserID:     actorID,
		UserName:   actorName,
	}
	if err := db.Create(&comment).Error; err != nil {
		log.Printf("history write failed for %s/%d: %v", entityType, entityID, err)
	}
}

// AddComment appends a user-authored Comment row and returns it.
// Unlike RecordHistory, an explicit comment write reports its error.
func AddComment(db *gorm.DB, entityType string, entityID uint, content, actorID, actorName string) (*models.Comment, error) {
	if actorID == "" {
		actorID = "system"
	}
	if actorName == "" {
		actorName = "system"
	}

	comment := models.Comment{
		EntityType: entityType,
		EntityID:   entityID,
		Content:    content,
		UserID:     actorID,
		UserName:   actorName,
	}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}
