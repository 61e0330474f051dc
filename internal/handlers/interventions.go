package handlers

import (
	"errors"

	"github.com/gmbs/interventions-api/internal/middleware"
	"github.com/gmbs/interventions-api/internal/models"
	"github.com/gmbs/interventions-api/internal/services"
	"github.com/gmbs/interventions-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InterventionHandler handles intervention routes
type InterventionHandler struct {
	DB *gorm.DB
}

// List handles GET /api/interventions
// @Summary List interventions
// @Description Filtered, sorted, paginated list of interventions
// @Tags Interventions
// @Accept json
// @Produce json
// @Param page query int false "Page number (1-indexed)"
// @Param limit query int false "Page size (max 100)"
// @Param status query string false "Exact status filter"
// @Param artisan_id query int false "Artisan id filter"
// @Param agency_id query int false "Agency id filter"
// @Param user_id query int false "Assigned user id filter"
// @Param search query string false "Substring search across address, context and tenant name"
// @Param sort_field query string false "Sort field (aliases: cree, echeance, marge)"
// @Param sort_direction query string false "asc or desc"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions [get]
func (h *InterventionHandler) List(c *fiber.Ctx) error {
	q := parseListQuery(c)

	items, total, err := services.ListInterventions(h.DB, q)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listInterventions")
	}

	data, err := services.ProjectInterventions(h.DB, items)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listInterventions")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": data,
		"pagination": fiber.Map{
			"page":        q.Page,
			"limit":       q.Limit,
			"total":       total,
			"total_pages": services.TotalPages(total, q.Limit),
		},
		"filters": fiber.Map{
			"status":     emptyToNil(q.Status),
			"artisan_id": q.ArtisanID,
			"agency_id":  q.AgencyID,
			"user_id":    q.UserID,
			"search":     emptyToNil(q.Search),
		},
		"sort": fiber.Map{
			"field":     q.SortField,
			"direction": q.SortDirection,
		},
	})
}

// Stats handles GET /api/interventions/stats
// @Summary Intervention statistics
// @Description Totals and per-status/agency/artisan/user counts plus monetary total
// @Tags Interventions
// @Accept json
// @Produce json
// @Success 200 {object} services.Stats
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions/stats [get]
func (h *InterventionHandler) Stats(c *fiber.Ctx) error {
	stats, err := services.InterventionStats(h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "interventionStats")
	}
	return utils.SuccessResponse(c, stats, fiber.StatusOK)
}

// Get handles GET /api/interventions/:id
// @Summary Get one intervention
// @Description Projected view of a single intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path int true "Intervention id"
// @Success 200 {object} services.InterventionView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions/{id} [get]
func (h *InterventionHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Intervention non trouvée")
	}

	itv, err := services.GetIntervention(h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Intervention non trouvée")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getIntervention")
	}

	view, err := services.ProjectIntervention(h.DB, itv)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getIntervention")
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// Create handles POST /api/interventions
// @Summary Create an intervention
// @Description Creates an intervention and records a creation history entry
// @Tags Interventions
// @Accept json
// @Produce json
// @Param body body services.CreateInterventionInput true "Creatable fields"
// @Success 201 {object} services.InterventionView
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions [post]
func (h *InterventionHandler) Create(c *fiber.Ctx) error {
	var input services.CreateInterventionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ValidationErrorResponse(c, "Invalid input")
	}

	itv, err := services.CreateIntervention(h.DB, input, middleware.ActorID(c), middleware.ActorName(c))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return utils.ValidationErrorResponse(c, err.Error())
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createIntervention")
	}

	view, err := services.ProjectIntervention(h.DB, itv)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createIntervention")
	}
	return utils.SuccessResponse(c, view, fiber.StatusCreated)
}

// Update handles PUT /api/interventions/:id
// @Summary Update an intervention
// @Description Sparse update; absent fields are untouched, explicit null clears optional fields
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path int true "Intervention id"
// @Param body body services.UpdateInterventionInput true "Fields to update"
// @Success 200 {object} services.InterventionView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions/{id} [put]
func (h *InterventionHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Intervention non trouvée")
	}

	var input services.UpdateInterventionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ValidationErrorResponse(c, "Invalid input")
	}

	itv, err := services.UpdateIntervention(h.DB, id, input, middleware.ActorID(c), middleware.ActorName(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Intervention non trouvée")
		}
		if errors.Is(err, services.ErrValidation) {
			return utils.ValidationErrorResponse(c, err.Error())
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateIntervention")
	}

	view, err := services.ProjectIntervention(h.DB, itv)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateIntervention")
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// Delete handles DELETE /api/interventions/:id
// @Summary Delete an intervention
// @Description Hard delete; attached comments and documents are not cascaded
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path int true "Intervention id"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions/{id} [delete]
func (h *InterventionHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Intervention non trouvée")
	}

	if err := services.DeleteIntervention(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Intervention non trouvée")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteIntervention")
	}

	return utils.MessageResponse(c, "Intervention supprimée avec succès")
}

// AddComment handles POST /api/interventions/:id/comments
// @Summary Add a comment
// @Description Appends a free-text comment to the intervention's history
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path int true "Intervention id"
// @Param body body object true "Comment content"
// @Success 201 {object} services.HistoryView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions/{id}/comments [post]
func (h *InterventionHandler) AddComment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Intervention non trouvée")
	}

	if _, err := services.GetIntervention(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Intervention non trouvée")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addComment")
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil || body.Content == "" {
		return utils.ValidationErrorResponse(c, "content is required")
	}

	comment, err := services.AddComment(h.DB, models.EntityTypeIntervention, id, body.Content,
		middleware.ActorID(c), middleware.ActorName(c))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addComment")
	}

	return utils.SuccessResponse(c, services.HistoryView{
		ID:          comment.ID,
		Action:      "Commentaire ajouté",
		Description: comment.Content,
		UserID:      comment.UserID,
		UserName:    comment.UserName,
		Timestamp:   comment.CreatedAt,
		Changes:     map[string]any{},
	}, fiber.StatusCreated)
}

// ListDocuments handles GET /api/interventions/:id/documents
// @Summary List documents
// @Description Document metadata attached to the intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path int true "Intervention id"
// @Success 200 {array} services.DocumentView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions/{id}/documents [get]
func (h *InterventionHandler) ListDocuments(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Intervention non trouvée")
	}

	itv, err := services.GetIntervention(h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Intervention non trouvée")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listDocuments")
	}

	view, err := services.ProjectIntervention(h.DB, itv)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listDocuments")
	}
	return utils.SuccessResponse(c, view.Documents, fiber.StatusOK)
}

// AddDocument handles POST /api/interventions/:id/documents
// @Summary Register a document
// @Description Registers metadata for an externally stored file
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path int true "Intervention id"
// @Param body body services.DocumentInput true "Document metadata"
// @Success 201 {object} services.DocumentView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /interventions/{id}/documents [post]
func (h *InterventionHandler) AddDocument(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Intervention non trouvée")
	}

	if _, err := services.GetIntervention(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Intervention non trouvée")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addDocument")
	}

	var input services.DocumentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ValidationErrorResponse(c, "Invalid input")
	}
	if input.UploadedBy == "" {
		input.UploadedBy = middleware.ActorName(c)
	}

	doc, err := services.RegisterDocument(h.DB, models.EntityTypeIntervention, id, input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return utils.ValidationErrorResponse(c, err.Error())
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "addDocument")
	}

	return utils.SuccessResponse(c, services.DocumentView{
		ID:         doc.ID,
		Filename:   doc.Filename,
		FileType:   doc.FileType,
		FileSize:   doc.FileSize,
		UploadedBy: doc.UploadedBy,
		CreatedAt:  doc.CreatedAt,
	}, fiber.StatusCreated)
}

// emptyToNil maps an empty string to nil so optional filters serialize as null.
func emptyToNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
