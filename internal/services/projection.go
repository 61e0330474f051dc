package services

import (
	"fmt"
	"time"

	"github.com/gmbs/interventions-api/internal/models"
	"gorm.io/gorm"
)

// InterventionView is the external response shape of an intervention, with
// related names denormalized at projection time and the monetary total
// recomputed from the cost columns.
type InterventionView struct {
	ID                   string         `json:"id"`
	Client               string         `json:"client"`
	ClientID             string         `json:"client_id"`
	Artisan              string         `json:"artisan"`
	ArtisanID            string         `json:"artisan_id"`
	ArtisanMetier        *string        `json:"artisan_metier"`
	ArtisanStatus        *string        `json:"artisan_status"`
	ArtisanDossierStatus *string        `json:"artisan_dossier_status"`
	Agence               *string        `json:"agence"`
	UtilisateurAssigne   string         `json:"utilisateur_assigne"`
	Reference            string         `json:"reference"`
	Statut               string         `json:"statut"`
	Cree                 string         `json:"cree"`
	Echeance             string         `json:"echeance"`
	Description          string         `json:"description"`
	Montant              float64        `json:"montant"`
	Adresse              string         `json:"adresse"`
	Notes                string         `json:"notes"`
	CoutSst              float64        `json:"cout_sst"`
	CoutMateriaux        float64        `json:"cout_materiaux"`
	CoutInterventions    float64        `json:"cout_interventions"`
	Priorite             string         `json:"priorite"`
	Tags                 []string       `json:"tags"`
	Documents            []DocumentView `json:"documents"`
	Historique           []HistoryView  `json:"historique"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// DocumentView is the embedded document metadata shape.
type DocumentView struct {
	ID         uint      `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryView is one entry of the intervention's history log. Changes is
// always empty: history is human-readable text, not a structured diff.
type HistoryView struct {
	ID          uint           `json:"id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	UserID      string         `json:"user_id"`
	UserName    string         `json:"user_name"`
	Timestamp   time.Time      `json:"timestamp"`
	Changes     map[string]any `json:"changes"`
}

// ProjectIntervention converts a persisted intervention into its response
// view. Related artisan/agency/user rows are looked up at projection time so
// the view always reflects their current state; unresolvable references are
// masked with fallback display values rather than failing the read.
// This function never writes.
func ProjectIntervention(db *gorm.DB, itv *models.Intervention) (*InterventionView, error) {
	view := &InterventionView{
		ID:                 fmt.Sprintf("%d", itv.ID),
		Client:             itv.TenantName,
		ClientID:           fmt.Sprintf("%d", itv.ID),
		Artisan:            "Non assigné",
		UtilisateurAssigne: "Non assigné",
		Reference:          fmt.Sprintf("INT-%06d", itv.ID),
		Statut:             itv.Status,
		Description:        itv.Context,
		Montant:            itv.TotalCost(),
		Adresse:            itv.Address,
		Notes:              itv.Notes,
		CoutSst:            itv.SstCost,
		CoutMateriaux:      itv.MaterialCost,
		CoutInterventions:  itv.InterventionCost,
		Priorite:           itv.Priority,
		Tags:               models.SplitTags(itv.Tags),
		Documents:          []DocumentView{},
		Historique:         []HistoryView{},
		CreatedAt:          itv.CreatedAt,
		UpdatedAt:          itv.UpdatedAt,
	}
	if view.Client == "" {
		view.Client = "Client inconnu"
	}
	if itv.CreatedDate != nil {
		view.Cree = itv.CreatedDate.Format("2006-01-02")
	}
	if itv.InterventionDate != nil {
		view.Echeance = itv.InterventionDate.Format("2006-01-02")
	}

	if itv.ArtisanID != nil {
		var artisan models.Artisan
		if err := db.First(&artisan, *itv.ArtisanID).Error; err == nil {
			view.Artisan = artisan.Name
			view.ArtisanID = fmt.Sprintf("%d", artisan.ID)
			if artisan.Speciality != "" {
				view.ArtisanMetier = &artisan.Speciality
			}
			view.ArtisanStatus = &artisan.Status
			view.ArtisanDossierStatus = &artisan.DossierStatus
		}
	}

	if itv.AgencyID != nil {
		var agency models.Agency
		if err := db.First(&agency, *itv.AgencyID).Error; err == nil {
			view.Agence = &agency.Name
		}
	}

	if itv.UserID != nil {
		var user models.User
		if err := db.First(&user, *itv.UserID).Error; err == nil {
			view.UtilisateurAssigne = user.Name
		} else {
			// Dangling reference: mask it instead of failing the read.
			view.UtilisateurAssigne = fmt.Sprintf("Utilisateur %d", *itv.UserID)
		}
	}

	var documents []models.Document
	if err := db.Where("entity_type = ? AND entity_id = ?", models.EntityTypeIntervention, itv.ID).
		Find(&documents).Error; err != nil {
		return nil, err
	}
	for _, doc := range documents {
		view.Documents = append(view.Documents, DocumentView{
			ID:         doc.ID,
			Filename:   doc.Filename,
			FileType:   doc.FileType,
			FileSize:   doc.FileSize,
			UploadedBy: doc.UploadedBy,
			CreatedAt:  doc.CreatedAt,
		})
	}

	var comments []models.Comment
	if err := db.Where("entity_type = ? AND entity_id = ?", models.EntityTypeIntervention, itv.ID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, comment := range comments {
		view.Historique = append(view.Historique, HistoryView{
			ID:          comment.ID,
			Action:      "Commentaire ajouté",
			Description: comment.Content,
			UserID:      comment.UserID,
			UserName:    comment.UserName,
			Timestamp:   comment.CreatedAt,
			Changes:     map[string]any{},
		})
	}

	return view, nil
}

// ProjectInterventions projects a page of interventions in order.
func ProjectInterventions(db *gorm.DB, items []models.Intervention) ([]*InterventionView, error) {
	views := make([]*InterventionView, 0, len(items))
	for i := range items {
		view, err := ProjectIntervention(db, &items[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
