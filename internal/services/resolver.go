package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gmbs/interventions-api/internal/models"
	"gorm.io/gorm"
)

// userCodes maps the short manager codes used in the tracking sheets to
// display names. Unknown codes get an auto-generated placeholder user.
var userCodes = map[string]string{
	"A": "admin",
	"B": "Badr",
	"D": "andré",
	"T": "Tom",
	"K": "Killian",
	"P": "Paul",
	"L": "Lucien",
	"S": "Samuel",
	"J": "Jordan",
	"O": "Oceane",
}

// Resolver finds or creates lookup entities by name or code. Each instance
// carries its own caches, so a single import run never creates the same
// entity twice; instances must not be shared across concurrent runs.
// Names are trimmed but not case-folded: "Dupont" and "dupont" resolve to
// distinct entities.
type Resolver struct {
	db       *gorm.DB
	artisans map[string]*models.Artisan
	agencies map[string]*models.Agency
	users    map[string]*models.User
}

// NewResolver returns a resolver with empty caches bound to db.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		db:       db,
		artisans: make(map[string]*models.Artisan),
		agencies: make(map[string]*models.Agency),
		users:    make(map[string]*models.User),
	}
}

// ResolveArtisan finds or creates an artisan by name.
// An empty or whitespace-only name resolves to nil without touching the store.
func (r *Resolver) ResolveArtisan(name string) (*models.Artisan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if artisan, ok := r.artisans[name]; ok {
		return artisan, nil
	}

	var artisan models.Artisan
	err := r.db.Where("name = ?", name).First(&artisan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		artisan = models.Artisan{
			Name:          name,
			Status:        "actif",
			DossierStatus: "en_cours",
		}
		err = r.db.Create(&artisan).Error
	}
	if err != nil {
		return nil, err
	}

	r.artisans[name] = &artisan
	return &artisan, nil
}

// ResolveAgency finds or creates an agency by name.
func (r *Resolver) ResolveAgency(name string) (*models.Agency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if agency, ok := r.agencies[name]; ok {
		return agency, nil
	}

	var agency models.Agency
	err := r.db.Where("name = ?", name).First(&agency).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		agency = models.Agency{
			Name:   name,
			Status: "actif",
		}
		err = r.db.Create(&agency).Error
	}
	if err != nil {
		return nil, err
	}

	r.agencies[name] = &agency
	return &agency, nil
}

// ResolveUser finds or creates a user by short code. Codes are upper-cased
// before lookup; codes missing from the static table get a placeholder name.
func (r *Resolver) ResolveUser(code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	if user, ok := r.users[code]; ok {
		return user, nil
	}

	var user models.User
	err := r.db.Where("code = ?", code).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if name, known := userCodes[code]; known {
			user = models.User{
				Code:   code,
				Name:   name,
				Email:  fmt.Sprintf("%s@gmbs.fr", strings.ToLower(name)),
				Role:   "gestionnaire",
				Status: "actif",
				Notes:  fmt.Sprintf("Utilisateur créé à partir de l'import - Code: %s", code),
			}
		} else {
			user = models.User{
				Code:   code,
				Name:   fmt.Sprintf("Gestionnaire %s", code),
				Email:  fmt.Sprintf("gestionnaire%s@gmbs.fr", strings.ToLower(code)),
				Role:   "gestionnaire",
				Status: "actif",
				Notes:  fmt.Sprintf("Utilisateur créé automatiquement pour le code inconnu: %s", code),
			}
		}
		err = r.db.Create(&user).Error
	}
	if err != nil {
		return nil, err
	}

	r.users[code] = &user
	return &user, nil
}
