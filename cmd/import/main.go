package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gmbs/interventions-api/internal/config"
	"github.com/gmbs/interventions-api/internal/database"
	"github.com/gmbs/interventions-api/internal/models"
	"github.com/gmbs/interventions-api/internal/services"
	"github.com/gmbs/interventions-api/internal/types"
	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// statusMapping maps the tracking-sheet status labels to application statuses.
var statusMapping = map[string]string{
	"Demandé":          models.StatusDemande,
	"Devis Envoyé":     models.StatusDevisEnvoye,
	"Accepté":          models.StatusAccepte,
	"Inter en cours":   models.StatusEnCours,
	"Annulé":           models.StatusAnnulee,
	"Inter terminée":   models.StatusTerminee,
	"Visite Technique": models.StatusVisiteTechnique,
	"Refusé":           models.StatusRefuse,
	"STAND BY":         models.StatusStandBy,
	"SAV":              models.StatusSav,
	"Att Acompte":      models.StatusAttAcompte,
}

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var inputFilename string
	flag.StringVar(&inputFilename, "i", "", "path to the tracking sheet export (.csv or .xlsx)")
	flag.Parse()

	usage := `
Import a tracking sheet export into the interventions database.

Usage:

import [-h] [-f ENV_FILE_PATH] -i INPUT_FILE

INPUT_FILE: a .csv or .xlsx export with the sheet's original column headers
ENV_FILE_PATH: path to the .env file

example
  import -f /path/to/.env -i suivi_2025.csv
`
	if showHelp {
		fmt.Println(usage)
		return
	}
	if inputFilename == "" {
		fmt.Println(usage)
		log.Fatal("input file is required (-i)")
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rows, err := readRows(inputFilename)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", inputFilename, err)
	}
	if len(rows) < 2 {
		log.Fatalf("No data rows in %s", inputFilename)
	}

	columns := indexColumns(rows[0])
	resolver := services.NewResolver(db)

	imported := 0
	failed := 0
	for i, row := range rows[1:] {
		rowNum := i + 2
		if err := importRow(db, resolver, columns, row); err != nil {
			failed++
			log.Printf("row %d: %v", rowNum, err)
			continue
		}
		imported++
		if imported%100 == 0 {
			log.Printf("%d interventions imported...", imported)
		}
	}

	log.Printf("Import finished: %d imported, %d errors", imported, failed)

	var totalInterventions, totalArtisans, totalAgencies int64
	db.Model(&models.Intervention{}).Count(&totalInterventions)
	db.Model(&models.Artisan{}).Count(&totalArtisans)
	db.Model(&models.Agency{}).Count(&totalAgencies)
	log.Printf("Totals: %d interventions, %d artisans, %d agencies",
		totalInterventions, totalArtisans, totalAgencies)
}

// readRows loads the input file as a header row plus data rows.
// Excel files read the first sheet; anything else is parsed as CSV.
func readRows(path string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" || ext == ".xlsm" {
		file, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		return file.GetRows(sheets[0])
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// indexColumns maps trimmed header names to column positions. The sheet's
// headers carry stray whitespace ("Date ", " Statut"), so lookups go through
// trimmed names.
func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func importRow(db *gorm.DB, resolver *services.Resolver, columns map[string]int, row []string) error {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	artisan, err := resolver.ResolveArtisan(cell("Métier"))
	if err != nil {
		return fmt.Errorf("resolve artisan: %w", err)
	}
	agency, err := resolver.ResolveAgency(cell("Agence"))
	if err != nil {
		return fmt.Errorf("resolve agency: %w", err)
	}
	user, err := resolver.ResolveUser(cell("Gest."))
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	address := cell("Adresse d'intervention")
	if address == "" {
		address = "Adresse non spécifiée"
	}

	input := services.CreateInterventionInput{
		Address:          address,
		Context:          cell("Contexte d'intervention"),
		Status:           mapStatus(cell("Statut")),
		CreatedDate:      parseDate(cell("Date")),
		InterventionDate: parseDate(cell("Date d'intervention")),
		SstCost:          parseAmount(cell("COUT SST")),
		MaterialCost:     parseAmount(cell("COÛT MATERIEL")),
		InterventionCost: parseAmount(cell("COUT INTER")),
		TenantName:       cell("Locataire"),
		TenantPhone:      cell("TEL LOC"),
		TenantEmail:      cell("Em@il Locataire"),
		Manager:          cell("Gest."),
		Notes:            cell("COMMENTAIRE"),
		Priority:         "normale",
	}
	if artisan != nil {
		input.ArtisanID = &artisan.ID
	}
	if agency != nil {
		input.AgencyID = &agency.ID
	}
	if user != nil {
		input.UserID = &user.ID
	}

	_, err = services.CreateIntervention(db, input, "import", "import")
	return err
}

// mapStatus maps a sheet status label to an application status.
// Unknown or empty labels fall back to the default request status.
func mapStatus(label string) string {
	if label == "" {
		return models.StatusDemande
	}
	if status, ok := statusMapping[label]; ok {
		return status
	}
	log.Printf("unknown status label %q, using %q", label, models.StatusDemande)
	return models.StatusDemande
}

// parseDate parses a sheet date cell. Unparseable dates resolve to nil.
func parseDate(value string) *types.FlexTime {
	if value == "" {
		return nil
	}
	t, err := types.ParseFlexTime(value)
	if err != nil {
		log.Printf("unparseable date %q, skipping", value)
		return nil
	}
	ft := types.FlexTime(t)
	return &ft
}

// parseAmount parses a sheet monetary cell. Comma decimals are accepted,
// unparseable or negative amounts resolve to zero.
func parseAmount(value string) types.FlexFloat64 {
	value = strings.ReplaceAll(value, "\"", "")
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, " ", "")
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", ".")
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("unparseable amount %q, using 0", value)
		return 0
	}
	if amount < 0 {
		log.Printf("negative amount %q, using 0", value)
		return 0
	}
	return types.FlexFloat64(amount)
}
