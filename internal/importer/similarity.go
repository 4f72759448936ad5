package importer

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
	"github.com/painelsoft/mdfcopilot/internal/substitution"
)

// similaritySource labels equivalences loaded from the bundled
// manufacturer cross-reference table.
const similaritySource = "Tabela Similaridade Grupo Locatelli"

// manufacturers in the column order of the bundled table.
var manufacturers = []string{
	"DURATEX", "ARAUCO", "GUARARAPES", "EUCATEX", "PLACAS DO BRASIL", "FLORAPLAC", "BERNECK",
}

// Data rows start after the two header rows and the column-title row.
const similarityDataRow = 3

// Catalog is what the importer needs from the store.
type Catalog interface {
	FindProductByCode(code string) (*models.Product, error)
	CreateProduct(p *models.Product) error
	UpdateProduct(p *models.Product) error
	GetAllActiveProducts() ([]models.Product, error)
	AddEquivalence(aID, bID int64, confidence float64, source string) error
	UpsertStock(row *models.Stock) error
	UpsertTape(t *models.EdgingTape) error
	HasImport(fileName string) (bool, error)
	LogImport(entry *models.ImportLog) error
}

var codeCleanRe = regexp.MustCompile(`[^A-Z0-9]+`)

// ProductCode derives a stable catalog code from brand and name:
// the first six letters of the brand, underscore, the name with
// separators collapsed to underscores.
func ProductCode(brand, name string) string {
	b := codeCleanRe.ReplaceAllString(strings.ToUpper(search.Normalize(brand)), "")
	if len(b) > 6 {
		b = b[:6]
	}
	n := strings.ToUpper(search.Normalize(name))
	n = strings.Trim(codeCleanRe.ReplaceAllString(n, "_"), "_")
	return b + "_" + n
}

// InferCategory guesses the visual category from the pattern name.
func InferCategory(vocab *substitution.Vocab, name string) string {
	if vocab.WoodFamily(name) != "" {
		return models.CategoryMadeirado
	}
	if vocab.ColorFamily(name) != "" {
		return models.CategoryUnicolor
	}
	return models.CategoryOutro
}

// ImportSimilarityTable loads the manufacturer cross-reference
// spreadsheet: each data row names the same visual pattern across the
// seven manufacturer columns. Every non-empty cell becomes a product
// and every pair within a row becomes a direct equivalence.
func ImportSimilarityTable(store Catalog, vocab *substitution.Vocab, path string) (*models.ImportLog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open similarity table: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read similarity table: %w", err)
	}

	entry := &models.ImportLog{FileName: models.PreloadSimilarityTable, FileType: "similarity_table"}
	for i := similarityDataRow; i < len(rows); i++ {
		row := rows[i]
		var rowProducts []*models.Product
		for col, brand := range manufacturers {
			if col >= len(row) {
				break
			}
			name := strings.TrimSpace(row[col])
			if name == "" || strings.EqualFold(name, "x") || strings.EqualFold(name, "-") {
				continue
			}
			p, err := ensureProduct(store, vocab, brand, name)
			if err != nil {
				log.Printf("⚠️  Row %d (%s %s): %v", i+1, brand, name, err)
				entry.Errors++
				continue
			}
			rowProducts = append(rowProducts, p)
		}

		if len(rowProducts) < 2 {
			if len(rowProducts) > 0 {
				entry.RowsSkipped++
			}
			continue
		}
		for a := 0; a < len(rowProducts); a++ {
			for b := a + 1; b < len(rowProducts); b++ {
				if err := store.AddEquivalence(rowProducts[a].ID, rowProducts[b].ID, 1.0, similaritySource); err != nil {
					log.Printf("⚠️  Row %d equivalence: %v", i+1, err)
					entry.Errors++
				}
			}
		}
		entry.RowsImported++
	}

	if err := store.LogImport(entry); err != nil {
		return nil, err
	}
	log.Printf("✅ Similarity table loaded: %d rows, %d skipped, %d errors",
		entry.RowsImported, entry.RowsSkipped, entry.Errors)
	return entry, nil
}

// ensureProduct finds or creates the product for a (brand, name) cell.
func ensureProduct(store Catalog, vocab *substitution.Vocab, brand, name string) (*models.Product, error) {
	code := ProductCode(brand, name)
	existing, err := store.FindProductByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	p := &models.Product{
		Brand:       titleCaser.String(strings.ToLower(brand)),
		ProductName: titleCaser.String(strings.ToLower(name)),
		ProductCode: code,
		Category:    InferCategory(vocab, name),
		ColorFamily: vocab.ColorFamily(name),
		IsActive:    true,
	}
	if err := store.CreateProduct(p); err != nil {
		return nil, err
	}
	return p, nil
}
