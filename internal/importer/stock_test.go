package importer

import (
	"strings"
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
	"github.com/painelsoft/mdfcopilot/internal/substitution"
)

type stubCatalog struct {
	byCode  map[string]*models.Product
	created []*models.Product
	updated []*models.Product
	stocks  []*models.Stock
	tapes   []*models.EdgingTape
}

func (s *stubCatalog) FindProductByCode(code string) (*models.Product, error) {
	return s.byCode[code], nil
}
func (s *stubCatalog) CreateProduct(p *models.Product) error {
	s.created = append(s.created, p)
	return nil
}
func (s *stubCatalog) UpdateProduct(p *models.Product) error {
	s.updated = append(s.updated, p)
	return nil
}
func (s *stubCatalog) GetAllActiveProducts() ([]models.Product, error) { return nil, nil }
func (s *stubCatalog) AddEquivalence(aID, bID int64, confidence float64, source string) error {
	return nil
}
func (s *stubCatalog) UpsertStock(row *models.Stock) error {
	s.stocks = append(s.stocks, row)
	return nil
}
func (s *stubCatalog) UpsertTape(t *models.EdgingTape) error {
	s.tapes = append(s.tapes, t)
	return nil
}
func (s *stubCatalog) HasImport(fileName string) (bool, error) { return false, nil }
func (s *stubCatalog) LogImport(entry *models.ImportLog) error { return nil }

func cacheFor(products ...models.Product) []matchCandidate {
	cache := make([]matchCandidate, 0, len(products))
	for _, p := range products {
		name := search.Normalize(p.ProductName)
		words := map[string]bool{}
		for _, w := range strings.Fields(name) {
			words[w] = true
		}
		cache = append(cache, matchCandidate{product: p, name: name, words: words})
	}
	return cache
}

func TestUpsertBoardRowBackfillsThicknessAndFinish(t *testing.T) {
	// Products born from the similarity spreadsheet carry neither
	// thickness nor finish; the first matching stock row fills both in.
	store := &stubCatalog{byCode: map[string]*models.Product{}}
	existing := models.Product{ID: 7, Brand: "Duratex", ProductName: "Carvalho Hanover", IsActive: true}
	cache := cacheFor(existing)

	err := upsertBoardRow(store, substitution.DefaultVocab(), cache, []string{"Duratex"},
		"Mdf Duratex Carvalho Hanover 15mm Soft", 10, "central")
	if err != nil {
		t.Fatalf("board row failed: %v", err)
	}
	if len(store.updated) != 1 {
		t.Fatalf("expected one product update, got %d", len(store.updated))
	}
	up := store.updated[0]
	if up.ThicknessMM == nil || *up.ThicknessMM != 15 {
		t.Errorf("thickness not backfilled: %+v", up.ThicknessMM)
	}
	if up.Finish != "Soft" {
		t.Errorf("finish not backfilled: %q", up.Finish)
	}
	if len(store.stocks) != 1 || store.stocks[0].ProductID != 7 {
		t.Errorf("stock not upserted for matched product: %+v", store.stocks)
	}
}

func TestUpsertBoardRowSkipsUpdateWhenComplete(t *testing.T) {
	store := &stubCatalog{byCode: map[string]*models.Product{}}
	th := 15.0
	existing := models.Product{ID: 7, Brand: "Duratex", ProductName: "Carvalho Hanover",
		ThicknessMM: &th, Finish: "Soft", IsActive: true}
	cache := cacheFor(existing)

	err := upsertBoardRow(store, substitution.DefaultVocab(), cache, []string{"Duratex"},
		"Mdf Duratex Carvalho Hanover 15mm Soft", 10, "central")
	if err != nil {
		t.Fatalf("board row failed: %v", err)
	}
	if len(store.updated) != 0 {
		t.Errorf("complete product should not be rewritten: %+v", store.updated)
	}
}
