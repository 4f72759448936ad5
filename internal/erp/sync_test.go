package erp

import (
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

type stubFetcher struct {
	rows []erpProduct
}

func (s *stubFetcher) SearchRead(model string, domain []any, fields []string, out any) error {
	*(out.(*[]erpProduct)) = s.rows
	return nil
}

type stubStockWriter struct {
	products map[string]models.Product
	upserts  []models.Stock
}

func (s *stubStockWriter) FindProductByCode(code string) (*models.Product, error) {
	if p, ok := s.products[code]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *stubStockWriter) UpsertStock(row *models.Stock) error {
	s.upserts = append(s.upserts, *row)
	return nil
}

func TestSyncOnceMatchesByCode(t *testing.T) {
	fetcher := &stubFetcher{rows: []erpProduct{
		{DefaultCode: "DURATE_CARVALHO_HANOVER", QtyAvailable: 23},
		{DefaultCode: "UNKNOWN_CODE", QtyAvailable: 5},
		{DefaultCode: "", QtyAvailable: 9},
	}}
	store := &stubStockWriter{products: map[string]models.Product{
		"DURATE_CARVALHO_HANOVER": {ID: 7, ProductCode: "DURATE_CARVALHO_HANOVER"},
	}}

	s := NewSyncer(fetcher, store, "principal", 0)
	n, err := s.SyncOnce()
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if n != 1 {
		t.Errorf("updated = %d, want 1 (unknown codes skipped)", n)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserts))
	}
	up := store.upserts[0]
	if up.ProductID != 7 || up.Location != "principal" || up.QuantityAvailable != 23 {
		t.Errorf("unexpected upsert: %+v", up)
	}
}
