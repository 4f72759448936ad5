package substitution

import (
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/models"
)

type stubEquivSource struct {
	products map[int64]models.Product
	rows     []catalog.EquivalentProduct
}

func (s *stubEquivSource) FindProductByID(id int64) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *stubEquivSource) GetEquivalents(productID int64) ([]catalog.EquivalentProduct, error) {
	return s.rows, nil
}

func equivRow(id int64, name string, thickness float64, net float64) catalog.EquivalentProduct {
	return catalog.EquivalentProduct{
		Product: models.Product{
			ID: id, Brand: "Eucatex", ProductName: name,
			ProductCode: name, ThicknessMM: f(thickness),
		},
		Confidence:   1.0,
		Source:       "Tabela Similaridade Grupo Locatelli",
		NetAvailable: net,
	}
}

func TestResolveFiltersStockAndThickness(t *testing.T) {
	src := &stubEquivSource{
		products: map[int64]models.Product{
			1: {ID: 1, ProductName: "Carvalho Hanover", ThicknessMM: f(15)},
		},
		rows: []catalog.EquivalentProduct{
			equivRow(2, "Rovere Soft", 15, 12),   // keep
			equivRow(3, "Rovere Soft 18", 18, 9), // wrong thickness
			equivRow(4, "Rovere Gesso", 15, 0.5), // below min stock
		},
	}
	r := NewEquivalenceResolver(src, 1.0)

	original, eqs, err := r.Resolve(1, true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if original == nil {
		t.Fatal("original missing")
	}
	if len(eqs) != 1 {
		t.Fatalf("got %d equivalents, want 1: %+v", len(eqs), eqs)
	}
	if eqs[0].ID != 2 || !eqs[0].InStock || eqs[0].NetAvailable != 12 {
		t.Errorf("unexpected equivalent: %+v", eqs[0])
	}
}

func TestResolveThicknessFilterOptional(t *testing.T) {
	src := &stubEquivSource{
		products: map[int64]models.Product{
			1: {ID: 1, ProductName: "Carvalho Hanover", ThicknessMM: f(15)},
		},
		rows: []catalog.EquivalentProduct{
			equivRow(3, "Rovere Soft 18", 18, 9),
		},
	}
	r := NewEquivalenceResolver(src, 1.0)

	_, eqs, err := r.Resolve(1, false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(eqs) != 1 {
		t.Errorf("thickness filter should be off, got %d equivalents", len(eqs))
	}
}

func TestResolveUnknownThicknessPasses(t *testing.T) {
	row := equivRow(2, "Rovere Soft", 15, 12)
	row.ThicknessMM = nil
	src := &stubEquivSource{
		products: map[int64]models.Product{
			1: {ID: 1, ProductName: "Carvalho Hanover", ThicknessMM: f(15)},
		},
		rows: []catalog.EquivalentProduct{row},
	}
	r := NewEquivalenceResolver(src, 1.0)

	_, eqs, err := r.Resolve(1, true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(eqs) != 1 {
		t.Error("equivalent with unknown thickness must not be filtered")
	}
}

func TestResolveEmptyIsNotAnError(t *testing.T) {
	src := &stubEquivSource{
		products: map[int64]models.Product{1: {ID: 1, ProductName: "Carvalho Hanover"}},
	}
	r := NewEquivalenceResolver(src, 1.0)

	original, eqs, err := r.Resolve(1, true)
	if err != nil {
		t.Fatalf("empty equivalence list must not error: %v", err)
	}
	if original == nil || len(eqs) != 0 {
		t.Errorf("unexpected result: %v / %v", original, eqs)
	}
}

func TestResolveUnknownProduct(t *testing.T) {
	r := NewEquivalenceResolver(&stubEquivSource{products: map[int64]models.Product{}}, 1.0)
	original, _, err := r.Resolve(42, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original != nil {
		t.Error("unknown product should yield nil original")
	}
}
