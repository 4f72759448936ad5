package search

import (
	"strings"
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

func f(v float64) *float64 { return &v }

type stubSource struct {
	products  []models.Product
	loadCount int
}

func (s *stubSource) FindProductByCode(code string) (*models.Product, error) {
	for _, p := range s.products {
		if strings.EqualFold(p.ProductCode, code) {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubSource) SearchProductsByText(term string, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		hay := strings.ToLower(p.Brand + " " + p.ProductName + " " + p.ProductCode)
		if strings.Contains(hay, strings.ToLower(term)) {
			out = append(out, p)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubSource) GetAllActiveProducts() ([]models.Product, error) {
	s.loadCount++
	return s.products, nil
}

func testCatalog() *stubSource {
	return &stubSource{products: []models.Product{
		{ID: 1, Brand: "Duratex", ProductName: "Carvalho Hanover", ProductCode: "DTX_CARVALHO_HANOVER", ThicknessMM: f(15)},
		{ID: 2, Brand: "Duratex", ProductName: "Carvalho Hanover", ProductCode: "DTX_CARVALHO_HANOVER_18", ThicknessMM: f(18)},
		{ID: 3, Brand: "Eucatex", ProductName: "Rovere Soft", ProductCode: "EUCATE_ROVERE_SOFT", ThicknessMM: f(15)},
		{ID: 4, Brand: "Arauco", ProductName: "Branco TX", ProductCode: "ARAUCO_BRANCO_TX", ThicknessMM: f(15)},
	}}
}

func TestSearchExactCodeShortCircuits(t *testing.T) {
	m := NewMatcher(testCatalog(), 0.6, 10)
	res, err := m.Search("dtx_carvalho_hanover")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(res.Matches))
	}
	got := res.Matches[0]
	if got.MatchType != MatchExactCode || got.Score != 1.0 || got.Product.ID != 1 {
		t.Errorf("unexpected match: %+v", got)
	}
}

func TestSearchThicknessFilter(t *testing.T) {
	m := NewMatcher(testCatalog(), 0.6, 10)
	res, err := m.Search("carvalho hanover 15mm")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.ThicknessMismatch {
		t.Error("15mm variant exists, mismatch flag should be false")
	}
	for _, match := range res.Matches {
		if match.Product.ThicknessMM == nil || *match.Product.ThicknessMM != 15 {
			t.Errorf("off-thickness product leaked through: %+v", match.Product)
		}
	}
}

func TestSearchThicknessMismatchFlagged(t *testing.T) {
	m := NewMatcher(testCatalog(), 0.6, 10)
	res, err := m.Search("carvalho hanover 25mm")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !res.ThicknessMismatch {
		t.Fatal("no 25mm variant exists, mismatch flag should be set")
	}
	if len(res.Matches) == 0 {
		t.Error("mismatch should still return the available thicknesses")
	}
}

func TestSearchThicknessToleranceBoundary(t *testing.T) {
	src := &stubSource{products: []models.Product{
		{ID: 1, Brand: "Duratex", ProductName: "Branco Diamante", ProductCode: "DTX_BD", ThicknessMM: f(15.1)},
	}}
	m := NewMatcher(src, 0.6, 10)

	res, err := m.Search("branco diamante 15mm")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.ThicknessMismatch {
		t.Error("15.1mm is within +-0.1 of 15mm, should not be flagged")
	}

	src.products[0].ThicknessMM = f(15.2)
	res, err = m.Search("branco diamante 15mm")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !res.ThicknessMismatch {
		t.Error("15.2mm is outside tolerance, should be flagged")
	}
}

func TestSearchFuzzyFallback(t *testing.T) {
	m := NewMatcher(testCatalog(), 0.6, 10)
	// Misspelled, so no substring hit; fuzzy should still find it.
	res, err := m.Search("carvalho hanovre")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("fuzzy fallback found nothing")
	}
	if res.Matches[0].MatchType != MatchFuzzy {
		t.Errorf("expected fuzzy match, got %q", res.Matches[0].MatchType)
	}
	if res.Matches[0].Product.ProductName != "Carvalho Hanover" {
		t.Errorf("wrong top match: %+v", res.Matches[0].Product)
	}
}

func TestFuzzyIndexCachedUntilInvalidated(t *testing.T) {
	src := testCatalog()
	m := NewMatcher(src, 0.6, 10)

	if _, err := m.Search("carvalho hanovre"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if _, err := m.Search("rovere sofft"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if src.loadCount != 1 {
		t.Errorf("index loaded %d times, want 1", src.loadCount)
	}

	m.Invalidate()
	if _, err := m.Search("carvalho hanovre"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if src.loadCount != 2 {
		t.Errorf("index not rebuilt after Invalidate, loads = %d", src.loadCount)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	m := NewMatcher(testCatalog(), 0.6, 10)
	res, err := m.Search("   ")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res.Matches) != 0 {
		t.Errorf("empty query should match nothing, got %d", len(res.Matches))
	}
}
