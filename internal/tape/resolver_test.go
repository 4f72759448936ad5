package tape

import (
	"strings"
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/models"
)

type stubTapeSource struct {
	products    map[int64]models.Product
	compat      map[int64][]catalog.CompatibleTape
	tapes       []models.EdgingTape
	equivalents map[int64][]models.EdgingTape
	searchCalls []string
}

func (s *stubTapeSource) FindProductByID(id int64) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *stubTapeSource) GetCompatibleTapes(productID int64) ([]catalog.CompatibleTape, error) {
	return s.compat[productID], nil
}

func (s *stubTapeSource) SearchTapesByName(term string, limit int) ([]models.EdgingTape, error) {
	s.searchCalls = append(s.searchCalls, term)
	var out []models.EdgingTape
	for _, t := range s.tapes {
		if strings.Contains(strings.ToLower(t.TapeName), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(t.Brand), strings.ToLower(term)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTapeSource) GetTapeEquivalents(tapeID int64) ([]models.EdgingTape, error) {
	return s.equivalents[tapeID], nil
}

func tapeFixture() *stubTapeSource {
	return &stubTapeSource{
		products: map[int64]models.Product{
			1: {ID: 1, Brand: "Duratex", ProductName: "Carvalho Hanover"},
			2: {ID: 2, Brand: "Eucatex", ProductName: "Rovere Soft"},
		},
		compat:      map[int64][]catalog.CompatibleTape{},
		equivalents: map[int64][]models.EdgingTape{},
	}
}

func TestResolveRegisteredTapes(t *testing.T) {
	src := tapeFixture()
	src.compat[1] = []catalog.CompatibleTape{
		{EdgingTape: models.EdgingTape{ID: 10, TapeName: "Fita Carvalho Hanover", AvailableMeters: 60}, CompatibilityType: models.TapeOfficial},
		{EdgingTape: models.EdgingTape{ID: 11, TapeName: "Fita Carvalho Claro", AvailableMeters: 0}, CompatibilityType: models.TapeAlternative},
	}
	r := NewResolver(src, 20)

	product, opts, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if product == nil {
		t.Fatal("product missing")
	}
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2", len(opts))
	}
	if opts[0].CompatibilityType != models.TapeOfficial {
		t.Errorf("official tape should lead: %+v", opts[0])
	}
	if opts[0].Rolls != 3 {
		t.Errorf("60 meters at 20m/roll = 3 rolls, got %f", opts[0].Rolls)
	}
	if opts[1].InStock {
		t.Error("tape with zero meters reported in stock")
	}
}

func TestResolveNameMatchFallback(t *testing.T) {
	src := tapeFixture()
	src.tapes = []models.EdgingTape{
		{ID: 10, Brand: "Rehau", TapeName: "Carvalho Hanover 22mm", AvailableMeters: 0},
		{ID: 11, Brand: "Duratex", TapeName: "Carvalho Hanover", AvailableMeters: 40},
		{ID: 12, Brand: "Rehau", TapeName: "Branco Liso", AvailableMeters: 100},
	}
	r := NewResolver(src, 20)

	_, opts, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2 (unrelated tape filtered): %+v", len(opts), opts)
	}
	if opts[0].ID != 11 {
		t.Errorf("in-stock same-brand tape should lead: %+v", opts[0])
	}
	for _, o := range opts {
		if o.CompatibilityType != "name_match" {
			t.Errorf("fallback options must be marked name_match: %+v", o)
		}
		if o.MatchScore < 0.5 {
			t.Errorf("option below match floor: %+v", o)
		}
	}
}

func TestResolveNameMatchScoresBrandColumn(t *testing.T) {
	// Some suppliers register the pattern as the tape's brand and keep
	// a generic tape name; the match must rate that column too.
	src := tapeFixture()
	src.tapes = []models.EdgingTape{
		{ID: 10, Brand: "Carvalho Hanover", TapeName: "Fita Borda 22mm", AvailableMeters: 40},
	}
	r := NewResolver(src, 20)

	_, opts, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(opts) != 1 || opts[0].ID != 10 {
		t.Fatalf("brand-named tape missed: %+v", opts)
	}
	if opts[0].MatchScore < 0.5 {
		t.Errorf("brand match should clear the floor: %+v", opts[0])
	}
}

func TestResolvePerTermFallback(t *testing.T) {
	src := tapeFixture()
	// Full-name search finds nothing; the single term "hanover" does.
	src.tapes = []models.EdgingTape{
		{ID: 10, Brand: "Rehau", TapeName: "Hanover", AvailableMeters: 20},
	}
	r := NewResolver(src, 20)

	_, opts, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(opts) != 1 || opts[0].ID != 10 {
		t.Fatalf("per-term fallback missed the tape: %+v", opts)
	}
	if len(src.searchCalls) < 2 {
		t.Errorf("expected full-name then per-term searches, got %v", src.searchCalls)
	}
}

func TestResolveForSubstitutionPrefersSubstituteTapes(t *testing.T) {
	src := tapeFixture()
	src.compat[2] = []catalog.CompatibleTape{
		{EdgingTape: models.EdgingTape{ID: 20, TapeName: "Fita Rovere Soft", AvailableMeters: 20}, CompatibilityType: models.TapeOfficial},
	}
	src.compat[1] = []catalog.CompatibleTape{
		{EdgingTape: models.EdgingTape{ID: 10, TapeName: "Fita Carvalho Hanover", AvailableMeters: 60}, CompatibilityType: models.TapeOfficial},
	}
	r := NewResolver(src, 20)

	opts, err := r.ResolveForSubstitution(1, 2)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(opts) != 1 || opts[0].ID != 20 {
		t.Errorf("substitute's own tape should win: %+v", opts)
	}
}

func TestResolveForSubstitutionFallsBackWithEquivalents(t *testing.T) {
	src := tapeFixture()
	src.compat[1] = []catalog.CompatibleTape{
		{EdgingTape: models.EdgingTape{ID: 10, TapeName: "Fita Carvalho Hanover", AvailableMeters: 0}, CompatibilityType: models.TapeOfficial},
	}
	src.equivalents[10] = []models.EdgingTape{
		{ID: 30, Brand: "Proadec", TapeName: "Fita Carvalho Equivalente", AvailableMeters: 20},
	}
	r := NewResolver(src, 20)

	opts, err := r.ResolveForSubstitution(1, 2)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(opts) != 1 || opts[0].ID != 30 {
		t.Fatalf("recorded equivalent should replace the dry tape: %+v", opts)
	}
	if opts[0].CompatibilityType != "equivalent" {
		t.Errorf("equivalent options must be marked as such: %+v", opts[0])
	}
}

func TestResolveForSubstitutionReturnsAllEquivalents(t *testing.T) {
	// All recorded equivalents of the first mapped tape come back,
	// stocked or not; the seller decides what to order.
	src := tapeFixture()
	src.compat[1] = []catalog.CompatibleTape{
		{EdgingTape: models.EdgingTape{ID: 10, TapeName: "Fita Carvalho Hanover", AvailableMeters: 60}, CompatibilityType: models.TapeOfficial},
		{EdgingTape: models.EdgingTape{ID: 11, TapeName: "Fita Carvalho Claro", AvailableMeters: 20}, CompatibilityType: models.TapeRecommended},
	}
	src.equivalents[10] = []models.EdgingTape{
		{ID: 30, Brand: "Proadec", TapeName: "Fita Carvalho Equivalente", AvailableMeters: 0},
		{ID: 31, Brand: "Rehau", TapeName: "Fita Carvalho Similar", AvailableMeters: 20},
	}
	r := NewResolver(src, 20)

	opts, err := r.ResolveForSubstitution(1, 2)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(opts) != 2 || opts[0].ID != 30 || opts[1].ID != 31 {
		t.Fatalf("expected both equivalents of the first mapped tape: %+v", opts)
	}
	if opts[0].InStock {
		t.Error("dry equivalent reported in stock")
	}
}

func TestResolveForSubstitutionWithoutEquivalents(t *testing.T) {
	src := tapeFixture()
	src.compat[1] = []catalog.CompatibleTape{
		{EdgingTape: models.EdgingTape{ID: 10, TapeName: "Fita Carvalho Hanover", AvailableMeters: 0}, CompatibilityType: models.TapeOfficial},
	}
	r := NewResolver(src, 20)

	opts, err := r.ResolveForSubstitution(1, 2)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(opts) != 1 || opts[0].ID != 10 {
		t.Errorf("original's tapes should stand when no equivalence is recorded: %+v", opts)
	}
}

func TestResolveUnknownProduct(t *testing.T) {
	r := NewResolver(tapeFixture(), 20)
	product, opts, err := r.Resolve(99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product != nil || opts != nil {
		t.Errorf("unknown id should yield nils, got %v / %v", product, opts)
	}
}
