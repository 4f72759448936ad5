package substitution

import (
	"math"
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

func f(v float64) *float64 { return &v }

func TestWoodFamilyAliases(t *testing.T) {
	v := DefaultVocab()
	tests := []struct {
		name string
		want string
	}{
		{"Carvalho Hanover", "carvalho"},
		{"Rovere Soft", "carvalho"},
		{"Nogueira Terracota", "nogal"},
		{"Teka Artico", "teca"},
		{"Branco Diamante", ""},
	}
	for _, tc := range tests {
		if got := v.WoodFamily(tc.name); got != tc.want {
			t.Errorf("WoodFamily(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestColorFamilyAliases(t *testing.T) {
	v := DefaultVocab()
	if got := v.ColorFamily("Grafite Urbano"); got != "cinza" {
		t.Errorf("ColorFamily(Grafite Urbano) = %q, want cinza", got)
	}
	if got := v.ColorFamily("Creme Veneza"); got != "neutro_claro" {
		t.Errorf("ColorFamily(Creme Veneza) = %q, want neutro_claro", got)
	}
}

func TestSameFinishGroup(t *testing.T) {
	v := DefaultVocab()
	if !v.SameFinishGroup("Matt", "Soft") {
		t.Error("matt and soft share a finish group")
	}
	if v.SameFinishGroup("Silk", "Chess") {
		t.Error("silk and chess are unrelated finishes")
	}
	if !v.SameFinishGroup("Supermatte TX", "Matt") {
		t.Error("suffixed finish variant should still resolve to its group")
	}
	if v.SameFinishGroup("", "Soft") {
		t.Error("empty finish never matches a group")
	}
}

func TestAttributeScoreCategoryGate(t *testing.T) {
	v := DefaultVocab()
	wood := models.Product{ProductName: "Carvalho Hanover", Category: models.CategoryMadeirado}
	solid := models.Product{ProductName: "Branco Diamante", Category: models.CategoryUnicolor}

	if got := AttributeScore(v, wood, solid); got != 0 {
		t.Errorf("cross-category pair must be disqualified, got %f", got)
	}

	other := models.Product{ProductName: "Ardosia", Category: models.CategoryOutro}
	if got := AttributeScore(v, wood, other); got == 0 {
		t.Error("catch-all category should earn partial credit, not be disqualified")
	}
}

func TestAttributeScoreSameWoodBeatsDifferentWood(t *testing.T) {
	v := DefaultVocab()
	original := models.Product{ProductName: "Carvalho Hanover", Category: models.CategoryMadeirado, Finish: "Soft", ThicknessMM: f(15)}
	sameWood := models.Product{ProductName: "Rovere Naturale", Category: models.CategoryMadeirado, Finish: "Matt", ThicknessMM: f(15)}
	otherWood := models.Product{ProductName: "Nogueira Terracota", Category: models.CategoryMadeirado, Finish: "Matt", ThicknessMM: f(15)}

	same := AttributeScore(v, original, sameWood)
	other := AttributeScore(v, original, otherWood)
	if same <= other {
		t.Errorf("same wood family should score higher: same=%f other=%f", same, other)
	}
	// category 0.30 + wood 0.30 + finish group 0.05 + thickness 0.10
	if math.Abs(same-0.75) > 1e-9 {
		t.Errorf("same-family score = %f, want 0.75", same)
	}
	// wood exact drops to wood related: 0.30 + 0.05 + 0.05 + 0.10
	if math.Abs(other-0.50) > 1e-9 {
		t.Errorf("related-family score = %f, want 0.50", other)
	}
}

func TestShortlistFloorsAndCaps(t *testing.T) {
	v := DefaultVocab()
	original := models.Product{ID: 1, ProductName: "Carvalho Hanover", Category: models.CategoryMadeirado}

	pool := []models.Product{
		{ID: 1, ProductName: "Carvalho Hanover", Category: models.CategoryMadeirado},       // self
		{ID: 2, ProductName: "Branco Diamante", Category: models.CategoryUnicolor},         // disqualified
		{ID: 3, ProductName: "Rovere Soft", Category: models.CategoryMadeirado},            // strong
		{ID: 4, ProductName: "Nogueira Terracota", Category: models.CategoryMadeirado},     // weaker
	}
	for i := int64(0); i < 30; i++ {
		pool = append(pool, models.Product{ID: 100 + i, ProductName: "Itapua Clone", Category: models.CategoryMadeirado})
	}

	out := Shortlist(v, original, pool)
	if len(out) != candidateCap {
		t.Fatalf("shortlist size = %d, want cap %d", len(out), candidateCap)
	}
	for _, c := range out {
		if c.Product.ID == 1 {
			t.Error("original leaked into its own shortlist")
		}
		if c.Product.ID == 2 {
			t.Error("disqualified candidate survived the floor")
		}
		if c.Score <= prefilterFloor {
			t.Errorf("candidate at or below floor survived: %+v", c)
		}
	}
	if out[0].Product.ID != 3 {
		t.Errorf("best candidate should lead, got %+v", out[0].Product)
	}
}
