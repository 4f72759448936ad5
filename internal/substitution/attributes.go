package substitution

import (
	"sort"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
)

// Attribute scoring weights. The heuristic pass only has to be good
// enough to shortlist candidates for the LLM ranking pass.
const (
	weightCategory      = 0.30
	weightCategoryOutro = 0.10
	weightWoodExact     = 0.30
	weightWoodRelated   = 0.05
	weightColor         = 0.30
	weightFinishExact   = 0.10
	weightFinishGroup   = 0.05
	weightThickness     = 0.10

	// prefilterFloor removes candidates too dissimilar to bother
	// ranking (strictly above it survives); candidateCap bounds the
	// LLM batch.
	prefilterFloor = 0.15
	candidateCap   = 20
)

// AttributeScore rates how plausible b is as a visual stand-in for a,
// in [0,1]. A hard category mismatch disqualifies (score 0) unless
// either side is the catch-all category.
func AttributeScore(v *Vocab, a, b models.Product) float64 {
	score := 0.0

	catA, catB := a.Category, b.Category
	switch {
	case catA != "" && catA == catB:
		score += weightCategory
	case catA == models.CategoryOutro || catB == models.CategoryOutro:
		score += weightCategoryOutro
	default:
		return 0.0
	}

	woodA := v.WoodFamily(a.ProductName)
	woodB := v.WoodFamily(b.ProductName)
	if woodA != "" && woodA == woodB {
		score += weightWoodExact
	} else if woodA != "" && woodB != "" {
		score += weightWoodRelated
	}

	colorA := v.ColorFamily(a.ProductName)
	colorB := v.ColorFamily(b.ProductName)
	if colorA != "" && colorA == colorB {
		score += weightColor
	}

	finA := search.Normalize(a.Finish)
	finB := search.Normalize(b.Finish)
	if finA != "" && finA == finB {
		score += weightFinishExact
	} else if v.SameFinishGroup(a.Finish, b.Finish) {
		score += weightFinishGroup
	}

	if a.ThicknessMM != nil && b.ThicknessMM != nil && *a.ThicknessMM == *b.ThicknessMM {
		score += weightThickness
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Candidate is a shortlisted alternative with its heuristic score.
type Candidate struct {
	Product models.Product
	Score   float64
}

// Shortlist scores the pool against the original, drops anything at or
// below the prefilter floor and returns at most candidateCap entries,
// best first.
func Shortlist(v *Vocab, original models.Product, pool []models.Product) []Candidate {
	var out []Candidate
	for _, p := range pool {
		if p.ID == original.ID {
			continue
		}
		if s := AttributeScore(v, original, p); s > prefilterFloor {
			out = append(out, Candidate{Product: p, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.Compare(out[i].Product.ProductName, out[j].Product.ProductName) < 0
	})
	if len(out) > candidateCap {
		out = out[:candidateCap]
	}
	return out
}
