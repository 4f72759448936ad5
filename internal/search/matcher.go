package search

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

// Match types reported to the orchestrator.
const (
	MatchExactCode = "exact_code"
	MatchName      = "name_match"
	MatchFuzzy     = "fuzzy"
)

// ThicknessTolerance is the millimeter slack used when filtering
// matches against a thickness named in the query.
const ThicknessTolerance = 0.1

// fuzzy fallback only runs when the indexed search came up this short.
const fuzzyTriggerCount = 3

// ProductSource is the slice of the catalog the matcher needs.
type ProductSource interface {
	FindProductByCode(code string) (*models.Product, error)
	SearchProductsByText(term string, limit int) ([]models.Product, error)
	GetAllActiveProducts() ([]models.Product, error)
}

// Match is a scored search hit.
type Match struct {
	Product   models.Product `json:"product"`
	Score     float64        `json:"match_score"`
	MatchType string         `json:"match_type"`
}

// Result is the outcome of a product search. ThicknessMismatch is set
// when the query named a thickness but no match satisfied it, in which
// case Matches holds the off-thickness hits for the seller to judge.
type Result struct {
	Matches           []Match  `json:"matches"`
	QueryThickness    *float64 `json:"query_thickness,omitempty"`
	ThicknessMismatch bool     `json:"thickness_mismatch"`
}

// Matcher resolves free-text product queries. The fuzzy strategy works
// over an in-memory index of normalized names built on first use and
// kept for the life of the process; Invalidate drops it after imports.
type Matcher struct {
	source     ProductSource
	threshold  float64
	maxResults int

	mu    sync.Mutex
	index []indexEntry
}

type indexEntry struct {
	product   models.Product
	name      string
	brandName string
}

// NewMatcher creates a matcher. threshold gates the fuzzy strategy;
// maxResults caps every response.
func NewMatcher(source ProductSource, threshold float64, maxResults int) *Matcher {
	return &Matcher{source: source, threshold: threshold, maxResults: maxResults}
}

// Invalidate discards the fuzzy index so the next search rebuilds it.
func (m *Matcher) Invalidate() {
	m.mu.Lock()
	m.index = nil
	m.mu.Unlock()
}

// Search resolves a query through the three strategies in order:
// exact code, indexed name search, fuzzy fallback. An exact code hit
// short-circuits with score 1.0. Thickness named in the query filters
// the final list within ThicknessTolerance.
func (m *Matcher) Search(query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Result{}, nil
	}

	thickness := ExtractThickness(query)
	res := &Result{QueryThickness: thickness}

	// Strategy 1: exact product code.
	if p, err := m.source.FindProductByCode(query); err != nil {
		return nil, err
	} else if p != nil {
		res.Matches = []Match{{Product: *p, Score: 1.0, MatchType: MatchExactCode}}
		return res, nil
	}

	// Strategy 2: indexed substring search on the stripped term.
	term := StripSearchTokens(query)
	if term == "" {
		term = Normalize(query)
	}
	candidates, err := m.source.SearchProductsByText(term, m.maxResults*3)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(candidates))
	exactName := false
	for _, p := range candidates {
		score := scoreProduct(query, p)
		if score >= 0.999 {
			exactName = true
		}
		matches = append(matches, Match{Product: p, Score: score, MatchType: MatchName})
	}

	// Strategy 3: fuzzy fallback over the whole catalog, only when the
	// indexed search came up short and nothing matched exactly.
	if len(matches) < fuzzyTriggerCount && !exactName {
		fuzzy, err := m.fuzzySearch(query)
		if err != nil {
			return nil, err
		}
		matches = append(matches, fuzzy...)
	}

	matches = dedupeBest(matches)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	matches, res.ThicknessMismatch = filterThickness(matches, thickness)
	if len(matches) > m.maxResults {
		matches = matches[:m.maxResults]
	}
	res.Matches = matches
	return res, nil
}

func (m *Matcher) fuzzySearch(query string) ([]Match, error) {
	index, err := m.loadIndex()
	if err != nil {
		return nil, err
	}
	stripped := StripSearchTokens(query)
	if stripped == "" {
		stripped = Normalize(query)
	}
	var matches []Match
	for _, e := range index {
		score := TokenSortRatio(stripped, e.name)
		if s := TokenSortRatio(stripped, e.brandName); s > score {
			score = s
		}
		if score >= m.threshold {
			matches = append(matches, Match{Product: e.product, Score: score, MatchType: MatchFuzzy})
		}
	}
	return matches, nil
}

func (m *Matcher) loadIndex() ([]indexEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index != nil {
		return m.index, nil
	}
	products, err := m.source.GetAllActiveProducts()
	if err != nil {
		return nil, fmt.Errorf("build fuzzy index: %w", err)
	}
	index := make([]indexEntry, 0, len(products))
	for _, p := range products {
		index = append(index, indexEntry{
			product:   p,
			name:      Normalize(p.ProductName),
			brandName: Normalize(p.Brand + " " + p.ProductName),
		})
	}
	m.index = index
	return index, nil
}

// scoreProduct rates a candidate against the raw query by the best of
// name, brand and "brand name" token-sort similarity.
func scoreProduct(query string, p models.Product) float64 {
	stripped := StripSearchTokens(query)
	if stripped == "" {
		stripped = Normalize(query)
	}
	best := TokenSortRatio(stripped, p.ProductName)
	if s := TokenSortRatio(stripped, p.Brand); s > best {
		best = s
	}
	if s := TokenSortRatio(stripped, p.Brand+" "+p.ProductName); s > best {
		best = s
	}
	return best
}

// filterThickness keeps only matches within tolerance of the requested
// thickness. When none qualify, the full list is returned with the
// mismatch flag set so the caller can surface the discrepancy.
func filterThickness(matches []Match, thickness *float64) ([]Match, bool) {
	if thickness == nil || len(matches) == 0 {
		return matches, false
	}
	var matching []Match
	for _, m := range matches {
		if m.Product.ThicknessMM != nil && math.Abs(*m.Product.ThicknessMM-*thickness) <= ThicknessTolerance {
			matching = append(matching, m)
		}
	}
	if len(matching) > 0 {
		return matching, false
	}
	return matches, true
}

func dedupeBest(matches []Match) []Match {
	best := make(map[int64]Match, len(matches))
	order := make([]int64, 0, len(matches))
	for _, m := range matches {
		prev, ok := best[m.Product.ID]
		if !ok {
			order = append(order, m.Product.ID)
			best[m.Product.ID] = m
		} else if m.Score > prev.Score {
			best[m.Product.ID] = m
		}
	}
	out := make([]Match, 0, len(best))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}
