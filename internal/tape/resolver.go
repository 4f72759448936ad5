// Package tape resolves compatible edge banding for boards, including
// the fallback chain used when a substitute board replaces the one the
// client asked for.
package tape

import (
	"fmt"
	"sort"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
)

// Name-match fallback tuning.
const (
	nameMatchFloor = 0.5
	maxOptions     = 10
)

// tapeEquivalent marks options that came from the tape equivalence
// table rather than a board's own compatibility rows.
const tapeEquivalent = "equivalent"

// TapeSource is the slice of the catalog the resolver needs.
type TapeSource interface {
	FindProductByID(id int64) (*models.Product, error)
	GetCompatibleTapes(productID int64) ([]catalog.CompatibleTape, error)
	SearchTapesByName(term string, limit int) ([]models.EdgingTape, error)
	GetTapeEquivalents(tapeID int64) ([]models.EdgingTape, error)
}

// Option is an edge banding suggestion. Rolls is derived from the
// meters on hand and the standard roll length.
type Option struct {
	ID                int64    `json:"id"`
	Brand             string   `json:"brand"`
	TapeName          string   `json:"tape_name"`
	TapeCode          string   `json:"tape_code"`
	WidthMM           *float64 `json:"width_mm"`
	Finish            string   `json:"finish"`
	AvailableMeters   float64  `json:"available_meters"`
	Rolls             float64  `json:"rolls"`
	InStock           bool     `json:"in_stock"`
	CompatibilityType string   `json:"compatibility_type"`
	MatchScore        float64  `json:"match_score,omitempty"`
}

// Resolver finds edge banding for boards.
type Resolver struct {
	source     TapeSource
	rollMeters float64
}

// NewResolver creates a Resolver. rollMeters is the length of one
// standard roll, used to convert meters on hand into whole rolls.
func NewResolver(source TapeSource, rollMeters float64) *Resolver {
	return &Resolver{source: source, rollMeters: rollMeters}
}

// Resolve returns tape options for a board: registered compatibility
// first (official before recommended before alternative), then a
// name-match fallback when nothing is registered. A nil product means
// the id is unknown.
func (r *Resolver) Resolve(productID int64) (*models.Product, []Option, error) {
	product, err := r.source.FindProductByID(productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, nil
	}

	registered, err := r.source.GetCompatibleTapes(productID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve tapes: %w", err)
	}
	if len(registered) > 0 {
		opts := make([]Option, 0, len(registered))
		for _, t := range registered {
			opts = append(opts, r.toOption(t.EdgingTape, t.CompatibilityType, 0))
		}
		return product, opts, nil
	}

	opts, err := r.nameMatch(*product)
	if err != nil {
		return nil, nil, err
	}
	return product, opts, nil
}

// ResolveForSubstitution finds tape for a substitution: the
// substitute's own tapes first, then the original board's tapes. When
// an original tape has recorded equivalents, those equivalents replace
// the whole list; the recorded mapping is considered more trustworthy
// than the remaining original tapes.
func (r *Resolver) ResolveForSubstitution(originalID, substituteID int64) ([]Option, error) {
	_, opts, err := r.Resolve(substituteID)
	if err != nil {
		return nil, err
	}
	if len(opts) > 0 {
		return opts, nil
	}

	_, opts, err = r.Resolve(originalID)
	if err != nil {
		return nil, err
	}

	for _, o := range opts {
		equivalents, err := r.source.GetTapeEquivalents(o.ID)
		if err != nil {
			return nil, err
		}
		if len(equivalents) == 0 {
			continue
		}
		out := make([]Option, 0, len(equivalents))
		for _, eq := range equivalents {
			out = append(out, r.toOption(eq, tapeEquivalent, 0))
		}
		return out, nil
	}
	return opts, nil
}

// nameMatch scores catalog tapes against the board's pattern name.
// Tries the full name first; when that finds nothing it searches each
// name term separately.
func (r *Resolver) nameMatch(product models.Product) ([]Option, error) {
	term := search.StripSearchTokens(product.ProductName)
	if term == "" {
		term = search.Normalize(product.ProductName)
	}

	tapes, err := r.source.SearchTapesByName(term, maxOptions*3)
	if err != nil {
		return nil, err
	}
	if len(tapes) == 0 {
		seen := map[int64]bool{}
		for _, word := range strings.Fields(term) {
			if len(word) <= 2 {
				continue
			}
			partial, err := r.source.SearchTapesByName(word, maxOptions)
			if err != nil {
				return nil, err
			}
			for _, t := range partial {
				if !seen[t.ID] {
					seen[t.ID] = true
					tapes = append(tapes, t)
				}
			}
		}
	}

	var opts []Option
	for _, t := range tapes {
		score := search.TokenSortRatio(product.ProductName, t.TapeName)
		// Some suppliers put the pattern name in the brand column, or
		// split it across brand and name; rate those variants too.
		if s := search.TokenSortRatio(product.ProductName, t.Brand); s > score {
			score = s
		}
		if s := search.TokenSortRatio(product.ProductName, t.Brand+" "+t.TapeName); s > score {
			score = s
		}
		// A tape named after a single term of the pattern still
		// counts; rate it by its best-matching term too.
		for _, word := range strings.Fields(term) {
			if len(word) <= 2 {
				continue
			}
			if s := search.TokenSortRatio(word, t.TapeName); s > score {
				score = s
			}
		}
		if score < nameMatchFloor {
			continue
		}
		opts = append(opts, r.toOption(t, "name_match", score))
	}

	brand := strings.ToLower(product.Brand)
	sort.SliceStable(opts, func(i, j int) bool {
		if opts[i].InStock != opts[j].InStock {
			return opts[i].InStock
		}
		sameBrandI := strings.ToLower(opts[i].Brand) == brand
		sameBrandJ := strings.ToLower(opts[j].Brand) == brand
		if sameBrandI != sameBrandJ {
			return sameBrandI
		}
		return opts[i].MatchScore > opts[j].MatchScore
	})
	if len(opts) > maxOptions {
		opts = opts[:maxOptions]
	}
	return opts, nil
}

func (r *Resolver) toOption(t models.EdgingTape, compatibility string, score float64) Option {
	rolls := 0.0
	if r.rollMeters > 0 {
		rolls = t.AvailableMeters / r.rollMeters
	}
	return Option{
		ID:                t.ID,
		Brand:             t.Brand,
		TapeName:          t.TapeName,
		TapeCode:          t.TapeCode,
		WidthMM:           t.WidthMM,
		Finish:            t.Finish,
		AvailableMeters:   t.AvailableMeters,
		Rolls:             rolls,
		InStock:           t.InStock(),
		CompatibilityType: compatibility,
		MatchScore:        score,
	}
}
