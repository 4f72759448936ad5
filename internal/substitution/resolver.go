package substitution

import (
	"fmt"
	"math"

	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
)

// EquivalenceSource is the slice of the catalog the resolver needs.
type EquivalenceSource interface {
	FindProductByID(id int64) (*models.Product, error)
	GetEquivalents(productID int64) ([]catalog.EquivalentProduct, error)
}

// Equivalent is a curated replacement with its stock position.
type Equivalent struct {
	ID           int64    `json:"id"`
	Brand        string   `json:"brand"`
	ProductName  string   `json:"product_name"`
	ProductCode  string   `json:"product_code"`
	ThicknessMM  *float64 `json:"thickness_mm"`
	Finish       string   `json:"finish"`
	Category     string   `json:"category"`
	Confidence   float64  `json:"confidence"`
	Source       string   `json:"equivalence_source"`
	NetAvailable float64  `json:"net_available"`
	InStock      bool     `json:"in_stock"`
}

// EquivalenceResolver finds curated direct equivalents that are
// actually sellable.
type EquivalenceResolver struct {
	source   EquivalenceSource
	minStock float64
}

// NewEquivalenceResolver creates a resolver. minStock is the net
// quantity below which an equivalent is not worth suggesting.
func NewEquivalenceResolver(source EquivalenceSource, minStock float64) *EquivalenceResolver {
	return &EquivalenceResolver{source: source, minStock: minStock}
}

// Resolve returns the in-stock equivalents of a product. When
// requireSameThickness is set, equivalents of a different thickness
// are dropped; products with unknown thickness on either side pass
// through. An empty result is a valid answer, not an error.
func (r *EquivalenceResolver) Resolve(productID int64, requireSameThickness bool) (*models.Product, []Equivalent, error) {
	original, err := r.source.FindProductByID(productID)
	if err != nil {
		return nil, nil, err
	}
	if original == nil {
		return nil, nil, nil
	}

	rows, err := r.source.GetEquivalents(productID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve equivalents: %w", err)
	}

	out := make([]Equivalent, 0, len(rows))
	for _, row := range rows {
		if requireSameThickness && original.ThicknessMM != nil && row.ThicknessMM != nil {
			if math.Abs(*original.ThicknessMM-*row.ThicknessMM) > search.ThicknessTolerance {
				continue
			}
		}
		if row.NetAvailable < r.minStock {
			continue
		}
		out = append(out, Equivalent{
			ID:           row.ID,
			Brand:        row.Brand,
			ProductName:  row.ProductName,
			ProductCode:  row.ProductCode,
			ThicknessMM:  row.ThicknessMM,
			Finish:       row.Finish,
			Category:     row.Category,
			Confidence:   row.Confidence,
			Source:       row.Source,
			NetAvailable: row.NetAvailable,
			InStock:      true,
		})
	}
	return original, out, nil
}
