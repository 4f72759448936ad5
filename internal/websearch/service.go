package websearch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
)

const (
	crossRefFloor = 0.5
	crossRefCap   = 10
)

// Searcher is what the service needs from the web. Satisfied by
// BraveClient; tests plug in a stub.
type Searcher interface {
	Search(ctx context.Context, query string) ([]WebResult, error)
}

// CatalogSearcher is the slice of the catalog used for
// cross-referencing extracted names.
type CatalogSearcher interface {
	SearchProductsByText(term string, limit int) ([]models.Product, error)
	NetAvailable(productID int64) (float64, error)
}

// CatalogMatch is a catalog product that the web suggests as an
// equivalent for a discontinued pattern, plus the web reference the
// mention came from.
type CatalogMatch struct {
	ID           int64    `json:"id"`
	Brand        string   `json:"brand"`
	ProductName  string   `json:"product_name"`
	ProductCode  string   `json:"product_code"`
	ThicknessMM  *float64 `json:"thickness_mm"`
	MatchScore   float64  `json:"match_score"`
	SourceText   string   `json:"source_text"`
	SourceURL    string   `json:"source_url"`
	SourceTitle  string   `json:"source_title"`
	NetAvailable float64  `json:"net_available"`
	InStock      bool     `json:"in_stock"`
}

// Report is the outcome of a web cross-reference.
type Report struct {
	Query     string         `json:"query"`
	Results   []WebResult    `json:"web_references"`
	Fragments []Fragment     `json:"extracted_names"`
	Matches   []CatalogMatch `json:"local_matches"`
	Summary   string         `json:"summary"`
}

// Service runs the web cross-reference flow: search, filter to
// relevant results, extract candidate names, map them back to boards
// we can actually sell. keywords is the fragment-mining vocabulary
// (generic MDF terms plus wood patterns, colors, brands, finishes),
// normally substitution.Vocab.WebKeywords.
type Service struct {
	web      Searcher
	catalog  CatalogSearcher
	keywords []string
}

// NewService creates a Service.
func NewService(web Searcher, catalog CatalogSearcher, keywords []string) *Service {
	return &Service{web: web, catalog: catalog, keywords: keywords}
}

// CrossReference looks a pattern up on the web and maps mentions of
// equivalents back into the catalog. thickness, when non-nil, filters
// matches to the usual millimeter tolerance; candidates without a
// recorded thickness are dropped rather than waved through.
func (s *Service) CrossReference(ctx context.Context, productName, brand string, thickness *float64) (*Report, error) {
	query := strings.TrimSpace(productName + " " + brand + " MDF equivalente similar")
	results, err := s.web.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	relevant := FilterRelevant(results, productName+" "+brand)
	if len(relevant) == 0 {
		return &Report{
			Query:   query,
			Summary: fmt.Sprintf("Nenhum resultado relevante encontrado para '%s'.", productName),
		}, nil
	}
	fragments := ExtractFragments(relevant, s.keywords)

	report := &Report{
		Query:     query,
		Results:   relevant,
		Fragments: fragments,
	}

	originalNorm := search.Normalize(productName)
	best := map[int64]CatalogMatch{}
	for _, frag := range fragments {
		candidates, err := s.catalog.SearchProductsByText(frag.Text, crossRefCap)
		if err != nil {
			return nil, err
		}
		for _, p := range candidates {
			if search.Normalize(p.ProductName) == originalNorm {
				continue
			}
			if thickness != nil {
				if p.ThicknessMM == nil ||
					math.Abs(*p.ThicknessMM-*thickness) > search.ThicknessTolerance {
					continue
				}
			}
			score := search.TokenSortRatio(frag.Text, p.Brand+" "+p.ProductName)
			if s := search.TokenSortRatio(frag.Text, p.ProductName); s > score {
				score = s
			}
			if score < crossRefFloor {
				continue
			}
			if prev, ok := best[p.ID]; ok && prev.MatchScore >= score {
				continue
			}
			best[p.ID] = CatalogMatch{
				ID:          p.ID,
				Brand:       p.Brand,
				ProductName: p.ProductName,
				ProductCode: p.ProductCode,
				ThicknessMM: p.ThicknessMM,
				MatchScore:  score,
				SourceText:  frag.Text,
				SourceURL:   frag.SourceURL,
				SourceTitle: frag.SourceTitle,
			}
		}
	}

	matches := make([]CatalogMatch, 0, len(best))
	inStock := 0
	for _, m := range best {
		net, err := s.catalog.NetAvailable(m.ID)
		if err != nil {
			return nil, err
		}
		m.NetAvailable = net
		m.InStock = net > 0
		if m.InStock {
			inStock++
		}
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].InStock != matches[j].InStock {
			return matches[i].InStock
		}
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > crossRefCap {
		matches = matches[:crossRefCap]
	}
	report.Matches = matches
	report.Summary = summarize(len(relevant), len(matches), inStock)
	return report, nil
}

func summarize(references, matches, inStock int) string {
	switch {
	case inStock > 0:
		return fmt.Sprintf("Encontrei %d referencias na web. Desses, %d produto(s) similar(es) esta(ao) em nosso estoque!", references, inStock)
	case matches > 0:
		return fmt.Sprintf("Encontrei %d referencias na web. Desses, %d produto(s) existe(m) em nossa base, mas nenhum com estoque disponivel.", references, matches)
	default:
		return fmt.Sprintf("Encontrei %d referencias na web, mas nenhum dos produtos mencionados foi encontrado em nossa base. Veja as referencias abaixo para consultar manualmente.", references)
	}
}
