package substitution

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

// cacheReadFloor: cached verdicts below this are ignored on read so a
// poor historical ranking does not keep burying a candidate.
const cacheReadFloor = 0.3

const fallbackJustification = "Sugestao baseada nos atributos do produto (categoria, padrao e acabamento)."

// fallbackModel marks cache rows whose score came from the attribute
// heuristic rather than a model verdict.
const fallbackModel = "atributos"

// Generator produces a completion for a prompt. Satisfied by the
// Gemini engine; tests plug in a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// RankerCatalog is the slice of the catalog the ranker needs.
type RankerCatalog interface {
	FindProductByID(id int64) (*models.Product, error)
	GetProductsInStock(minStock float64) ([]models.Product, error)
	GetCachedSimilarity(aID, bID int64) (*models.SimilarityCache, error)
	SaveSimilarityCache(aID, bID int64, score float64, justification, model string) error
	NetAvailable(productID int64) (float64, error)
}

// Alternative is a scored substitution suggestion.
type Alternative struct {
	ID              int64    `json:"id"`
	Brand           string   `json:"brand"`
	ProductName     string   `json:"product_name"`
	ProductCode     string   `json:"product_code"`
	ThicknessMM     *float64 `json:"thickness_mm"`
	Finish          string   `json:"finish"`
	Category        string   `json:"category"`
	SimilarityScore float64  `json:"similarity_score"`
	Justification   string   `json:"justification"`
	NetAvailable    float64  `json:"net_available"`
	InStock         bool     `json:"in_stock"`
}

// Ranker produces smart alternatives in two phases: an attribute
// shortlist, then an LLM similarity ranking over the candidates the
// cache does not already cover. When the model is unavailable or its
// answer unusable, attribute scores stand in.
type Ranker struct {
	store    RankerCatalog
	vocab    *Vocab
	engine   Generator
	minStock float64
}

// NewRanker creates a Ranker. engine may be nil; ranking then falls
// back to attribute scores.
func NewRanker(store RankerCatalog, vocab *Vocab, engine Generator, minStock float64) *Ranker {
	return &Ranker{store: store, vocab: vocab, engine: engine, minStock: minStock}
}

// Rank returns up to maxResults alternatives for a product, best
// first. Returns the original product alongside so callers can build
// a complete answer; a nil original means the id is unknown.
func (r *Ranker) Rank(ctx context.Context, productID int64, maxResults int) (*models.Product, []Alternative, error) {
	original, err := r.store.FindProductByID(productID)
	if err != nil {
		return nil, nil, err
	}
	if original == nil {
		return nil, nil, nil
	}

	// Only boards we can actually hand over compete for the limited
	// result slots.
	pool, err := r.store.GetProductsInStock(r.minStock)
	if err != nil {
		return nil, nil, err
	}
	shortlist := Shortlist(r.vocab, *original, pool)
	if len(shortlist) == 0 {
		return original, nil, nil
	}

	scored := make([]Alternative, 0, len(shortlist))
	var unranked []Candidate

	for _, c := range shortlist {
		cached, err := r.store.GetCachedSimilarity(original.ID, c.Product.ID)
		if err != nil {
			return nil, nil, err
		}
		if cached != nil && cached.SimilarityScore >= cacheReadFloor {
			scored = append(scored, r.toAlternative(c.Product, cached.SimilarityScore, cached.Justification))
			continue
		}
		unranked = append(unranked, c)
	}

	scored = append(scored, r.rankWithModel(ctx, *original, unranked)...)

	sortAlternatives(scored)
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	for i := range scored {
		net, err := r.store.NetAvailable(scored[i].ID)
		if err != nil {
			return nil, nil, err
		}
		scored[i].NetAvailable = net
		scored[i].InStock = net >= r.minStock
	}
	return original, scored, nil
}

// rankWithModel asks the model to rate the unranked candidates and
// persists each verdict. Any failure degrades to attribute scores for
// the whole batch; individual entries the model skipped degrade
// per-candidate. Every score is cached, attribute fallbacks included,
// so repeat lookups do not re-invoke the model.
func (r *Ranker) rankWithModel(ctx context.Context, original models.Product, unranked []Candidate) []Alternative {
	if len(unranked) == 0 {
		return nil
	}
	if r.engine == nil {
		return r.fallback(original.ID, unranked)
	}

	raw, err := r.engine.Generate(ctx, rankingPrompt(original, unranked))
	if err != nil {
		log.Printf("⚠️  Similarity ranking failed, using attribute scores: %v", err)
		return r.fallback(original.ID, unranked)
	}
	items, err := NormalizeRanking(raw)
	if err != nil {
		log.Printf("⚠️  Could not parse ranking response, using attribute scores: %v", err)
		return r.fallback(original.ID, unranked)
	}

	byIndex := make(map[int]RankedItem, len(items))
	for _, it := range items {
		byIndex[it.Index] = it
	}

	out := make([]Alternative, 0, len(unranked))
	for i, c := range unranked {
		it, ok := byIndex[i+1]
		if !ok {
			r.persist(original.ID, c.Product.ID, c.Score, fallbackJustification, fallbackModel)
			out = append(out, r.toAlternative(c.Product, c.Score, fallbackJustification))
			continue
		}
		r.persist(original.ID, c.Product.ID, it.Score, it.Justification, r.engine.ModelName())
		out = append(out, r.toAlternative(c.Product, it.Score, it.Justification))
	}
	return out
}

func (r *Ranker) fallback(originalID int64, unranked []Candidate) []Alternative {
	out := make([]Alternative, 0, len(unranked))
	for _, c := range unranked {
		r.persist(originalID, c.Product.ID, c.Score, fallbackJustification, fallbackModel)
		out = append(out, r.toAlternative(c.Product, c.Score, fallbackJustification))
	}
	return out
}

func (r *Ranker) persist(originalID, candidateID int64, score float64, justification, model string) {
	if err := r.store.SaveSimilarityCache(originalID, candidateID, score, justification, model); err != nil {
		log.Printf("⚠️  Could not cache similarity for pair (%d,%d): %v", originalID, candidateID, err)
	}
}

func (r *Ranker) toAlternative(p models.Product, score float64, justification string) Alternative {
	return Alternative{
		ID:              p.ID,
		Brand:           p.Brand,
		ProductName:     p.ProductName,
		ProductCode:     p.ProductCode,
		ThicknessMM:     p.ThicknessMM,
		Finish:          p.Finish,
		Category:        p.Category,
		SimilarityScore: score,
		Justification:   justification,
	}
}

func sortAlternatives(alts []Alternative) {
	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].SimilarityScore > alts[j].SimilarityScore
	})
}

// rankingPrompt asks for a strict JSON verdict on each candidate. The
// catalog and the sellers work in Portuguese, so the prompt does too.
func rankingPrompt(original models.Product, candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("Voce e um especialista em padroes de MDF para marcenaria.\n")
	fmt.Fprintf(&b, "Produto original: %s %s", original.Brand, original.ProductName)
	if original.ThicknessMM != nil {
		fmt.Fprintf(&b, " %.0fmm", *original.ThicknessMM)
	}
	if original.Finish != "" {
		fmt.Fprintf(&b, " acabamento %s", original.Finish)
	}
	b.WriteString("\n\nAvalie a similaridade VISUAL de cada candidato com o produto original:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s %s", i+1, c.Product.Brand, c.Product.ProductName)
		if c.Product.ThicknessMM != nil {
			fmt.Fprintf(&b, " %.0fmm", *c.Product.ThicknessMM)
		}
		if c.Product.Finish != "" {
			fmt.Fprintf(&b, " acabamento %s", c.Product.Finish)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nResponda SOMENTE com um array JSON, um objeto por candidato, no formato:\n")
	b.WriteString(`[{"index": 1, "similarity_score": 0.85, "justification": "..."}]` + "\n")
	b.WriteString("similarity_score entre 0.0 e 1.0. justification curta, em portugues, citando padrao, tom e acabamento.\n")
	return b.String()
}
