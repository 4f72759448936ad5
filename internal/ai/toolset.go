package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
	"github.com/painelsoft/mdfcopilot/internal/substitution"
	"github.com/painelsoft/mdfcopilot/internal/tape"
	"github.com/painelsoft/mdfcopilot/internal/websearch"
)

// User-facing strings are Portuguese; the sellers are.
const (
	msgProductNotFound = "Produto nao encontrado."
	msgNoImage         = "Nenhuma imagem foi enviada pelo vendedor nesta mensagem."
	msgNoCatalogImages = "Nenhum produto com imagem cadastrada para comparar. Cadastre imagens dos produtos primeiro."

	msgWebNotConfigured = "Pesquisa web nao configurada. Defina BRAVE_API_KEY para habilitar."
	msgWebTimeout       = "A pesquisa web excedeu o tempo limite. Tente novamente."
	msgWebRateLimited   = "Limite de pesquisas web atingido. Aguarde alguns instantes."
	msgWebFailed        = "Erro ao pesquisar na web."
)

const (
	defaultImageResults = 5
	// Candidate boards compared against the seller's photo per vision
	// call. Keeps each prompt small enough for reliable JSON output.
	visualBatchSize = 5

	imageFetchTimeout = 10 * time.Second
)

// Narrow views over the services, one per tool concern. The toolset
// never reaches past these.
type (
	ProductSearcher interface {
		Search(query string) (*search.Result, error)
	}
	StockReader interface {
		FindProductByID(id int64) (*models.Product, error)
		GetStock(productID int64, location string) ([]models.Stock, error)
		GetStockOtherLocations(productID int64, primary string) ([]models.Stock, error)
	}
	EquivalenceFinder interface {
		Resolve(productID int64, requireSameThickness bool) (*models.Product, []substitution.Equivalent, error)
	}
	AlternativeRanker interface {
		Rank(ctx context.Context, productID int64, maxResults int) (*models.Product, []substitution.Alternative, error)
	}
	WebCrossReferencer interface {
		CrossReference(ctx context.Context, productName, brand string, thickness *float64) (*websearch.Report, error)
	}
	TapeFinder interface {
		Resolve(productID int64) (*models.Product, []tape.Option, error)
	}
	FeedbackSink interface {
		SaveFeedback(fb *models.Feedback) error
	}
	ClientTextWriter interface {
		ClientText(ctx context.Context, originalID, suggestedID int64, suggestionType string) (string, error)
	}
	VisionEngine interface {
		GenerateWithImages(ctx context.Context, segments []VisionSegment) (string, error)
	}
	ImageCatalog interface {
		GetProductsWithImages() ([]models.Product, error)
		NetAvailable(productID int64) (float64, error)
	}
)

// Toolset binds tool names to the services that implement them.
type Toolset struct {
	Search          ProductSearcher
	Stock           StockReader
	Equivalences    EquivalenceFinder
	Alternatives    AlternativeRanker
	Web             WebCrossReferencer
	Tapes           TapeFinder
	Feedback        FeedbackSink
	Texts           ClientTextWriter
	Vision          VisionEngine
	Images          ImageCatalog
	PrimaryLocation string
}

// Execute runs one tool call and always returns a payload: execution
// failures become error payloads the model can relay, never Go errors
// that would abort the whole turn.
func (t *Toolset) Execute(ctx context.Context, call ToolCall, img *Image) map[string]any {
	payload, err := t.dispatch(ctx, call, img)
	if err != nil {
		log.Printf("⚠️  Tool %s failed: %v", call.Name, err)
		return map[string]any{"error": fmt.Sprintf("Erro ao executar %s: %v", call.Name, err)}
	}
	return payload
}

func (t *Toolset) dispatch(ctx context.Context, call ToolCall, img *Image) (map[string]any, error) {
	switch call.Name {
	case "search_product":
		return t.searchProduct(call.Args)
	case "check_stock":
		return t.checkStock(call.Args)
	case "find_direct_equivalents":
		return t.findDirectEquivalents(call.Args)
	case "find_smart_alternatives":
		return t.findSmartAlternatives(ctx, call.Args)
	case "search_web_mdf":
		return t.searchWebMDF(ctx, call.Args)
	case "find_compatible_edging_tape":
		return t.findCompatibleTape(call.Args)
	case "register_feedback":
		return t.registerFeedback(ctx, call.Args)
	case "generate_client_text":
		return t.generateClientText(ctx, call.Args)
	case "search_by_image":
		return t.searchByImage(ctx, call.Args, img)
	default:
		return map[string]any{"error": "Ferramenta desconhecida: " + call.Name}, nil
	}
}

func (t *Toolset) searchProduct(args map[string]any) (map[string]any, error) {
	query := argString(args, "query", "")
	res, err := t.Search.Search(query)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"matches":            toJSONValue(res.Matches),
		"thickness_mismatch": res.ThicknessMismatch,
	}
	if res.ThicknessMismatch && res.QueryThickness != nil {
		out["warning"] = fmt.Sprintf("Nenhum produto com %.1fmm; mostrando as espessuras disponiveis.", *res.QueryThickness)
	}
	if len(res.Matches) == 0 {
		out["message"] = msgProductNotFound
	}
	return out, nil
}

func (t *Toolset) checkStock(args map[string]any) (map[string]any, error) {
	id := argInt64(args, "product_id")
	product, err := t.Stock.FindProductByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return map[string]any{"error": msgProductNotFound}, nil
	}

	rows, err := t.Stock.GetStock(id, t.PrimaryLocation)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"product_id":   id,
		"product_name": product.ProductName,
		"brand":        product.Brand,
		"stock":        stockRows(rows),
	}
	if argBool(args, "include_other_locations", false) {
		others, err := t.Stock.GetStockOtherLocations(id, t.PrimaryLocation)
		if err != nil {
			return nil, err
		}
		out["other_locations"] = stockRows(others)
	}
	return out, nil
}

func (t *Toolset) findDirectEquivalents(args map[string]any) (map[string]any, error) {
	id := argInt64(args, "product_id")
	original, equivalents, err := t.Equivalences.Resolve(id, argBool(args, "require_same_thickness", true))
	if err != nil {
		return nil, err
	}
	if original == nil {
		return map[string]any{"error": msgProductNotFound}, nil
	}
	out := map[string]any{
		"original_product": toJSONValue(original),
		"equivalents":      toJSONValue(equivalents),
	}
	if len(equivalents) == 0 {
		out["message"] = "Nenhum equivalente direto com estoque. Considere usar find_smart_alternatives."
	}
	return out, nil
}

func (t *Toolset) findSmartAlternatives(ctx context.Context, args map[string]any) (map[string]any, error) {
	id := argInt64(args, "product_id")
	maxResults := argInt(args, "max_results", 3)
	original, alternatives, err := t.Alternatives.Rank(ctx, id, maxResults)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return map[string]any{"error": msgProductNotFound}, nil
	}
	if len(alternatives) == 0 {
		return map[string]any{
			"error": fmt.Sprintf("Nenhum produto similar encontrado em estoque na categoria '%s'.", original.Category),
		}, nil
	}
	return map[string]any{
		"original_product": toJSONValue(original),
		"alternatives":     toJSONValue(alternatives),
	}, nil
}

func (t *Toolset) searchWebMDF(ctx context.Context, args map[string]any) (map[string]any, error) {
	name := argString(args, "product_name", "")
	brand := argString(args, "brand", "")
	thickness := search.ExtractThickness(name)

	report, err := t.Web.CrossReference(ctx, name, brand, thickness)
	switch {
	case errors.Is(err, websearch.ErrNotConfigured):
		return map[string]any{"error": msgWebNotConfigured}, nil
	case errors.Is(err, websearch.ErrTimeout):
		return map[string]any{"error": msgWebTimeout}, nil
	case errors.Is(err, websearch.ErrRateLimited):
		return map[string]any{"error": msgWebRateLimited}, nil
	case err != nil:
		log.Printf("⚠️  Web search failed: %v", err)
		return map[string]any{"error": msgWebFailed}, nil
	}
	references := make([]map[string]any, 0, len(report.Results))
	for _, r := range report.Results {
		references = append(references, map[string]any{
			"title":   r.Title,
			"snippet": r.Description,
			"url":     r.URL,
		})
	}
	return map[string]any{
		"query":          report.Query,
		"local_matches":  toJSONValue(report.Matches),
		"web_references": references,
		"summary":        report.Summary,
	}, nil
}

func (t *Toolset) findCompatibleTape(args map[string]any) (map[string]any, error) {
	id := argInt64(args, "product_id")
	product, options, err := t.Tapes.Resolve(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return map[string]any{"error": msgProductNotFound}, nil
	}
	out := map[string]any{
		"product_id":   id,
		"product_name": product.ProductName,
		"tapes":        toJSONValue(options),
	}
	if len(options) == 0 {
		out["message"] = "Nenhuma fita de borda compativel encontrada."
	}
	return out, nil
}

func (t *Toolset) registerFeedback(ctx context.Context, args map[string]any) (map[string]any, error) {
	fb := &models.Feedback{
		SessionID:          SessionIDFrom(ctx),
		OriginalProductID:  argInt64(args, "original_product_id"),
		SuggestedProductID: argInt64(args, "suggested_product_id"),
		SuggestionType:     argString(args, "suggestion_type", "direct_equivalence"),
		Accepted:           argBool(args, "accepted", false),
		Comment:            argString(args, "comment", ""),
	}
	if rating, ok := args["rating"]; ok {
		if v := toInt(rating); v >= 1 && v <= 5 {
			fb.Rating = &v
		}
	}
	if err := t.Feedback.SaveFeedback(fb); err != nil {
		return nil, err
	}
	return map[string]any{"status": "ok", "message": "Feedback registrado. Obrigado!"}, nil
}

func (t *Toolset) generateClientText(ctx context.Context, args map[string]any) (map[string]any, error) {
	text, err := t.Texts.ClientText(ctx,
		argInt64(args, "original_product_id"),
		argInt64(args, "suggested_product_id"),
		argString(args, "suggestion_type", "visual_similarity"),
	)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return map[string]any{"error": msgProductNotFound}, nil
	}
	return map[string]any{"client_text": text}, nil
}

// searchByImage compares the seller's photo against every catalog
// product that has a registered image, in batches, and returns the
// vision model's similarity ranking.
func (t *Toolset) searchByImage(ctx context.Context, args map[string]any, img *Image) (map[string]any, error) {
	if img == nil {
		return map[string]any{"error": msgNoImage}, nil
	}
	maxResults := argInt(args, "max_results", defaultImageResults)

	products, err := t.Images.GetProductsWithImages()
	if err != nil {
		return nil, err
	}
	type candidate struct {
		product models.Product
		image   *Image
	}
	var usable []candidate
	for _, p := range products {
		ci, err := loadImage(ctx, p.ImagePath)
		if err != nil {
			log.Printf("⚠️  Could not load image for product %d (%s): %v", p.ID, p.ImagePath, err)
			continue
		}
		usable = append(usable, candidate{product: p, image: ci})
	}
	if len(usable) == 0 {
		return map[string]any{"error": msgNoCatalogImages}, nil
	}

	byCode := make(map[string]models.Product, len(usable))
	for _, c := range usable {
		byCode[c.product.ProductCode] = c.product
	}

	var ranked []substitution.CodeRankedItem
	for start := 0; start < len(usable); start += visualBatchSize {
		end := start + visualBatchSize
		if end > len(usable) {
			end = len(usable)
		}
		batch := usable[start:end]

		segments := []VisionSegment{{Text: visualComparePrompt, Image: img}}
		for i, c := range batch {
			segments = append(segments, VisionSegment{
				Text:  fmt.Sprintf("Produto %d: %s %s (%s)", i+1, c.product.Brand, c.product.ProductName, c.product.ProductCode),
				Image: c.image,
			})
		}
		raw, err := t.Vision.GenerateWithImages(ctx, segments)
		if err != nil {
			log.Printf("⚠️  Visual comparison batch failed: %v", err)
			continue
		}
		items, err := substitution.NormalizeCodeRanking(raw)
		if err != nil {
			log.Printf("⚠️  Unusable visual comparison answer: %v", err)
			continue
		}
		ranked = append(ranked, items...)
	}

	var matches []substitution.Alternative
	seen := map[string]bool{}
	for _, item := range ranked {
		p, ok := byCode[item.ProductCode]
		if !ok || seen[item.ProductCode] {
			continue
		}
		seen[item.ProductCode] = true
		net, err := t.Images.NetAvailable(p.ID)
		if err != nil {
			return nil, err
		}
		matches = append(matches, substitution.Alternative{
			ID:              p.ID,
			Brand:           p.Brand,
			ProductName:     p.ProductName,
			ProductCode:     p.ProductCode,
			ThicknessMM:     p.ThicknessMM,
			Finish:          p.Finish,
			Category:        p.Category,
			SimilarityScore: item.Score,
			Justification:   item.Justification,
			NetAvailable:    net,
			InStock:         net > 0,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].SimilarityScore != matches[j].SimilarityScore {
			return matches[i].SimilarityScore > matches[j].SimilarityScore
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	out := map[string]any{"matches": toJSONValue(matches)}
	if len(matches) == 0 {
		out["message"] = "Nenhum produto visualmente semelhante identificado."
	}
	return out, nil
}

// loadImage reads a catalog image from disk, or over HTTP when the
// path is a URL.
func loadImage(ctx context.Context, path string) (*Image, error) {
	var data []byte
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		ctx, cancel := context.WithTimeout(ctx, imageFetchTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return &Image{MIMEType: imageMIME(path), Data: data}, nil
}

func imageMIME(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func stockRows(rows []models.Stock) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{
			"location":           r.Location,
			"quantity_available": r.QuantityAvailable,
			"quantity_reserved":  r.QuantityReserved,
			"net_available":      r.Net(),
			"unit":               r.Unit,
		})
	}
	return out
}

// toJSONValue converts result structs into the plain maps/slices the
// model SDK wants in a function response.
func toJSONValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func argString(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

func argBool(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func argInt64(args map[string]any, key string) int64 {
	return int64(toInt(args[key]))
}

func argInt(args map[string]any, key string, def int) int {
	if v, ok := args[key]; ok {
		if n := toInt(v); n > 0 {
			return n
		}
	}
	return def
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}
