package importer

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/search"
	"github.com/painelsoft/mdfcopilot/internal/substitution"
)

// StockOptions tune a stock file import.
type StockOptions struct {
	// DefaultLocation is used when the file has no location column.
	DefaultLocation string
	// SkipLocations drops rows from locations we do not sell from
	// (e.g. damaged-goods depots).
	SkipLocations []string
}

// matchCandidate is one existing product in the matching cache.
type matchCandidate struct {
	product models.Product
	name    string
	words   map[string]bool
}

// ImportStockFile loads a warehouse export. Board rows upsert stock
// (matching existing catalog products by name where possible, creating
// them otherwise); edge banding rows upsert tapes. Rows that cannot be
// parsed are counted, not fatal.
func ImportStockFile(store Catalog, vocab *substitution.Vocab, path string, opts StockOptions) (*models.ImportLog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open stock file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read stock file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("stock file %s is empty", path)
	}

	cols := detectColumns(rows[0])
	if cols.name < 0 || cols.quantity < 0 {
		return nil, fmt.Errorf("stock file %s: could not find name/quantity columns", path)
	}

	cache, brands, err := buildMatchCache(store)
	if err != nil {
		return nil, err
	}

	skip := map[string]bool{}
	for _, loc := range opts.SkipLocations {
		skip[search.Normalize(loc)] = true
	}

	entry := &models.ImportLog{FileName: models.PreloadStock, FileType: "stock"}
	section := "chapa"
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, cols.name)
		if name == "" {
			continue
		}
		if s, ok := sectionHeader(name); ok {
			section = s
			continue
		}

		location := opts.DefaultLocation
		if cols.location >= 0 {
			if l := cell(row, cols.location); l != "" {
				location = l
			}
		}
		if skip[search.Normalize(location)] {
			entry.RowsSkipped++
			continue
		}

		qty, err := parseQuantity(cell(row, cols.quantity))
		if err != nil {
			entry.Errors++
			continue
		}

		rowSection := section
		if n := search.Normalize(name); strings.HasPrefix(n, "fita ") || strings.HasPrefix(n, "acabamento ") {
			rowSection = "fita"
		}

		switch rowSection {
		case "fita", "acabamento":
			if err := upsertTapeRow(store, name, qty); err != nil {
				log.Printf("⚠️  Stock row %d (tape): %v", i+1, err)
				entry.Errors++
				continue
			}
		default:
			if err := upsertBoardRow(store, vocab, cache, brands, name, qty, location); err != nil {
				log.Printf("⚠️  Stock row %d: %v", i+1, err)
				entry.Errors++
				continue
			}
		}
		entry.RowsImported++
	}

	if err := store.LogImport(entry); err != nil {
		return nil, err
	}
	log.Printf("✅ Stock file %s loaded: %d rows, %d skipped, %d errors",
		path, entry.RowsImported, entry.RowsSkipped, entry.Errors)
	return entry, nil
}

type columns struct {
	name, quantity, location int
}

func detectColumns(header []string) columns {
	cols := columns{name: -1, quantity: -1, location: -1}
	for i, h := range header {
		switch n := search.Normalize(h); {
		case cols.name < 0 && (n == "produto" || n == "descricao" || n == "item" || n == "nome"):
			cols.name = i
		case cols.quantity < 0 && (n == "quantidade" || n == "estoque" || n == "qtd" || n == "saldo"):
			cols.quantity = i
		case cols.location < 0 && (n == "empresa" || n == "localizacao" || n == "loja" || n == "filial"):
			cols.location = i
		}
	}
	return cols
}

// sectionHeader recognizes rows that only name the section the
// following rows belong to.
func sectionHeader(name string) (string, bool) {
	n := search.Normalize(name)
	switch {
	case strings.HasPrefix(n, "chapa"):
		return "chapa", true
	case strings.HasPrefix(n, "fita"):
		return "fita", true
	case strings.HasPrefix(n, "acabamento"):
		return "acabamento", true
	}
	return "", false
}

func parseQuantity(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ".", ""))
	raw = strings.ReplaceAll(raw, ",", ".")
	if raw == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	return strconv.ParseFloat(raw, 64)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func buildMatchCache(store Catalog) ([]matchCandidate, []string, error) {
	products, err := store.GetAllActiveProducts()
	if err != nil {
		return nil, nil, err
	}
	cache := make([]matchCandidate, 0, len(products))
	brandSet := map[string]bool{}
	for _, p := range products {
		name := search.Normalize(p.ProductName)
		words := map[string]bool{}
		for _, w := range strings.Fields(name) {
			words[w] = true
		}
		cache = append(cache, matchCandidate{product: p, name: name, words: words})
		if p.Brand != "" {
			brandSet[p.Brand] = true
		}
	}
	brands := make([]string, 0, len(brandSet))
	for b := range brandSet {
		brands = append(brands, b)
	}
	return cache, brands, nil
}

// matchProduct finds an existing catalog product for a parsed stock
// row: exact short-name match first, then substring containment, then
// at least two shared name words. A known thickness conflict beyond
// the usual tolerance vetoes a match.
func matchProduct(cache []matchCandidate, parsed ParsedName) *models.Product {
	name := search.Normalize(parsed.ShortName)
	if name == "" {
		return nil
	}

	thicknessOK := func(c matchCandidate) bool {
		if parsed.ThicknessMM == nil || c.product.ThicknessMM == nil {
			return true
		}
		return math.Abs(*parsed.ThicknessMM-*c.product.ThicknessMM) <= search.ThicknessTolerance
	}

	for _, c := range cache {
		if c.name == name && thicknessOK(c) {
			p := c.product
			return &p
		}
	}
	for _, c := range cache {
		if (strings.Contains(c.name, name) || strings.Contains(name, c.name)) && thicknessOK(c) {
			p := c.product
			return &p
		}
	}
	words := strings.Fields(name)
	var best *models.Product
	bestShared := 1
	for _, c := range cache {
		if !thicknessOK(c) {
			continue
		}
		shared := 0
		for _, w := range words {
			if c.words[w] {
				shared++
			}
		}
		if shared > bestShared {
			bestShared = shared
			p := c.product
			best = &p
		}
	}
	return best
}

func upsertBoardRow(store Catalog, vocab *substitution.Vocab, cache []matchCandidate, brands []string, rawName string, qty float64, location string) error {
	parsed := ParseStockName(rawName, brands)
	product := matchProduct(cache, parsed)
	if product == nil {
		brand := detectBrand(rawName, brands)
		p := &models.Product{
			Brand:       brand,
			ProductName: parsed.ShortName,
			ProductCode: ProductCode(brand, parsed.ShortName),
			ThicknessMM: parsed.ThicknessMM,
			Finish:      parsed.Finish,
			Category:    InferCategory(vocab, parsed.ShortName),
			ColorFamily: vocab.ColorFamily(parsed.ShortName),
			IsActive:    true,
		}
		if existing, err := store.FindProductByCode(p.ProductCode); err != nil {
			return err
		} else if existing != nil {
			product = existing
		} else {
			if err := store.CreateProduct(p); err != nil {
				return err
			}
			product = p
		}
	} else {
		// Spreadsheet-born products have no thickness or finish until
		// a stock row supplies them.
		changed := false
		if product.ThicknessMM == nil && parsed.ThicknessMM != nil {
			product.ThicknessMM = parsed.ThicknessMM
			changed = true
		}
		if product.Finish == "" && parsed.Finish != "" {
			product.Finish = parsed.Finish
			changed = true
		}
		if changed {
			if err := store.UpdateProduct(product); err != nil {
				return err
			}
		}
	}

	return store.UpsertStock(&models.Stock{
		ProductID:         product.ID,
		Location:          location,
		QuantityAvailable: qty,
	})
}

func upsertTapeRow(store Catalog, rawName string, meters float64) error {
	parsed := ParseStockName(rawName, nil)
	name := parsed.ShortName
	if name == "" {
		name = rawName
	}
	return store.UpsertTape(&models.EdgingTape{
		Brand:           "",
		TapeName:        name,
		TapeCode:        ProductCode("FITA", name),
		ThicknessMM:     parsed.ThicknessMM,
		Finish:          parsed.Finish,
		AvailableMeters: meters,
		IsActive:        true,
	})
}

func detectBrand(rawName string, brands []string) string {
	n := " " + search.Normalize(rawName) + " "
	for _, b := range brands {
		if strings.Contains(n, " "+search.Normalize(b)+" ") {
			return b
		}
	}
	return ""
}
