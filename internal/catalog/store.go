// Package catalog is the persistence layer for boards, tapes, stock,
// equivalences, similarity cache and feedback. All access goes through
// an explicit Store handle; there is no package-level state.
package catalog

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/painelsoft/mdfcopilot/internal/database"
	"github.com/painelsoft/mdfcopilot/internal/models"
)

// Store provides catalog queries over the shared database handle.
type Store struct {
	db *database.DB
}

// NewStore creates a Store bound to the given database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates all catalog tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.Product{},
		&models.Stock{},
		&models.EdgingTape{},
		&models.TapeCompatibility{},
		&models.TapeEquivalence{},
		&models.DirectEquivalence{},
		&models.SimilarityCache{},
		&models.Feedback{},
		&models.ImportLog{},
		&models.ChatSession{},
	)
}

// --- Products ---

// FindProductByCode looks up an active product by its exact code
// (case-insensitive). Returns nil when not found.
func (s *Store) FindProductByCode(code string) (*models.Product, error) {
	var p models.Product
	err := s.db.Where("UPPER(product_code) = UPPER(?) AND is_active = true", code).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by code: %w", err)
	}
	return &p, nil
}

// FindProductByID returns the active product with the given id, or nil.
func (s *Store) FindProductByID(id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.Where("id = ? AND is_active = true", id).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return &p, nil
}

// SearchProductsByText finds active products whose name, brand or code
// contains the term (case-insensitive), up to limit rows.
func (s *Store) SearchProductsByText(term string, limit int) ([]models.Product, error) {
	var products []models.Product
	like := "%" + term + "%"
	err := s.db.
		Where("is_active = true").
		Where("product_name ILIKE ? OR brand ILIKE ? OR product_code ILIKE ?", like, like, like).
		Order("product_name").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// GetAllActiveProducts returns every active product. Used by the fuzzy
// matcher to build its in-memory index.
func (s *Store) GetAllActiveProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = true").Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load active products: %w", err)
	}
	return products, nil
}

// GetProductsInStock returns active products whose net stock across
// all locations is at least minStock.
func (s *Store) GetProductsInStock(minStock float64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Where("is_active = true").
		Where("id IN (?)", s.db.Model(&models.Stock{}).
			Select("product_id").
			Group("product_id").
			Having("COALESCE(SUM(quantity_available - quantity_reserved), 0) >= ?", minStock)).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("products in stock: %w", err)
	}
	return products, nil
}

// GetProductsWithImages returns active products that have a catalog
// image registered, for visual comparison.
func (s *Store) GetProductsWithImages() ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Where("is_active = true AND image_path <> ''").
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("products with images: %w", err)
	}
	return products, nil
}

// CreateProduct inserts a product.
func (s *Store) CreateProduct(p *models.Product) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// UpdateProduct persists changes to an existing product.
func (s *Store) UpdateProduct(p *models.Product) error {
	if err := s.db.Save(p).Error; err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// --- Stock ---

// GetStock returns the stock rows for a product. When location is
// non-empty only that location is returned.
func (s *Store) GetStock(productID int64, location string) ([]models.Stock, error) {
	var rows []models.Stock
	q := s.db.Where("product_id = ?", productID)
	if location != "" {
		q = q.Where("location = ?", location)
	}
	if err := q.Order("location").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return rows, nil
}

// GetStockOtherLocations returns stock rows for a product outside the
// given location.
func (s *Store) GetStockOtherLocations(productID int64, primary string) ([]models.Stock, error) {
	var rows []models.Stock
	err := s.db.
		Where("product_id = ? AND location <> ?", productID, primary).
		Order("location").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get stock other locations: %w", err)
	}
	return rows, nil
}

// UpsertStock inserts or updates the stock row for (product, location).
func (s *Store) UpsertStock(row *models.Stock) error {
	row.LastUpdated = time.Now().UTC()
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "location"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quantity_available", "quantity_reserved", "unit", "last_updated",
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// NetAvailable sums net stock (available minus reserved) across all
// locations for a product.
func (s *Store) NetAvailable(productID int64) (float64, error) {
	var net float64
	err := s.db.Model(&models.Stock{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity_available - quantity_reserved), 0)").
		Scan(&net).Error
	if err != nil {
		return 0, fmt.Errorf("net available: %w", err)
	}
	return net, nil
}

// --- Direct equivalences ---

// EquivalentProduct is a product joined with its equivalence metadata
// and net stock, as returned by GetEquivalents.
type EquivalentProduct struct {
	models.Product
	Confidence   float64 `json:"confidence"`
	Source       string  `json:"equivalence_source"`
	NetAvailable float64 `json:"net_available"`
}

// GetEquivalents returns the curated equivalents of a product with
// their net stock, looking up the pair in both directions.
func (s *Store) GetEquivalents(productID int64) ([]EquivalentProduct, error) {
	var results []EquivalentProduct
	err := s.db.Raw(`
		SELECT p.*, e.confidence, e.source,
		       COALESCE(SUM(st.quantity_available - st.quantity_reserved), 0) AS net_available
		FROM direct_equivalences e
		JOIN products p
		  ON p.id = CASE WHEN e.product_a_id = ? THEN e.product_b_id ELSE e.product_a_id END
		LEFT JOIN stock st ON st.product_id = p.id
		WHERE (e.product_a_id = ? OR e.product_b_id = ?)
		  AND p.is_active = true
		GROUP BY p.id, e.confidence, e.source
		ORDER BY net_available DESC, e.confidence DESC
	`, productID, productID, productID).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("get equivalents: %w", err)
	}
	return results, nil
}

// AddEquivalence records a curated pair, ignoring duplicates. The pair
// is canonicalized so (a,b) and (b,a) map to the same row.
func (s *Store) AddEquivalence(aID, bID int64, confidence float64, source string) error {
	lo, hi := models.CanonicalPair(aID, bID)
	eq := models.DirectEquivalence{
		ProductAID: lo,
		ProductBID: hi,
		Confidence: confidence,
		Source:     source,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_a_id"}, {Name: "product_b_id"}},
		DoNothing: true,
	}).Create(&eq).Error
	if err != nil {
		return fmt.Errorf("add equivalence: %w", err)
	}
	return nil
}

// --- Edging tapes ---

// CompatibleTape is a tape joined with its compatibility tier.
type CompatibleTape struct {
	models.EdgingTape
	CompatibilityType string `json:"compatibility_type"`
}

// GetCompatibleTapes returns the tapes registered for a board, ordered
// official > recommended > alternative, in-stock first within a tier.
func (s *Store) GetCompatibleTapes(productID int64) ([]CompatibleTape, error) {
	var tapes []CompatibleTape
	err := s.db.Raw(`
		SELECT t.*, c.compatibility_type
		FROM tape_product_compatibility c
		JOIN edging_tapes t ON t.id = c.tape_id
		WHERE c.product_id = ? AND t.is_active = true
		ORDER BY CASE c.compatibility_type
		           WHEN 'official' THEN 0
		           WHEN 'recommended' THEN 1
		           ELSE 2
		         END,
		         (t.available_meters > 0) DESC,
		         t.tape_name
	`, productID).Scan(&tapes).Error
	if err != nil {
		return nil, fmt.Errorf("get compatible tapes: %w", err)
	}
	return tapes, nil
}

// SearchTapesByName returns active tapes whose name or brand contains
// the term.
func (s *Store) SearchTapesByName(term string, limit int) ([]models.EdgingTape, error) {
	var tapes []models.EdgingTape
	like := "%" + term + "%"
	err := s.db.
		Where("is_active = true").
		Where("tape_name ILIKE ? OR brand ILIKE ?", like, like).
		Limit(limit).
		Find(&tapes).Error
	if err != nil {
		return nil, fmt.Errorf("search tapes: %w", err)
	}
	return tapes, nil
}

// GetTapeEquivalents returns tapes equivalent to the given tape,
// in-stock first.
func (s *Store) GetTapeEquivalents(tapeID int64) ([]models.EdgingTape, error) {
	var tapes []models.EdgingTape
	err := s.db.Raw(`
		SELECT t.*
		FROM tape_equivalences e
		JOIN edging_tapes t
		  ON t.id = CASE WHEN e.tape_a_id = ? THEN e.tape_b_id ELSE e.tape_a_id END
		WHERE (e.tape_a_id = ? OR e.tape_b_id = ?)
		  AND t.is_active = true
		ORDER BY (t.available_meters > 0) DESC, e.confidence DESC
	`, tapeID, tapeID, tapeID).Scan(&tapes).Error
	if err != nil {
		return nil, fmt.Errorf("get tape equivalents: %w", err)
	}
	return tapes, nil
}

// AddTapeCompatibility links a tape to a board, ignoring duplicates.
func (s *Store) AddTapeCompatibility(productID, tapeID int64, tier string) error {
	c := models.TapeCompatibility{
		ProductID:         productID,
		TapeID:            tapeID,
		CompatibilityType: tier,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "tape_id"}},
		DoNothing: true,
	}).Create(&c).Error
	if err != nil {
		return fmt.Errorf("add tape compatibility: %w", err)
	}
	return nil
}

// AddTapeEquivalence records a tape pair, canonicalized.
func (s *Store) AddTapeEquivalence(aID, bID int64, confidence float64, source string) error {
	lo, hi := models.CanonicalPair(aID, bID)
	eq := models.TapeEquivalence{TapeAID: lo, TapeBID: hi, Confidence: confidence, Source: source}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tape_a_id"}, {Name: "tape_b_id"}},
		DoNothing: true,
	}).Create(&eq).Error
	if err != nil {
		return fmt.Errorf("add tape equivalence: %w", err)
	}
	return nil
}

// CreateTape inserts a tape.
func (s *Store) CreateTape(t *models.EdgingTape) error {
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("create tape: %w", err)
	}
	return nil
}

// UpsertTape inserts a tape or refreshes the meters on an existing one.
func (s *Store) UpsertTape(t *models.EdgingTape) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tape_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"available_meters", "finish", "thickness_mm", "updated_at",
		}),
	}).Create(t).Error
	if err != nil {
		return fmt.Errorf("upsert tape: %w", err)
	}
	return nil
}

// --- Similarity cache ---

// GetCachedSimilarity returns the cached verdict for a pair, or nil.
func (s *Store) GetCachedSimilarity(aID, bID int64) (*models.SimilarityCache, error) {
	lo, hi := models.CanonicalPair(aID, bID)
	var entry models.SimilarityCache
	err := s.db.Where("product_a_id = ? AND product_b_id = ?", lo, hi).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached similarity: %w", err)
	}
	return &entry, nil
}

// CachedCandidate pairs a cached verdict with the counterpart product.
type CachedCandidate struct {
	models.Product
	SimilarityScore float64 `json:"similarity_score"`
	Justification   string  `json:"justification"`
}

// GetCachedSimilaritiesForProduct returns cached counterparts of a
// product scoring at least minScore, best first.
func (s *Store) GetCachedSimilaritiesForProduct(productID int64, minScore float64) ([]CachedCandidate, error) {
	var results []CachedCandidate
	err := s.db.Raw(`
		SELECT p.*, c.similarity_score, c.justification
		FROM similarity_cache c
		JOIN products p
		  ON p.id = CASE WHEN c.product_a_id = ? THEN c.product_b_id ELSE c.product_a_id END
		WHERE (c.product_a_id = ? OR c.product_b_id = ?)
		  AND c.similarity_score >= ?
		  AND p.is_active = true
		ORDER BY c.similarity_score DESC
	`, productID, productID, productID, minScore).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("cached similarities for product: %w", err)
	}
	return results, nil
}

// SaveSimilarityCache upserts a verdict for a pair.
func (s *Store) SaveSimilarityCache(aID, bID int64, score float64, justification, model string) error {
	lo, hi := models.CanonicalPair(aID, bID)
	entry := models.SimilarityCache{
		ProductAID:      lo,
		ProductBID:      hi,
		SimilarityScore: score,
		Justification:   justification,
		Model:           model,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_a_id"}, {Name: "product_b_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"similarity_score", "justification", "model", "updated_at",
		}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save similarity cache: %w", err)
	}
	return nil
}

// --- Feedback ---

// SaveFeedback stores a seller's verdict on a suggestion.
func (s *Store) SaveFeedback(fb *models.Feedback) error {
	if err := s.db.Create(fb).Error; err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// FeedbackStats summarizes recorded feedback.
type FeedbackStats struct {
	Total         int64    `json:"total"`
	Accepted      int64    `json:"accepted"`
	Rejected      int64    `json:"rejected"`
	AcceptancePct float64  `json:"acceptance_pct"`
	AvgRating     *float64 `json:"avg_rating"`
}

// GetFeedbackStats aggregates acceptance counts and average rating.
func (s *Store) GetFeedbackStats() (*FeedbackStats, error) {
	var stats FeedbackStats
	err := s.db.Model(&models.Feedback{}).
		Select(`COUNT(*) AS total,
		        COUNT(*) FILTER (WHERE accepted) AS accepted,
		        COUNT(*) FILTER (WHERE NOT accepted) AS rejected,
		        AVG(rating) AS avg_rating`).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("feedback stats: %w", err)
	}
	if stats.Total > 0 {
		stats.AcceptancePct = float64(stats.Accepted) / float64(stats.Total) * 100
	}
	return &stats, nil
}

// --- Import log ---

// HasImport reports whether a sentinel/import row exists for fileName.
func (s *Store) HasImport(fileName string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ImportLog{}).Where("file_name = ?", fileName).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check import log: %w", err)
	}
	return count > 0, nil
}

// LogImport records a completed import run.
func (s *Store) LogImport(entry *models.ImportLog) error {
	entry.ImportedAt = time.Now().UTC()
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("log import: %w", err)
	}
	return nil
}

// --- Chat sessions ---

// GetOrCreateSession loads a session by its external id, creating an
// empty one when missing.
func (s *Store) GetOrCreateSession(sessionID string) (*models.ChatSession, error) {
	var sess models.ChatSession
	err := s.db.Where("session_id = ?", sessionID).First(&sess).Error
	if err == gorm.ErrRecordNotFound {
		sess = models.ChatSession{SessionID: sessionID}
		if err := s.db.Create(&sess).Error; err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return &sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &sess, nil
}

// SaveSession persists an updated session transcript.
func (s *Store) SaveSession(sess *models.ChatSession) error {
	if err := s.db.Save(sess).Error; err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
