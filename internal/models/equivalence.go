package models

import "time"

// DirectEquivalence is a curated cross-brand pairing of two boards.
// Pairs are stored once, in canonical order (ProductAID < ProductBID);
// lookups join both directions.
type DirectEquivalence struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	ProductAID int64   `gorm:"index;index:idx_equiv_pair,unique" json:"product_a_id"`
	ProductBID int64   `gorm:"index:idx_equiv_pair,unique" json:"product_b_id"`
	Confidence float64 `gorm:"default:1.0" json:"confidence"`
	Source     string  `json:"source"`
	Notes      string  `json:"notes"`

	CreatedAt time.Time `json:"created_at"`

	ProductA Product `gorm:"foreignKey:ProductAID;constraint:OnDelete:CASCADE" json:"-"`
	ProductB Product `gorm:"foreignKey:ProductBID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DirectEquivalence) TableName() string { return "direct_equivalences" }

// SimilarityCache stores an LLM-ranked visual similarity verdict for a
// pair of boards. Symmetric: stored once in canonical order, read both
// ways.
type SimilarityCache struct {
	ID              int64   `gorm:"primaryKey" json:"id"`
	ProductAID      int64   `gorm:"index;index:idx_simcache_pair,unique" json:"product_a_id"`
	ProductBID      int64   `gorm:"index:idx_simcache_pair,unique" json:"product_b_id"`
	SimilarityScore float64 `gorm:"not null" json:"similarity_score"`
	Justification   string  `json:"justification"`
	Model           string  `json:"model"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SimilarityCache) TableName() string { return "similarity_cache" }

// CanonicalPair orders two product ids so a pair is always stored the
// same way regardless of argument order.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
