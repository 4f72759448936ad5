package models

import "time"

// Feedback records whether a seller accepted a suggested substitution.
type Feedback struct {
	ID                 int64  `gorm:"primaryKey" json:"id"`
	SessionID          string `gorm:"index" json:"session_id"`
	OriginalProductID  int64  `gorm:"index" json:"original_product_id"`
	SuggestedProductID int64  `gorm:"index" json:"suggested_product_id"`
	SuggestionType     string `json:"suggestion_type"`
	Accepted           bool   `json:"accepted"`
	Rating             *int   `json:"rating"`
	Comment            string `json:"comment"`

	CreatedAt time.Time `json:"created_at"`

	OriginalProduct  Product `gorm:"foreignKey:OriginalProductID" json:"-"`
	SuggestedProduct Product `gorm:"foreignKey:SuggestedProductID" json:"-"`
}

func (Feedback) TableName() string { return "substitution_feedback" }

// ImportLog is one preload/import run. Bundled data loaders write a
// sentinel row so restarts skip work already done.
type ImportLog struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	FileName     string    `gorm:"index;not null" json:"file_name"`
	FileType     string    `json:"file_type"`
	RowsImported int       `json:"rows_imported"`
	RowsSkipped  int       `json:"rows_skipped"`
	Errors       int       `json:"errors"`
	Details      string    `json:"details"`
	ImportedAt   time.Time `json:"imported_at"`
}

func (ImportLog) TableName() string { return "import_log" }

// Sentinel file names for idempotent bundled preloads.
const (
	PreloadSimilarityTable = "PRELOAD_SIMILARITY_TABLE"
	PreloadStock           = "PRELOAD_STOCK"
)
