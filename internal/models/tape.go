package models

import "time"

// Compatibility tiers, in preference order.
const (
	TapeOfficial    = "official"
	TapeRecommended = "recommended"
	TapeAlternative = "alternative"
)

// EdgingTape is a roll of edge banding. AvailableMeters drives the
// in-stock flag; rolls are derived at resolution time.
type EdgingTape struct {
	ID              int64    `gorm:"primaryKey" json:"id"`
	Brand           string   `gorm:"index" json:"brand"`
	TapeName        string   `gorm:"index;not null" json:"tape_name"`
	TapeCode        string   `gorm:"uniqueIndex;not null" json:"tape_code"`
	WidthMM         *float64 `json:"width_mm"`
	ThicknessMM     *float64 `json:"thickness_mm"`
	Finish          string   `json:"finish"`
	ColorFamily     string   `json:"color_family"`
	AvailableMeters float64  `gorm:"default:0" json:"available_meters"`
	IsActive        bool     `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EdgingTape) TableName() string { return "edging_tapes" }

// InStock reports whether any meters remain on the roll.
func (t EdgingTape) InStock() bool { return t.AvailableMeters > 0 }

// TapeCompatibility links a board to a tape at a given tier.
type TapeCompatibility struct {
	ID                int64  `gorm:"primaryKey" json:"id"`
	ProductID         int64  `gorm:"index;index:idx_tape_compat_pair,unique" json:"product_id"`
	TapeID            int64  `gorm:"index:idx_tape_compat_pair,unique" json:"tape_id"`
	CompatibilityType string `gorm:"default:alternative" json:"compatibility_type"`
	Notes             string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`

	Product Product    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Tape    EdgingTape `gorm:"foreignKey:TapeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TapeCompatibility) TableName() string { return "tape_product_compatibility" }

// TapeEquivalence records that two tapes can stand in for each other.
// The pair is stored in canonical order (lower id first).
type TapeEquivalence struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	TapeAID    int64   `gorm:"index;index:idx_tape_equiv_pair,unique" json:"tape_a_id"`
	TapeBID    int64   `gorm:"index:idx_tape_equiv_pair,unique" json:"tape_b_id"`
	Confidence float64 `gorm:"default:1.0" json:"confidence"`
	Source     string  `json:"source"`

	CreatedAt time.Time `json:"created_at"`
}

func (TapeEquivalence) TableName() string { return "tape_equivalences" }
