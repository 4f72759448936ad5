package models

import (
	"time"
)

// Product categories used by the attribute ranker. "outro" is the
// catch-all and only earns partial credit during scoring.
const (
	CategoryMadeirado = "madeirado"
	CategoryUnicolor  = "unicolor"
	CategoryFantasia  = "fantasia"
	CategoryOutro     = "outro"
)

// Product is an MDF board in the catalog. Identity is the product code;
// boards are soft-deleted via IsActive.
type Product struct {
	ID          int64    `gorm:"primaryKey" json:"id"`
	Brand       string   `gorm:"index;not null" json:"brand"`
	ProductName string   `gorm:"index;not null" json:"product_name"`
	ProductCode string   `gorm:"uniqueIndex;not null" json:"product_code"`
	ThicknessMM *float64 `json:"thickness_mm"`
	Finish      string   `json:"finish"`
	WidthMM     *float64 `json:"width_mm"`
	HeightMM    *float64 `json:"height_mm"`
	ColorFamily string   `json:"color_family"`
	Category    string   `gorm:"index" json:"category"`
	ImagePath   string   `json:"image_path"`
	IsActive    bool     `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Stock is the per-location availability of a product. One row per
// (product, location); upserts are keyed on that pair.
type Stock struct {
	ID                int64   `gorm:"primaryKey" json:"id"`
	ProductID         int64   `gorm:"index;index:idx_stock_product_location,unique" json:"product_id"`
	Location          string  `gorm:"default:principal;index:idx_stock_product_location,unique" json:"location"`
	QuantityAvailable float64 `gorm:"not null;default:0" json:"quantity_available"`
	QuantityReserved  float64 `gorm:"not null;default:0" json:"quantity_reserved"`
	MinimumStock      float64 `gorm:"default:0" json:"minimum_stock"`
	Unit              string  `gorm:"default:chapa" json:"unit"`
	LastUpdated       time.Time `json:"last_updated"`

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Stock) TableName() string { return "stock" }

// Net returns the effective sellable quantity.
func (s Stock) Net() float64 {
	return s.QuantityAvailable - s.QuantityReserved
}
