package erp

import (
	"context"
	"log"
	"time"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

// StockWriter is the slice of the catalog the sync needs.
type StockWriter interface {
	FindProductByCode(code string) (*models.Product, error)
	UpsertStock(row *models.Stock) error
}

// erpProduct is what we read per board from the ERP.
type erpProduct struct {
	DefaultCode  string  `xmlrpc:"default_code"`
	QtyAvailable float64 `xmlrpc:"qty_available"`
}

// Fetcher is satisfied by Client; tests plug in a stub.
type Fetcher interface {
	SearchRead(model string, domain []any, fields []string, out any) error
}

// Syncer periodically mirrors ERP stock into the catalog's primary
// location. Boards are matched by product code (the ERP's
// default_code); unknown codes are skipped, not created.
type Syncer struct {
	erp      Fetcher
	store    StockWriter
	location string
	interval time.Duration
}

// NewSyncer creates a Syncer.
func NewSyncer(erp Fetcher, store StockWriter, location string, interval time.Duration) *Syncer {
	return &Syncer{erp: erp, store: store, location: location, interval: interval}
}

// SyncOnce pulls current quantities and upserts matching products.
// Returns how many rows were updated.
func (s *Syncer) SyncOnce() (int, error) {
	var rows []erpProduct
	domain := []any{[]any{"default_code", "!=", false}}
	if err := s.erp.SearchRead("product.product", domain, []string{"default_code", "qty_available"}, &rows); err != nil {
		return 0, err
	}

	updated := 0
	for _, row := range rows {
		if row.DefaultCode == "" {
			continue
		}
		product, err := s.store.FindProductByCode(row.DefaultCode)
		if err != nil {
			return updated, err
		}
		if product == nil {
			continue
		}
		err = s.store.UpsertStock(&models.Stock{
			ProductID:         product.ID,
			Location:          s.location,
			QuantityAvailable: row.QtyAvailable,
		})
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// Run syncs on the configured interval until the context is done.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.SyncOnce(); err != nil {
			log.Printf("⚠️  ERP stock sync failed: %v", err)
		} else {
			log.Printf("🔄 ERP stock sync: %d products updated", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
