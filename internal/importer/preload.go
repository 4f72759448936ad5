package importer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/substitution"
)

// Invalidator is anything holding an index that goes stale after an
// import. In practice, the search matcher.
type Invalidator interface {
	Invalidate()
}

// Preload loads the bundled data directory on startup. Each kind of
// file runs at most once per database (guarded by import_log
// sentinels), so restarts are cheap. A missing directory is fine: the
// catalog can be built entirely through the API.
func Preload(store Catalog, vocab *substitution.Vocab, index Invalidator, bundledDir string, opts StockOptions) error {
	if bundledDir == "" {
		return nil
	}
	entries, err := os.ReadDir(bundledDir)
	if os.IsNotExist(err) {
		log.Printf("📦 No bundled data directory at %s, skipping preload", bundledDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read bundled dir: %w", err)
	}

	var similarityFiles, stockFiles []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".xlsx") {
			continue
		}
		path := filepath.Join(bundledDir, e.Name())
		if strings.Contains(strings.ToLower(e.Name()), "similaridade") {
			similarityFiles = append(similarityFiles, path)
		} else {
			stockFiles = append(stockFiles, path)
		}
	}

	imported := false

	done, err := store.HasImport(models.PreloadSimilarityTable)
	if err != nil {
		return err
	}
	if !done {
		for _, path := range similarityFiles {
			log.Printf("📦 Loading similarity table %s...", path)
			if _, err := ImportSimilarityTable(store, vocab, path); err != nil {
				return err
			}
			imported = true
		}
	}

	done, err = store.HasImport(models.PreloadStock)
	if err != nil {
		return err
	}
	if !done {
		for _, path := range stockFiles {
			log.Printf("📦 Loading stock file %s...", path)
			if _, err := ImportStockFile(store, vocab, path, opts); err != nil {
				return err
			}
			imported = true
		}
	}

	if imported && index != nil {
		index.Invalidate()
	}
	return nil
}
