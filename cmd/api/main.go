package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/painelsoft/mdfcopilot/internal/ai"
	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/config"
	"github.com/painelsoft/mdfcopilot/internal/database"
	"github.com/painelsoft/mdfcopilot/internal/erp"
	"github.com/painelsoft/mdfcopilot/internal/handlers"
	"github.com/painelsoft/mdfcopilot/internal/importer"
	"github.com/painelsoft/mdfcopilot/internal/proposal"
	"github.com/painelsoft/mdfcopilot/internal/search"
	"github.com/painelsoft/mdfcopilot/internal/substitution"
	"github.com/painelsoft/mdfcopilot/internal/tape"
	"github.com/painelsoft/mdfcopilot/internal/websearch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🛑 Config error: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("🛑 Database error: %v", err)
	}
	defer db.Close()

	store := catalog.NewStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("🛑 Migration error: %v", err)
	}

	vocab, err := substitution.LoadVocab(cfg.VocabFile)
	if err != nil {
		log.Fatalf("🛑 Vocab error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var engine ai.Engine
	var gemini *ai.GeminiEngine
	if cfg.Gemini.APIKey != "" {
		gemini, err = ai.NewGeminiEngine(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.MaxTokens)
		if err != nil {
			log.Fatalf("🛑 Gemini error: %v", err)
		}
		defer gemini.Close()
		engine = gemini
		log.Printf("✅ Model engine ready (%s)", cfg.Gemini.Model)
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set: chat disabled, catalog API only")
	}

	matcher := search.NewMatcher(store, cfg.Search.FuzzyThreshold, cfg.Search.MaxResults)

	if err := importer.Preload(store, vocab, matcher, cfg.BundledDir, importer.StockOptions{
		DefaultLocation: cfg.Stock.PrimaryLocation,
	}); err != nil {
		log.Fatalf("🛑 Preload error: %v", err)
	}

	equivalences := substitution.NewEquivalenceResolver(store, cfg.Stock.MinStock)
	var generator substitution.Generator
	if gemini != nil {
		generator = gemini
	}
	ranker := substitution.NewRanker(store, vocab, generator, cfg.Stock.MinStock)
	tapes := tape.NewResolver(store, cfg.Stock.TapeMetersRoll)
	web := websearch.NewService(websearch.NewBraveClient(cfg.Search.BraveAPIKey), store, vocab.WebKeywords)
	var polisher proposal.Polisher
	if gemini != nil {
		polisher = gemini
	}
	proposals := proposal.NewService(store, polisher, tapes)

	var orchestrator *ai.Orchestrator
	if engine != nil {
		orchestrator = ai.NewOrchestrator(engine, &ai.Toolset{
			Search:          matcher,
			Stock:           store,
			Equivalences:    equivalences,
			Alternatives:    ranker,
			Web:             web,
			Tapes:           tapes,
			Feedback:        store,
			Texts:           proposals,
			Vision:          gemini,
			Images:          store,
			PrimaryLocation: cfg.Stock.PrimaryLocation,
		})
	}

	if cfg.ERP.URL != "" {
		client, err := erp.NewClient(cfg.ERP)
		if err != nil {
			log.Fatalf("🛑 ERP error: %v", err)
		}
		if err := client.Authenticate(); err != nil {
			log.Printf("⚠️  ERP authentication failed, sync disabled: %v", err)
		} else {
			syncer := erp.NewSyncer(client, store, cfg.Stock.PrimaryLocation,
				time.Duration(cfg.ERP.SyncInterval)*time.Minute)
			go syncer.Run(ctx)
			log.Printf("🔄 ERP stock sync every %d minutes", cfg.ERP.SyncInterval)
		}
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:       cfg,
		Store:        store,
		Matcher:      matcher,
		Orchestrator: orchestrator,
		Equivalences: equivalences,
		Tapes:        tapes,
		Proposals:    proposals,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		log.Printf("🚀 MDF copilot listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("🛑 Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	log.Println("✅ Bye")
}
