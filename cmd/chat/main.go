// Terminal chat client for the MDF copilot. Talks to the same services
// as the HTTP API but keeps the whole conversation in one process, which
// is handy for trying prompts against a local catalog.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/painelsoft/mdfcopilot/internal/ai"
	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/config"
	"github.com/painelsoft/mdfcopilot/internal/database"
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
	if cfg.Gemini.APIKey == "" {
		log.Fatal("🛑 GEMINI_API_KEY is required for the chat client")
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

	ctx := context.Background()
	gemini, err := ai.NewGeminiEngine(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.MaxTokens)
	if err != nil {
		log.Fatalf("🛑 Gemini error: %v", err)
	}
	defer gemini.Close()

	matcher := search.NewMatcher(store, cfg.Search.FuzzyThreshold, cfg.Search.MaxResults)
	if err := importer.Preload(store, vocab, matcher, cfg.BundledDir, importer.StockOptions{
		DefaultLocation: cfg.Stock.PrimaryLocation,
	}); err != nil {
		log.Fatalf("🛑 Preload error: %v", err)
	}

	tapes := tape.NewResolver(store, cfg.Stock.TapeMetersRoll)
	orchestrator := ai.NewOrchestrator(gemini, &ai.Toolset{
		Search:          matcher,
		Stock:           store,
		Equivalences:    substitution.NewEquivalenceResolver(store, cfg.Stock.MinStock),
		Alternatives:    substitution.NewRanker(store, vocab, gemini, cfg.Stock.MinStock),
		Web:             websearch.NewService(websearch.NewBraveClient(cfg.Search.BraveAPIKey), store, vocab.WebKeywords),
		Tapes:           tapes,
		Feedback:        store,
		Texts:           proposal.NewService(store, gemini, tapes),
		Vision:          gemini,
		Images:          store,
		PrimaryLocation: cfg.Stock.PrimaryLocation,
	})
	orchestrator.OnToolCall = func(ev ai.ToolEvent) {
		fmt.Printf("   🔧 %s\n", ev.Name)
	}

	session := orchestrator.NewSession()
	ctx = ai.WithSessionID(ctx, uuid.NewString())

	fmt.Println("💬 Copiloto MDF — digite sua pergunta (ou 'sair' para encerrar)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nvocê> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "sair" || line == "exit" {
			break
		}

		answer, err := orchestrator.Run(ctx, session, line, nil)
		if err != nil {
			fmt.Printf("⚠️  Erro: %v\n", err)
			continue
		}
		fmt.Printf("\ncopiloto> %s\n", answer)
	}
	fmt.Println("👋 Até logo")
}
