// Seeds a small demo catalog so the copilot can be exercised without the
// bundled spreadsheets: a sold-out Carvalho Hanover with a registered
// equivalent in stock, a handful of alternatives per category, and
// edging tapes covering every compatibility tier.
package main

import (
	"log"

	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/config"
	"github.com/painelsoft/mdfcopilot/internal/database"
	"github.com/painelsoft/mdfcopilot/internal/models"
)

func f(v float64) *float64 { return &v }

type demoProduct struct {
	brand, name, code string
	thickness         *float64
	finish            string
	category          string
	stock             float64
}

type demoTape struct {
	brand, name, code string
	meters            float64
}

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

	products := []demoProduct{
		{"Duratex", "Carvalho Hanover", "DURATE_CARVALHO_HANOVER", f(15), "Design", models.CategoryMadeirado, 0},
		{"Eucatex", "Rovere Soft", "EUCATE_ROVERE_SOFT", f(15), "Soft", models.CategoryMadeirado, 12},
		{"Arauco", "Carvalho Aserrado", "ARAUCO_CARVALHO_ASERRADO", f(15), "Nature", models.CategoryMadeirado, 7},
		{"Berneck", "Nogueira Ibiza", "BERNEC_NOGUEIRA_IBIZA", f(15), "Matt", models.CategoryMadeirado, 4},
		{"Guararapes", "Itapua", "GUARAR_ITAPUA", f(18), "Essencial", models.CategoryMadeirado, 9},
		{"Duratex", "Branco Diamante", "DURATE_BRANCO_DIAMANTE", f(15), "Lacca", models.CategoryUnicolor, 30},
		{"Eucatex", "Branco Ártico", "EUCATE_BRANCO_ARTICO", f(15), "Liso", models.CategoryUnicolor, 22},
		{"Arauco", "Cinza Sagrado", "ARAUCO_CINZA_SAGRADO", f(15), "Matt", models.CategoryUnicolor, 0},
		{"Placas do Brasil", "Trama Orgânica", "PLACAS_TRAMA_ORGANICA", f(18), "Trama", models.CategoryFantasia, 5},
	}

	ids := make(map[string]int64)
	for i := range products {
		dp := products[i]
		p := &models.Product{
			Brand:       dp.brand,
			ProductName: dp.name,
			ProductCode: dp.code,
			ThicknessMM: dp.thickness,
			Finish:      dp.finish,
			Category:    dp.category,
			IsActive:    true,
		}
		existing, err := store.FindProductByCode(dp.code)
		if err != nil {
			log.Fatalf("🛑 Lookup %s: %v", dp.code, err)
		}
		if existing != nil {
			p = existing
		} else if err := store.CreateProduct(p); err != nil {
			log.Fatalf("🛑 Create %s: %v", dp.code, err)
		}
		ids[dp.code] = p.ID
		if err := store.UpsertStock(&models.Stock{
			ProductID:         p.ID,
			Location:          cfg.Stock.PrimaryLocation,
			QuantityAvailable: dp.stock,
			Unit:              "chapa",
		}); err != nil {
			log.Fatalf("🛑 Stock %s: %v", dp.code, err)
		}
	}

	// Keep a few boards in a secondary location so check_stock has
	// something to report beyond the counter.
	if err := store.UpsertStock(&models.Stock{
		ProductID:         ids["DURATE_CARVALHO_HANOVER"],
		Location:          "matriz",
		QuantityAvailable: 3,
		Unit:              "chapa",
	}); err != nil {
		log.Fatalf("🛑 Secondary stock: %v", err)
	}

	equivalences := [][2]string{
		{"DURATE_CARVALHO_HANOVER", "EUCATE_ROVERE_SOFT"},
		{"DURATE_CARVALHO_HANOVER", "ARAUCO_CARVALHO_ASERRADO"},
		{"DURATE_BRANCO_DIAMANTE", "EUCATE_BRANCO_ARTICO"},
	}
	for _, pair := range equivalences {
		if err := store.AddEquivalence(ids[pair[0]], ids[pair[1]], 1.0, "demo"); err != nil {
			log.Fatalf("🛑 Equivalence %s/%s: %v", pair[0], pair[1], err)
		}
	}

	tapes := []demoTape{
		{"Duratex", "Fita Carvalho Hanover 22mm", "FITA_CARVALHO_HANOVER_22", 0},
		{"Rehau", "Fita Carvalho Natural 22mm", "FITA_CARVALHO_NATURAL_22", 180},
		{"Eucatex", "Fita Rovere Soft 22mm", "FITA_ROVERE_SOFT_22", 60},
		{"Proadec", "Fita Branco Diamante 22mm", "FITA_BRANCO_DIAMANTE_22", 240},
	}
	tapeIDs := make(map[string]int64)
	for i := range tapes {
		dt := tapes[i]
		t := &models.EdgingTape{
			Brand:           dt.brand,
			TapeName:        dt.name,
			TapeCode:        dt.code,
			AvailableMeters: dt.meters,
			IsActive:        true,
		}
		if err := store.UpsertTape(t); err != nil {
			log.Fatalf("🛑 Tape %s: %v", dt.code, err)
		}
		tapeIDs[dt.code] = t.ID
	}

	compat := []struct {
		product, tape, tier string
	}{
		{"DURATE_CARVALHO_HANOVER", "FITA_CARVALHO_HANOVER_22", models.TapeOfficial},
		{"DURATE_CARVALHO_HANOVER", "FITA_CARVALHO_NATURAL_22", models.TapeAlternative},
		{"EUCATE_ROVERE_SOFT", "FITA_ROVERE_SOFT_22", models.TapeOfficial},
		{"DURATE_BRANCO_DIAMANTE", "FITA_BRANCO_DIAMANTE_22", models.TapeOfficial},
		{"EUCATE_BRANCO_ARTICO", "FITA_BRANCO_DIAMANTE_22", models.TapeRecommended},
	}
	for _, c := range compat {
		if err := store.AddTapeCompatibility(ids[c.product], tapeIDs[c.tape], c.tier); err != nil {
			log.Fatalf("🛑 Compatibility %s/%s: %v", c.product, c.tape, err)
		}
	}

	// The official Hanover tape is dry; its Rehau counterpart covers for it.
	if err := store.AddTapeEquivalence(tapeIDs["FITA_CARVALHO_HANOVER_22"], tapeIDs["FITA_CARVALHO_NATURAL_22"], 0.9, "demo"); err != nil {
		log.Fatalf("🛑 Tape equivalence: %v", err)
	}

	log.Printf("✅ Demo catalog ready: %d products, %d tapes", len(products), len(tapes))
	log.Println("💡 Experimente: \"Cliente quer Carvalho Hanover 15mm, mas acabou. O que ofereço?\"")
}
