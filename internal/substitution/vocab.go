// Package substitution finds replacement boards: curated direct
// equivalents and scored "smart alternative" suggestions that combine
// attribute heuristics with an LLM ranking pass.
package substitution

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/search"
)

// Vocab maps pattern-name words onto the families the attribute scorer
// reasons about. The built-in lists cover the Brazilian MDF market;
// deployments can override them with a JSON file.
type Vocab struct {
	WoodFamilies  map[string][]string `json:"wood_families"`
	ColorFamilies map[string][]string `json:"color_families"`
	FinishGroups  [][]string          `json:"finish_groups"`

	// WebKeywords mark a text fragment as naming an MDF board at all:
	// generic terms, pattern names, colors, brands and finishes. Used
	// by the web cross-reference when mining result snippets.
	WebKeywords []string `json:"web_keywords"`
}

// DefaultVocab returns the built-in vocabulary.
func DefaultVocab() *Vocab {
	return &Vocab{
		WoodFamilies: map[string][]string{
			"carvalho": {"carvalho", "oak", "rovere", "hanover"},
			"nogal":    {"nogal", "nogueira", "walnut"},
			"cedro":    {"cedro", "cedrinho", "cedar"},
			"freijo":   {"freijo", "louro", "cumaru"},
			"tropical": {"ipanema", "itapua", "jatoba", "jequitiba", "canela", "castanho", "castanheira", "acacia", "savana", "lenho"},
			"amendoa":  {"amendoa", "amendoeira", "ameixa", "avela", "damasco", "gengibre", "pecan"},
			"imbuia":   {"imbuia"},
			"teca":     {"teca", "teka"},
			"montana":  {"montana", "melbourne"},
			"pinho":    {"pinho"},
			"maple":    {"maple"},
			"rustico":  {"rustico"},
		},
		ColorFamilies: map[string][]string{
			"branco":       {"branco", "neve", "white", "artico"},
			"cinza":        {"cinza", "grafite", "grafito", "titanio", "chumbo"},
			"preto":        {"preto", "black"},
			"neutro_claro": {"areia", "beige", "creme", "marfim", "perola"},
			"verde":        {"verde", "erva", "salvia", "selva"},
			"azul":         {"azul", "petroleo"},
			"marrom":       {"chocolate", "cafe", "tabaco"},
		},
		FinishGroups: [][]string{
			{"design", "essencial", "nature", "natura"},
			{"matt", "soft", "supermatte", "acetinatta"},
			{"chess", "trama", "pele"},
			{"lacca", "liso"},
			{"silk", "linho"},
		},
		WebKeywords: []string{
			"mdf", "melamina", "chapa", "painel",
			"carvalho", "nogal", "nogueira", "cedro", "cedrinho", "freijo",
			"rovere", "ipanema", "itapua", "jatoba", "teca", "imbuia",
			"pinho", "maple", "cumaru", "canela", "castanho", "acacia",
			"montana", "lenho", "savana", "pecan",
			"branco", "cinza", "grafite", "preto", "areia", "creme",
			"neve", "titanio", "chumbo", "chocolate", "tabaco",
			"duratex", "eucatex", "arauco", "berneck", "guararapes",
			"fibraplac", "masisa", "sonae", "floraplac", "sudati",
			"design", "matt", "silk", "nature", "lacca", "chess", "trama",
		},
	}
}

// LoadVocab reads a vocabulary override from a JSON file. Empty path
// returns the defaults; missing sections fall back to the defaults
// section-by-section.
func LoadVocab(path string) (*Vocab, error) {
	def := DefaultVocab()
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab file: %w", err)
	}
	var v Vocab
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocab file %s: %w", path, err)
	}
	if v.WoodFamilies == nil {
		v.WoodFamilies = def.WoodFamilies
	}
	if v.ColorFamilies == nil {
		v.ColorFamilies = def.ColorFamilies
	}
	if v.FinishGroups == nil {
		v.FinishGroups = def.FinishGroups
	}
	if v.WebKeywords == nil {
		v.WebKeywords = def.WebKeywords
	}
	return &v, nil
}

// WoodFamily returns the wood family a product name belongs to, or "".
func (v *Vocab) WoodFamily(name string) string {
	return v.familyOf(name, v.WoodFamilies)
}

// ColorFamily returns the color family a product name belongs to, or "".
func (v *Vocab) ColorFamily(name string) string {
	return v.familyOf(name, v.ColorFamilies)
}

// familyOf matches the earliest token in the name that belongs to a
// family, so compound names resolve deterministically.
func (v *Vocab) familyOf(name string, families map[string][]string) string {
	byWord := make(map[string]string)
	for family, words := range families {
		for _, w := range words {
			byWord[w] = family
		}
	}
	for _, tok := range strings.Fields(search.Normalize(name)) {
		if family, ok := byWord[tok]; ok {
			return family
		}
	}
	return ""
}

// SameFinishGroup reports whether two finishes belong to the same
// visual/tactile group. Matching is by containment, so suffixed
// variants ("Supermatte TX") still resolve to their group.
func (v *Vocab) SameFinishGroup(a, b string) bool {
	na, nb := search.Normalize(a), search.Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	for _, group := range v.FinishGroups {
		var hasA, hasB bool
		for _, f := range group {
			if strings.Contains(na, f) {
				hasA = true
			}
			if strings.Contains(nb, f) {
				hasB = true
			}
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}
