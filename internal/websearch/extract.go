package websearch

import (
	"regexp"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/search"
)

const (
	fragmentMinWords = 2
	fragmentMaxWords = 8
	fragmentCap      = 15
)

// relevanceTerms decide whether a web result is about MDF boards at
// all. Fragment mining uses the much larger keyword vocabulary the
// service carries (patterns, colors, brands, finishes).
var relevanceTerms = []string{"mdf", "melamina", "chapa", "painel", "madeira", "marcenaria"}

var (
	splitRe     = regexp.MustCompile(`[,;.()\[\]|/\-]`)
	connectorRe = regexp.MustCompile(`\b(ou|como|similar|alternativa|equivalente|substituto|versao)\b`)

	// Filler words trimmed off fragment edges after splitting.
	edgeStopwords = map[string]bool{
		"a": true, "o": true, "e": true, "ao": true, "de": true, "do": true,
		"da": true, "dos": true, "das": true, "em": true, "no": true, "na": true,
		"para": true, "com": true, "um": true, "uma": true,
	}
)

// Fragment is a candidate product-name mention mined from one web
// result, keeping the reference it came from.
type Fragment struct {
	Text        string `json:"text"`
	SourceURL   string `json:"source_url"`
	SourceTitle string `json:"source_title"`
}

// FilterRelevant keeps only results that are about MDF and share at
// least one meaningful word with the query.
func FilterRelevant(results []WebResult, query string) []WebResult {
	queryWords := map[string]bool{}
	for _, w := range strings.Fields(search.Normalize(query)) {
		if len(w) > 2 {
			queryWords[w] = true
		}
	}

	var out []WebResult
	for _, r := range results {
		text := search.Normalize(r.Title + " " + r.Description)
		if !containsAnyWord(text, relevanceTerms) {
			continue
		}
		shared := false
		for _, w := range strings.Fields(text) {
			if queryWords[w] {
				shared = true
				break
			}
		}
		if shared {
			out = append(out, r)
		}
	}
	return out
}

// ExtractFragments pulls candidate product-name fragments out of search
// results. Titles and snippets are split on punctuation and on the
// connector words sellers and shops use when listing alternatives
// ("X ou Y", "similar ao Z"), then each piece is kept if it is 2 to 8
// words and names anything from the keyword vocabulary (generic MDF
// terms, wood patterns, colors, brands, finishes).
func ExtractFragments(results []WebResult, keywords []string) []Fragment {
	if len(keywords) == 0 {
		keywords = relevanceTerms
	}
	seen := map[string]bool{}
	var out []Fragment
	for _, r := range results {
		for _, source := range []string{r.Title, r.Description} {
			pieces := splitRe.Split(connectorRe.ReplaceAllString(strings.ToLower(source), "|"), -1)
			for _, piece := range pieces {
				words := trimEdges(strings.Fields(search.Normalize(piece)))
				if len(words) < fragmentMinWords || len(words) > fragmentMaxWords {
					continue
				}
				frag := strings.Join(words, " ")
				if !containsAnySubstring(frag, keywords) {
					continue
				}
				if seen[frag] {
					continue
				}
				seen[frag] = true
				out = append(out, Fragment{Text: frag, SourceURL: r.URL, SourceTitle: r.Title})
				if len(out) >= fragmentCap {
					return out
				}
			}
		}
	}
	return out
}

func trimEdges(words []string) []string {
	for len(words) > 0 && edgeStopwords[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && edgeStopwords[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return words
}

func containsAnyWord(text string, words []string) bool {
	padded := " " + text + " "
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

// containsAnySubstring matches keywords anywhere in the fragment, so
// brand and pattern names still hit inside compound words.
func containsAnySubstring(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
