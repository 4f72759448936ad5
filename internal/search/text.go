// Package search implements product text matching: exact code lookup,
// indexed substring search and a fuzzy fallback over a cached index.
package search

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	deaccent      = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	thicknessRe   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*mm`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9 ]+`)
	multiSpacesRe = regexp.MustCompile(`\s+`)
)

// Normalize lowercases, strips accents and collapses punctuation and
// whitespace, so "Carvalho Âmbar  15mm" and "carvalho ambar 15mm"
// compare equal.
func Normalize(s string) string {
	out, _, err := transform.String(deaccent, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	out = nonAlnumRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(multiSpacesRe.ReplaceAllString(out, " "))
}

// TokenSortRatio computes similarity in [0,1] between two strings by
// sorting their normalized tokens and comparing the joined forms with
// Levenshtein distance. Word order does not matter.
func TokenSortRatio(a, b string) float64 {
	sa := sortedTokens(a)
	sb := sortedTokens(b)
	if sa == "" && sb == "" {
		return 1.0
	}
	if sa == "" || sb == "" {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(sa, sb)
	maxLen := len(sa)
	if len(sb) > maxLen {
		maxLen = len(sb)
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(Normalize(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ExtractThickness pulls a millimeter spec like "15mm" or "18,5 mm"
// out of a query. Returns nil when none is present.
func ExtractThickness(query string) *float64 {
	m := thicknessRe.FindStringSubmatch(strings.ToLower(query))
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// StripSearchTokens removes thickness specs and board-type words (mdf,
// mdp) from a query, leaving the part that names the pattern.
func StripSearchTokens(query string) string {
	out := thicknessRe.ReplaceAllString(strings.ToLower(query), " ")
	var kept []string
	for _, tok := range strings.Fields(Normalize(out)) {
		if tok == "mdf" || tok == "mdp" {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
