// Package importer loads the bundled similarity spreadsheet and stock
// exports into the catalog.
package importer

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/painelsoft/mdfcopilot/internal/search"
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

// Stock exports describe a board in one free-text cell, e.g.
// "Mdf Duratex Carvalho Hanover 15mm 2F Soft (1830x2750) Hidro".
// ParsedName is what we manage to pull out of that.
type ParsedName struct {
	Raw         string
	ShortName   string
	ThicknessMM *float64
	Faces       *int
	Finish      string
}

var (
	thicknessRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*mm`)
	facesRe     = regexp.MustCompile(`(?i)\b(\d)\s*f\b`)
	dimensionRe = regexp.MustCompile(`(?i)\b\d{3,4}\s*x\s*\d{3,4}\b`)
	parenRe     = regexp.MustCompile(`\([^)]*\)`)
)

// Finish keywords as the mills print them on price lists.
var finishKeywords = []string{
	"design", "silk", "essencial", "lacca", "tx", "matt", "supermatte",
	"acetinatta", "jateado", "nature", "natura", "pele", "line", "bold",
	"chess", "duna", "trama", "orvalho", "soft", "liso",
}

// Words that are board metadata, not part of the pattern name.
var noiseWords = map[string]bool{
	"mdf": true, "mdp": true, "pvc": true, "bp": true, "hdf": true,
	"hidro": true, "ultra": true, "avariado": true, "cx": true,
	"chapa": true, "painel": true,
}

// ParseStockName extracts thickness, face count and finish from a raw
// stock row name and reduces the rest to the short pattern name used
// for catalog matching. brandWords are stripped too when known.
func ParseStockName(raw string, brandWords []string) ParsedName {
	p := ParsedName{Raw: raw}

	if m := thicknessRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			p.ThicknessMM = &v
		}
	}
	if m := facesRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			p.Faces = &v
		}
	}

	cleaned := parenRe.ReplaceAllString(raw, " ")
	cleaned = thicknessRe.ReplaceAllString(cleaned, " ")
	cleaned = facesRe.ReplaceAllString(cleaned, " ")
	cleaned = dimensionRe.ReplaceAllString(cleaned, " ")

	brandSet := map[string]bool{}
	for _, b := range brandWords {
		for _, w := range strings.Fields(search.Normalize(b)) {
			brandSet[w] = true
		}
	}

	var kept []string
	for _, tok := range strings.Fields(search.Normalize(cleaned)) {
		if noiseWords[tok] || brandSet[tok] {
			continue
		}
		if isFinishKeyword(tok) {
			if p.Finish == "" {
				p.Finish = titleCaser.String(tok)
			}
			continue
		}
		kept = append(kept, tok)
	}
	p.ShortName = titleCaser.String(strings.Join(kept, " "))
	return p
}

func isFinishKeyword(tok string) bool {
	for _, k := range finishKeywords {
		if tok == k {
			return true
		}
	}
	return false
}
