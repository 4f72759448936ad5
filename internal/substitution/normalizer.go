package substitution

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RankedItem is one normalized entry from the LLM ranking response.
type RankedItem struct {
	Index         int
	Score         float64
	Justification string
}

// NormalizeRanking parses the free-form JSON the model returns for a
// ranking request. Models drift on field names and scales, so parsing
// is deliberately tolerant: markdown fences are stripped, several
// field name variants are accepted, and percentage-scale scores are
// brought back to [0,1].
func NormalizeRanking(raw string) ([]RankedItem, error) {
	cleaned := stripFences(raw)

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		// Some models wrap the array in an object.
		var wrapper map[string]json.RawMessage
		if werr := json.Unmarshal([]byte(cleaned), &wrapper); werr == nil {
			for _, v := range wrapper {
				if json.Unmarshal(v, &entries) == nil {
					break
				}
			}
		}
		if entries == nil {
			return nil, fmt.Errorf("ranking response is not valid JSON: %w", err)
		}
	}

	items := make([]RankedItem, 0, len(entries))
	for _, e := range entries {
		idx, ok := intField(e, "index", "candidato", "candidate", "idx")
		if !ok {
			continue
		}
		score, ok := floatField(e, "similarity_score", "similaridade_visual", "score", "similarity")
		if !ok {
			continue
		}
		if score > 1.0 {
			score = score / 100.0
		}
		if score < 0 {
			score = 0
		}
		if score > 1.0 {
			score = 1.0
		}
		just, _ := stringField(e, "justification", "justificativa", "reason", "razao")
		items = append(items, RankedItem{Index: idx, Score: score, Justification: just})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("ranking response had no usable entries")
	}
	return items, nil
}

// CodeRankedItem is one normalized entry from a ranking response keyed
// by product code instead of positional index (visual comparisons send
// the code alongside each image).
type CodeRankedItem struct {
	ProductCode   string
	Score         float64
	Justification string
}

// NormalizeCodeRanking parses a ranking response whose entries carry a
// product code. Same tolerance rules as NormalizeRanking.
func NormalizeCodeRanking(raw string) ([]CodeRankedItem, error) {
	cleaned := stripFences(raw)

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		var wrapper map[string]json.RawMessage
		if werr := json.Unmarshal([]byte(cleaned), &wrapper); werr == nil {
			for _, v := range wrapper {
				if json.Unmarshal(v, &entries) == nil {
					break
				}
			}
		}
		if entries == nil {
			return nil, fmt.Errorf("ranking response is not valid JSON: %w", err)
		}
	}

	items := make([]CodeRankedItem, 0, len(entries))
	for _, e := range entries {
		code, ok := stringField(e, "product_code", "codigo", "code")
		if !ok || strings.TrimSpace(code) == "" {
			continue
		}
		score, ok := floatField(e, "similarity_score", "similaridade_visual", "score", "similarity")
		if !ok {
			continue
		}
		if score > 1.0 {
			score = score / 100.0
		}
		if score < 0 {
			score = 0
		}
		if score > 1.0 {
			score = 1.0
		}
		just, _ := stringField(e, "justification", "justificativa", "reason", "razao")
		items = append(items, CodeRankedItem{ProductCode: strings.TrimSpace(code), Score: score, Justification: just})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("ranking response had no usable entries")
	}
	return items, nil
}

// stripFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// Drop the language tag line ("json", etc).
		if first := strings.TrimSpace(s[:i]); first == "" || !strings.ContainsAny(first, "[{") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func intField(e map[string]json.RawMessage, names ...string) (int, bool) {
	for _, n := range names {
		raw, ok := e[n]
		if !ok {
			continue
		}
		var i int
		if json.Unmarshal(raw, &i) == nil {
			return i, true
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return v, true
			}
		}
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return int(f), true
		}
	}
	return 0, false
}

func floatField(e map[string]json.RawMessage, names ...string) (float64, bool) {
	for _, n := range names {
		raw, ok := e[n]
		if !ok {
			continue
		}
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return f, true
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			s = strings.TrimSuffix(strings.TrimSpace(s), "%")
			if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func stringField(e map[string]json.RawMessage, names ...string) (string, bool) {
	for _, n := range names {
		raw, ok := e[n]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s, true
		}
	}
	return "", false
}
