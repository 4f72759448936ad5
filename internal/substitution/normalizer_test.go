package substitution

import "testing"

func TestNormalizeRankingCanonicalForm(t *testing.T) {
	raw := `[{"index": 1, "similarity_score": 0.85, "justification": "Tom e veio muito proximos."},
	        {"index": 2, "similarity_score": 0.4, "justification": "Padrao mais escuro."}]`
	items, err := NormalizeRanking(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Index != 1 || items[0].Score != 0.85 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
}

func TestNormalizeRankingMarkdownFence(t *testing.T) {
	raw := "```json\n[{\"index\": 1, \"similarity_score\": 0.7, \"justification\": \"ok\"}]\n```"
	items, err := NormalizeRanking(raw)
	if err != nil {
		t.Fatalf("fenced response rejected: %v", err)
	}
	if items[0].Score != 0.7 {
		t.Errorf("score = %f, want 0.7", items[0].Score)
	}
}

func TestNormalizeRankingFieldVariants(t *testing.T) {
	raw := `[{"candidato": 2, "similaridade_visual": 0.9, "justificativa": "quase identico"}]`
	items, err := NormalizeRanking(raw)
	if err != nil {
		t.Fatalf("variant fields rejected: %v", err)
	}
	it := items[0]
	if it.Index != 2 || it.Score != 0.9 || it.Justification != "quase identico" {
		t.Errorf("unexpected item: %+v", it)
	}
}

func TestNormalizeRankingPercentScale(t *testing.T) {
	raw := `[{"index": 1, "score": 85, "reason": "alto"}]`
	items, err := NormalizeRanking(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if items[0].Score != 0.85 {
		t.Errorf("percent score not rescaled: %f", items[0].Score)
	}
}

func TestNormalizeRankingWrappedArray(t *testing.T) {
	raw := `{"candidatos": [{"index": 1, "similarity_score": 0.5, "justification": "medio"}]}`
	items, err := NormalizeRanking(raw)
	if err != nil {
		t.Fatalf("wrapped array rejected: %v", err)
	}
	if len(items) != 1 || items[0].Score != 0.5 {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestNormalizeRankingGarbage(t *testing.T) {
	if _, err := NormalizeRanking("desculpe, nao consigo avaliar"); err == nil {
		t.Error("non-JSON response should be an error")
	}
	if _, err := NormalizeRanking(`[{"note": "no usable fields"}]`); err == nil {
		t.Error("entries without index/score should be an error")
	}
}

func TestNormalizeRankingSkipsBrokenEntries(t *testing.T) {
	raw := `[{"index": 1, "similarity_score": 0.8, "justification": "bom"},
	        {"comment": "sem campos"},
	        {"index": "3", "similarity_score": "0,65"}]`
	items, err := NormalizeRanking(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (broken entry skipped)", len(items))
	}
	if items[1].Index != 3 || items[1].Score != 0.65 {
		t.Errorf("string-typed fields not coerced: %+v", items[1])
	}
}

func TestNormalizeCodeRankingCanonicalForm(t *testing.T) {
	raw := `[{"product_code": "DURATE_CARVALHO", "similarity_score": 0.9, "justification": "veio identico"},
	        {"codigo": "EUCATE_ROVERE", "similaridade_visual": 45, "justificativa": "tom mais frio"}]`
	items, err := NormalizeCodeRanking(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ProductCode != "DURATE_CARVALHO" || items[0].Score != 0.9 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].ProductCode != "EUCATE_ROVERE" || items[1].Score != 0.45 {
		t.Errorf("percent scale not normalized: %+v", items[1])
	}
}

func TestNormalizeCodeRankingFencedAndBroken(t *testing.T) {
	raw := "```json\n[{\"product_code\": \"P1\", \"similarity_score\": 0.7},\n{\"nota\": \"sem codigo\"}]\n```"
	items, err := NormalizeCodeRanking(raw)
	if err != nil {
		t.Fatalf("fenced response rejected: %v", err)
	}
	if len(items) != 1 || items[0].ProductCode != "P1" {
		t.Errorf("unexpected items: %+v", items)
	}
	if _, err := NormalizeCodeRanking("nao consigo comparar"); err == nil {
		t.Error("non-JSON response should be an error")
	}
}
