package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/models"
)

func f(v float64) *float64 { return &v }

type stubWeb struct {
	results []WebResult
	err     error
}

func (s *stubWeb) Search(ctx context.Context, query string) ([]WebResult, error) {
	return s.results, s.err
}

type stubCatalog struct {
	products []models.Product
	net      map[int64]float64
}

func (s *stubCatalog) SearchProductsByText(term string, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Brand+" "+p.ProductName), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(term), strings.ToLower(p.ProductName)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubCatalog) NetAvailable(productID int64) (float64, error) {
	return s.net[productID], nil
}

func TestCrossReferenceMapsWebMentionsToCatalog(t *testing.T) {
	web := &stubWeb{results: []WebResult{
		{Title: "MDF Carvalho Hanover descontinuado, equivalente MDF Rovere Soft Eucatex", Description: "chapa 15mm"},
	}}
	cat := &stubCatalog{
		products: []models.Product{
			{ID: 1, Brand: "Duratex", ProductName: "Carvalho Hanover", ThicknessMM: f(15)},
			{ID: 2, Brand: "Eucatex", ProductName: "Rovere Soft", ThicknessMM: f(15)},
		},
		net: map[int64]float64{2: 12},
	}
	svc := NewService(web, cat, testKeywords)

	report, err := svc.CrossReference(context.Background(), "Carvalho Hanover", "Duratex", f(15))
	if err != nil {
		t.Fatalf("cross-reference failed: %v", err)
	}
	if len(report.Fragments) == 0 {
		t.Fatal("no fragments extracted")
	}
	for _, m := range report.Matches {
		if m.ID == 1 {
			t.Error("original product must be excluded from matches")
		}
	}
	if len(report.Matches) != 1 || report.Matches[0].ID != 2 {
		t.Fatalf("expected Rovere Soft as the single match, got %+v", report.Matches)
	}
	if !report.Matches[0].InStock || report.Matches[0].NetAvailable != 12 {
		t.Errorf("stock missing on match: %+v", report.Matches[0])
	}
	if report.Matches[0].SourceURL == "" && report.Matches[0].SourceTitle == "" {
		t.Errorf("match lost its web reference: %+v", report.Matches[0])
	}
	want := "Encontrei 1 referencias na web. Desses, 1 produto(s) similar(es) esta(ao) em nosso estoque!"
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}
}

func TestCrossReferenceSummaryWithoutStock(t *testing.T) {
	web := &stubWeb{results: []WebResult{
		{Title: "MDF Carvalho Hanover descontinuado, equivalente MDF Rovere Soft Eucatex"},
	}}
	cat := &stubCatalog{
		products: []models.Product{
			{ID: 2, Brand: "Eucatex", ProductName: "Rovere Soft", ThicknessMM: f(15)},
		},
		net: map[int64]float64{},
	}
	svc := NewService(web, cat, testKeywords)

	report, err := svc.CrossReference(context.Background(), "Carvalho Hanover", "Duratex", nil)
	if err != nil {
		t.Fatalf("cross-reference failed: %v", err)
	}
	want := "Encontrei 1 referencias na web. Desses, 1 produto(s) existe(m) em nossa base, mas nenhum com estoque disponivel."
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}
}

func TestCrossReferenceSummaryWithoutMatches(t *testing.T) {
	web := &stubWeb{results: []WebResult{
		{Title: "MDF Carvalho Hanover descontinuado, equivalente MDF Rovere Soft Eucatex"},
	}}
	svc := NewService(web, &stubCatalog{}, testKeywords)

	report, err := svc.CrossReference(context.Background(), "Carvalho Hanover", "Duratex", nil)
	if err != nil {
		t.Fatalf("cross-reference failed: %v", err)
	}
	want := "Encontrei 1 referencias na web, mas nenhum dos produtos mencionados foi encontrado em nossa base. Veja as referencias abaixo para consultar manualmente."
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}
}

func TestCrossReferenceNoRelevantResults(t *testing.T) {
	web := &stubWeb{results: []WebResult{
		{Title: "Receita de bolo", Description: "farinha e ovos"},
	}}
	svc := NewService(web, &stubCatalog{}, testKeywords)

	report, err := svc.CrossReference(context.Background(), "Carvalho Hanover", "Duratex", nil)
	if err != nil {
		t.Fatalf("cross-reference failed: %v", err)
	}
	if len(report.Results) != 0 || len(report.Matches) != 0 {
		t.Errorf("irrelevant results leaked into report: %+v", report)
	}
	want := "Nenhum resultado relevante encontrado para 'Carvalho Hanover'."
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}
}

func TestCrossReferenceThicknessFilter(t *testing.T) {
	web := &stubWeb{results: []WebResult{
		{Title: "mdf carvalho hanover similar mdf rovere soft eucatex"},
	}}
	cat := &stubCatalog{
		products: []models.Product{
			{ID: 2, Brand: "Eucatex", ProductName: "Rovere Soft", ThicknessMM: f(18)},
		},
		net: map[int64]float64{},
	}
	svc := NewService(web, cat, testKeywords)

	report, err := svc.CrossReference(context.Background(), "Carvalho Hanover", "Duratex", f(15))
	if err != nil {
		t.Fatalf("cross-reference failed: %v", err)
	}
	if len(report.Matches) != 0 {
		t.Errorf("18mm board should be filtered for a 15mm request: %+v", report.Matches)
	}
}

func TestCrossReferenceDropsUnknownThickness(t *testing.T) {
	web := &stubWeb{results: []WebResult{
		{Title: "mdf carvalho hanover similar mdf rovere soft eucatex"},
	}}
	cat := &stubCatalog{
		products: []models.Product{
			{ID: 9, Brand: "Eucatex", ProductName: "Rovere Soft"},
		},
		net: map[int64]float64{9: 12},
	}
	svc := NewService(web, cat, testKeywords)

	report, err := svc.CrossReference(context.Background(), "Carvalho Hanover", "Duratex", f(15))
	if err != nil {
		t.Fatalf("cross-reference failed: %v", err)
	}
	if len(report.Matches) != 0 {
		t.Errorf("board without recorded thickness kept for a 15mm request: %+v", report.Matches)
	}
}

func TestCrossReferencePropagatesSearchErrors(t *testing.T) {
	svc := NewService(&stubWeb{err: ErrRateLimited}, &stubCatalog{}, testKeywords)
	_, err := svc.CrossReference(context.Background(), "Carvalho Hanover", "Duratex", nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestBraveClientNotConfigured(t *testing.T) {
	c := NewBraveClient("")
	_, err := c.Search(context.Background(), "mdf carvalho")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBraveClientParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Subscription-Token"); got != "test-key" {
			t.Errorf("missing subscription token, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("search_lang") != "pt-br" || q.Get("country") != "BR" {
			t.Errorf("unexpected locale params: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"web":{"results":[{"title":"t","url":"u","description":"d"}]}}`))
	}))
	defer srv.Close()

	c := NewBraveClient("test-key")
	c.endpoint = srv.URL
	results, err := c.Search(context.Background(), "mdf carvalho")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "t" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestBraveClientRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewBraveClient("test-key")
	c.endpoint = srv.URL
	_, err := c.Search(context.Background(), "mdf carvalho")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}
