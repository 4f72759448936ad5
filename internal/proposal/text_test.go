package proposal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/tape"
)

func f(v float64) *float64 { return &v }

type stubReader struct {
	products map[int64]models.Product
	net      map[int64]float64
}

func (s *stubReader) FindProductByID(id int64) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *stubReader) NetAvailable(productID int64) (float64, error) {
	return s.net[productID], nil
}

type failingPolisher struct{}

func (failingPolisher) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("model offline")
}

type stubTapes struct {
	options []tape.Option
	err     error
}

func (s *stubTapes) ResolveForSubstitution(originalID, substituteID int64) ([]tape.Option, error) {
	return s.options, s.err
}

func fixture() *stubReader {
	return &stubReader{
		products: map[int64]models.Product{
			1: {ID: 1, Brand: "Duratex", ProductName: "Carvalho Hanover", ThicknessMM: f(15)},
			2: {ID: 2, Brand: "Eucatex", ProductName: "Rovere Soft", ThicknessMM: f(15)},
		},
		net: map[int64]float64{2: 12},
	}
}

func TestClientTextDirectEquivalence(t *testing.T) {
	svc := NewService(fixture(), nil, nil)
	text, err := svc.ClientText(context.Background(), 1, 2, TypeDirectEquivalence)
	if err != nil {
		t.Fatalf("client text failed: %v", err)
	}
	for _, want := range []string{"Carvalho Hanover", "Duratex", "Rovere Soft", "Eucatex", "equivalente oficial", "12 chapas"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
}

func TestClientTextMentionsCompatibleTape(t *testing.T) {
	tapes := &stubTapes{options: []tape.Option{
		{ID: 30, Brand: "Proadec", TapeName: "Fita Rovere Soft", TapeCode: "PROAD_ROVERE", AvailableMeters: 20, InStock: true},
		{ID: 31, Brand: "Rehau", TapeName: "Fita Rovere Similar", TapeCode: "REHAU_ROVERE"},
	}}
	svc := NewService(fixture(), nil, tapes)
	text, err := svc.ClientText(context.Background(), 1, 2, TypeDirectEquivalence)
	if err != nil {
		t.Fatalf("client text failed: %v", err)
	}
	want := "Fita de borda compativel: Proadec Fita Rovere Soft (PROAD_ROVERE)"
	if !strings.Contains(text, want) {
		t.Errorf("text missing tape line %q:\n%s", want, text)
	}
}

func TestClientTextTapeLookupFailureKeepsMessage(t *testing.T) {
	svc := NewService(fixture(), nil, &stubTapes{err: errors.New("db offline")})
	text, err := svc.ClientText(context.Background(), 1, 2, TypeDirectEquivalence)
	if err != nil {
		t.Fatalf("tape failure must not fail the call: %v", err)
	}
	if !strings.Contains(text, "Rovere Soft") || strings.Contains(text, "Fita de borda") {
		t.Errorf("unexpected text after tape failure:\n%s", text)
	}
}

func TestClientTextUnknownProduct(t *testing.T) {
	svc := NewService(fixture(), nil, nil)
	text, err := svc.ClientText(context.Background(), 1, 999, TypeDirectEquivalence)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("unknown product should yield empty text, got %q", text)
	}
}

func TestClientTextPolisherFailureKeepsTemplate(t *testing.T) {
	svc := NewService(fixture(), failingPolisher{}, nil)
	text, err := svc.ClientText(context.Background(), 1, 2, TypeSmartAlternative)
	if err != nil {
		t.Fatalf("polish failure must not fail the call: %v", err)
	}
	if !strings.Contains(text, "Rovere Soft") {
		t.Errorf("template not used as fallback:\n%s", text)
	}
}

func TestBuildPDF(t *testing.T) {
	data, err := BuildPDF(PDFInput{
		Original:   models.Product{Brand: "Duratex", ProductName: "Carvalho Hanover", ProductCode: "DURATE_CARVALHO_HANOVER", ThicknessMM: f(15)},
		Suggested:  models.Product{Brand: "Eucatex", ProductName: "Rovere Soft", ProductCode: "EUCATE_ROVERE_SOFT", ThicknessMM: f(15)},
		ClientText: "Mensagem de teste.",
		QRContent:  "https://example.com/produto/2",
		Seller:     "Maria",
	})
	if err != nil {
		t.Fatalf("pdf build failed: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Errorf("output does not look like a PDF (%d bytes)", len(data))
	}
}
