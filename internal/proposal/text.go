// Package proposal turns a chosen substitution into client-facing
// artifacts: a WhatsApp-ready message and a printable PDF proposal.
package proposal

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/models"
	"github.com/painelsoft/mdfcopilot/internal/tape"
)

// Suggestion types as the tool surface names them.
const (
	TypeDirectEquivalence = "direct_equivalence"
	TypeVisualSimilarity  = "visual_similarity"
	TypeSmartAlternative  = "smart_alternative"
)

// ProductReader is the slice of the catalog the service needs.
type ProductReader interface {
	FindProductByID(id int64) (*models.Product, error)
	NetAvailable(productID int64) (float64, error)
}

// Polisher optionally rewrites the template text in a warmer tone.
// Satisfied by the model engine; nil keeps the template.
type Polisher interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TapeFinder resolves edge banding for the substitution so the
// message can mention a compatible tape. Satisfied by tape.Resolver.
type TapeFinder interface {
	ResolveForSubstitution(originalID, substituteID int64) ([]tape.Option, error)
}

// Service builds substitution messages for the end client.
type Service struct {
	store    ProductReader
	polisher Polisher
	tapes    TapeFinder
}

// NewService creates a Service. polisher and tapes may be nil.
func NewService(store ProductReader, polisher Polisher, tapes TapeFinder) *Service {
	return &Service{store: store, polisher: polisher, tapes: tapes}
}

// ClientText writes the message a seller can forward to the client.
// Returns "" when either product id is unknown.
func (s *Service) ClientText(ctx context.Context, originalID, suggestedID int64, suggestionType string) (string, error) {
	original, err := s.store.FindProductByID(originalID)
	if err != nil {
		return "", err
	}
	suggested, err := s.store.FindProductByID(suggestedID)
	if err != nil {
		return "", err
	}
	if original == nil || suggested == nil {
		return "", nil
	}
	net, err := s.store.NetAvailable(suggestedID)
	if err != nil {
		return "", err
	}

	text := buildTemplate(*original, *suggested, suggestionType, net)
	if s.tapes != nil {
		tapes, err := s.tapes.ResolveForSubstitution(originalID, suggestedID)
		if err != nil {
			log.Printf("⚠️  Tape lookup for client text failed: %v", err)
		} else if len(tapes) > 0 {
			t := tapes[0]
			label := strings.TrimSpace(t.Brand + " " + t.TapeName)
			text += fmt.Sprintf("\nFita de borda compativel: %s (%s)", label, t.TapeCode)
		}
	}
	if s.polisher == nil {
		return text, nil
	}

	polished, err := s.polisher.Generate(ctx, polishPrompt(text))
	if err != nil || strings.TrimSpace(polished) == "" {
		if err != nil {
			log.Printf("⚠️  Text polish failed, using template: %v", err)
		}
		return text, nil
	}
	return strings.TrimSpace(polished), nil
}

func buildTemplate(original, suggested models.Product, suggestionType string, net float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sobre o %s%s que voce pediu: no momento estamos sem estoque dele.\n\n",
		describe(original), thicknessSuffix(original))

	switch suggestionType {
	case TypeDirectEquivalence:
		fmt.Fprintf(&b, "Temos o %s%s, que e o padrao equivalente oficial entre as marcas - mesmo desenho e mesma proposta de cor.",
			describe(suggested), thicknessSuffix(suggested))
	case TypeSmartAlternative:
		fmt.Fprintf(&b, "Posso sugerir o %s%s como alternativa: e o padrao mais proximo que trabalhamos hoje.",
			describe(suggested), thicknessSuffix(suggested))
	default:
		fmt.Fprintf(&b, "Temos o %s%s, um padrao visualmente muito proximo.",
			describe(suggested), thicknessSuffix(suggested))
	}

	if net > 0 {
		fmt.Fprintf(&b, "\n\nDisponibilidade imediata: %.0f chapas.", net)
	}
	b.WriteString("\nSe quiser, te mando uma foto para comparar.")
	return b.String()
}

func describe(p models.Product) string {
	if p.Brand == "" {
		return p.ProductName
	}
	return p.ProductName + " da " + p.Brand
}

func thicknessSuffix(p models.Product) string {
	if p.ThicknessMM == nil {
		return ""
	}
	return fmt.Sprintf(" %.0fmm", *p.ThicknessMM)
}

func polishPrompt(text string) string {
	return "Reescreva a mensagem abaixo para um cliente de marcenaria, em portugues, " +
		"mantendo TODOS os fatos (produtos, marcas, espessuras, quantidades) e o tom cordial e direto. " +
		"Responda apenas com a mensagem reescrita.\n\n" + text
}
