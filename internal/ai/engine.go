// Package ai hosts the copilot loop: the model engine, the tool
// surface exposed to it and the orchestrator that runs a seller
// question to completion.
package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// ToolCall is one function call requested by the model. The SDK does
// not carry call ids, so the orchestrator assigns one per call and
// matches responses positionally within a round.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the outcome of one executed call, keyed back to its id.
type ToolResult struct {
	ID      string
	Name    string
	Payload map[string]any
}

// Turn is one model response: free text and zero or more tool calls.
type Turn struct {
	Text  string
	Calls []ToolCall
}

// Image is an inline attachment from the seller.
type Image struct {
	MIMEType string
	Data     []byte
}

// Session is one tool-calling conversation.
type Session interface {
	// SendUser submits a seller message, optionally with an image.
	SendUser(ctx context.Context, text string, img *Image) (*Turn, error)
	// SendToolResults submits the results of the previous turn's calls.
	SendToolResults(ctx context.Context, results []ToolResult) (*Turn, error)
}

// Engine abstracts the model provider.
type Engine interface {
	NewSession(system string, tools []Definition) Session
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, img Image) (string, error)
	ModelName() string
}

// GeminiEngine drives Gemini through the official SDK.
type GeminiEngine struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiEngine connects to the Gemini API.
func NewGeminiEngine(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiEngine{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Close releases the underlying client.
func (e *GeminiEngine) Close() error { return e.client.Close() }

// ModelName returns the configured model identifier.
func (e *GeminiEngine) ModelName() string { return e.model }

func (e *GeminiEngine) newModel(system string, tools []Definition) *genai.GenerativeModel {
	m := e.client.GenerativeModel(e.model)
	if e.maxTokens > 0 {
		m.SetMaxOutputTokens(e.maxTokens)
	}
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		m.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return m
}

// NewSession starts a tool-calling chat.
func (e *GeminiEngine) NewSession(system string, tools []Definition) Session {
	return &geminiSession{chat: e.newModel(system, tools).StartChat()}
}

// Generate runs a one-shot text completion without tools.
func (e *GeminiEngine) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := e.newModel("", nil).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return collectText(resp), nil
}

// GenerateWithImage runs a one-shot vision completion.
func (e *GeminiEngine) GenerateWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	resp, err := e.newModel("", nil).GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
	)
	if err != nil {
		return "", fmt.Errorf("generate with image: %w", err)
	}
	return collectText(resp), nil
}

// VisionSegment is one piece of an interleaved vision prompt: text,
// an image, or both (text first).
type VisionSegment struct {
	Text  string
	Image *Image
}

// GenerateWithImages runs a one-shot vision completion over an
// interleaved sequence of text and images.
func (e *GeminiEngine) GenerateWithImages(ctx context.Context, segments []VisionSegment) (string, error) {
	var parts []genai.Part
	for _, seg := range segments {
		if seg.Text != "" {
			parts = append(parts, genai.Text(seg.Text))
		}
		if seg.Image != nil {
			parts = append(parts, genai.Blob{MIMEType: seg.Image.MIMEType, Data: seg.Image.Data})
		}
	}
	resp, err := e.newModel("", nil).GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate with images: %w", err)
	}
	return collectText(resp), nil
}

type geminiSession struct {
	chat *genai.ChatSession
}

func (s *geminiSession) SendUser(ctx context.Context, text string, img *Image) (*Turn, error) {
	parts := []genai.Part{genai.Text(text)}
	if img != nil {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}
	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return toTurn(resp), nil
}

func (s *geminiSession) SendToolResults(ctx context.Context, results []ToolResult) (*Turn, error) {
	parts := make([]genai.Part, 0, len(results))
	for _, r := range results {
		parts = append(parts, genai.FunctionResponse{Name: r.Name, Response: r.Payload})
	}
	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("send tool results: %w", err)
	}
	return toTurn(resp), nil
}

func toTurn(resp *genai.GenerateContentResponse) *Turn {
	turn := &Turn{}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				turn.Text += string(p)
			case genai.FunctionCall:
				turn.Calls = append(turn.Calls, ToolCall{
					ID:   uuid.NewString(),
					Name: p.Name,
					Args: p.Args,
				})
			}
		}
	}
	return turn
}

func collectText(resp *genai.GenerateContentResponse) string {
	out := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				out += string(t)
			}
		}
	}
	return out
}
