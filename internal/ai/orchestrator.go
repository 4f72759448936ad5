package ai

import (
	"context"
	"log"
)

// maxIterations bounds how many tool rounds one seller message may
// trigger before the orchestrator gives up.
const maxIterations = 8

// ToolEvent notifies an observer that a tool ran; the chat surfaces
// use it for progress indicators.
type ToolEvent struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
}

// Orchestrator runs one seller message through the model/tool loop.
type Orchestrator struct {
	engine Engine
	tools  *Toolset

	// OnToolCall, when set, is invoked after each executed call.
	OnToolCall func(ToolEvent)
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(engine Engine, tools *Toolset) *Orchestrator {
	return &Orchestrator{engine: engine, tools: tools}
}

// NewSession opens a conversation with the copilot system prompt and
// the full tool surface.
func (o *Orchestrator) NewSession() Session {
	return o.engine.NewSession(systemPrompt, Definitions())
}

// Run submits a seller message (optionally with a photo) and drives
// the tool loop to a final text answer. The image is turn-scoped: it
// is visible to search_by_image for this message only.
//
// Tool calls within a round are isolated: one failing call becomes an
// error payload in that call's slot and the round continues.
func (o *Orchestrator) Run(ctx context.Context, session Session, message string, img *Image) (string, error) {
	return o.RunObserved(ctx, session, message, img, o.OnToolCall)
}

// RunObserved is Run with a per-call observer, for callers that need
// request-scoped progress events (the websocket chat).
func (o *Orchestrator) RunObserved(ctx context.Context, session Session, message string, img *Image, observe func(ToolEvent)) (string, error) {
	turn, err := session.SendUser(ctx, message, img)
	if err != nil {
		return "", err
	}

	for i := 0; i < maxIterations; i++ {
		if len(turn.Calls) == 0 {
			if turn.Text != "" {
				return turn.Text, nil
			}
			return apologyMessage, nil
		}

		results := make([]ToolResult, 0, len(turn.Calls))
		for _, call := range turn.Calls {
			log.Printf("🔄 Tool call: %s", call.Name)
			payload := o.tools.Execute(ctx, call, img)
			results = append(results, ToolResult{ID: call.ID, Name: call.Name, Payload: payload})
			if observe != nil {
				observe(ToolEvent{CallID: call.ID, Name: call.Name})
			}
		}

		turn, err = session.SendToolResults(ctx, results)
		if err != nil {
			return "", err
		}
	}

	if len(turn.Calls) == 0 && turn.Text != "" {
		return turn.Text, nil
	}
	log.Printf("⚠️  Tool loop hit the iteration cap (%d)", maxIterations)
	return apologyMessage, nil
}
