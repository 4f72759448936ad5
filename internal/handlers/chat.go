package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/painelsoft/mdfcopilot/internal/ai"
	"github.com/painelsoft/mdfcopilot/internal/middleware"
)

// chatSessions keeps live model conversations per session id. The
// transcript is also persisted, but the model-side state (tool rounds,
// context) lives here for the process lifetime.
type chatSessions struct {
	mu   sync.Mutex
	live map[string]ai.Session
}

func newChatSessions() *chatSessions {
	return &chatSessions{live: make(map[string]ai.Session)}
}

func (c *chatSessions) get(o *ai.Orchestrator, id string) ai.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.live[id]; ok {
		return s
	}
	s := o.NewSession()
	c.live[id] = s
	return s
}

type chatRequest struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageMIME   string `json:"image_mime,omitempty"`
}

type chatResponse struct {
	SessionID string         `json:"session_id"`
	Answer    string         `json:"answer"`
	Tools     []ai.ToolEvent `json:"tools_used"`
}

type transcriptEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) {
	if r.orchestrator == nil {
		respondError(w, http.StatusServiceUnavailable, "chat desabilitado: GEMINI_API_KEY nao configurada")
		return
	}
	var body chatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Message == "" && body.ImageBase64 == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	img, err := decodeImage(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid image payload")
		return
	}

	var events []ai.ToolEvent
	session := r.chats.get(r.orchestrator, body.SessionID)
	ctx := ai.WithSessionID(req.Context(), body.SessionID)
	answer, err := r.orchestrator.RunObserved(ctx, session, body.Message, img,
		func(e ai.ToolEvent) { events = append(events, e) })
	if err != nil {
		log.Printf("⚠️  Chat run failed: %v", err)
		respondError(w, http.StatusBadGateway, "o copiloto esta indisponivel no momento")
		return
	}

	r.persistTranscript(req, body.SessionID, body.Message, answer)
	respondJSON(w, http.StatusOK, chatResponse{
		SessionID: body.SessionID,
		Answer:    answer,
		Tools:     events,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsEvent struct {
	Type   string `json:"type"` // "tool", "answer", "error"
	Name   string `json:"name,omitempty"`
	CallID string `json:"call_id,omitempty"`
	Text   string `json:"text,omitempty"`
}

// handleChatWS is the streaming chat surface: the client sends
// chatRequest frames and receives a "tool" event per executed call
// before the final "answer".
func (r *Router) handleChatWS(w http.ResponseWriter, req *http.Request) {
	if r.orchestrator == nil {
		respondError(w, http.StatusServiceUnavailable, "chat desabilitado: GEMINI_API_KEY nao configurada")
		return
	}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("⚠️  WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var body chatRequest
		if err := conn.ReadJSON(&body); err != nil {
			return
		}
		if body.SessionID == "" {
			body.SessionID = uuid.NewString()
		}
		img, err := decodeImage(body)
		if err != nil {
			conn.WriteJSON(wsEvent{Type: "error", Text: "imagem invalida"})
			continue
		}

		session := r.chats.get(r.orchestrator, body.SessionID)
		ctx := ai.WithSessionID(req.Context(), body.SessionID)
		answer, err := r.orchestrator.RunObserved(ctx, session, body.Message, img,
			func(e ai.ToolEvent) {
				conn.WriteJSON(wsEvent{Type: "tool", Name: e.Name, CallID: e.CallID})
			})
		if err != nil {
			log.Printf("⚠️  Chat run failed: %v", err)
			conn.WriteJSON(wsEvent{Type: "error", Text: "o copiloto esta indisponivel no momento"})
			continue
		}

		r.persistTranscript(req, body.SessionID, body.Message, answer)
		conn.WriteJSON(wsEvent{Type: "answer", Text: answer})
	}
}

func decodeImage(body chatRequest) (*ai.Image, error) {
	if body.ImageBase64 == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(body.ImageBase64)
	if err != nil {
		return nil, err
	}
	mime := body.ImageMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return &ai.Image{MIMEType: mime, Data: data}, nil
}

// persistTranscript appends the exchange to the stored session. Purely
// for audit; failures are logged, not surfaced.
func (r *Router) persistTranscript(req *http.Request, sessionID, message, answer string) {
	sess, err := r.store.GetOrCreateSession(sessionID)
	if err != nil {
		log.Printf("⚠️  Could not load chat session %s: %v", sessionID, err)
		return
	}
	if seller := middleware.Seller(req.Context()); seller != "" {
		sess.Seller = seller
	}

	var history []transcriptEntry
	if len(sess.History) > 0 {
		if err := json.Unmarshal(sess.History, &history); err != nil {
			log.Printf("⚠️  Corrupt transcript for session %s, starting over", sessionID)
			history = nil
		}
	}
	history = append(history,
		transcriptEntry{Role: "user", Text: message},
		transcriptEntry{Role: "assistant", Text: answer},
	)
	data, err := json.Marshal(history)
	if err != nil {
		return
	}
	sess.History = data
	if err := r.store.SaveSession(sess); err != nil {
		log.Printf("⚠️  Could not save chat session %s: %v", sessionID, err)
	}
}
