// Package handlers exposes the copilot over HTTP: a chat endpoint
// (plain and websocket), catalog lookups and proposal rendering.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/painelsoft/mdfcopilot/internal/ai"
	"github.com/painelsoft/mdfcopilot/internal/catalog"
	"github.com/painelsoft/mdfcopilot/internal/config"
	"github.com/painelsoft/mdfcopilot/internal/middleware"
	"github.com/painelsoft/mdfcopilot/internal/proposal"
	"github.com/painelsoft/mdfcopilot/internal/search"
	"github.com/painelsoft/mdfcopilot/internal/substitution"
	"github.com/painelsoft/mdfcopilot/internal/tape"
)

// Router wires all HTTP routes.
type Router struct {
	*mux.Router

	cfg          *config.Config
	store        *catalog.Store
	matcher      *search.Matcher
	orchestrator *ai.Orchestrator
	equivalences *substitution.EquivalenceResolver
	tapes        *tape.Resolver
	proposals    *proposal.Service

	chats *chatSessions
}

// Deps bundles the services the router needs.
type Deps struct {
	Config       *config.Config
	Store        *catalog.Store
	Matcher      *search.Matcher
	Orchestrator *ai.Orchestrator
	Equivalences *substitution.EquivalenceResolver
	Tapes        *tape.Resolver
	Proposals    *proposal.Service
}

// NewRouter builds the route table.
func NewRouter(d Deps) *Router {
	r := &Router{
		Router:       mux.NewRouter(),
		cfg:          d.Config,
		store:        d.Store,
		matcher:      d.Matcher,
		orchestrator: d.Orchestrator,
		equivalences: d.Equivalences,
		tapes:        d.Tapes,
		proposals:    d.Proposals,
		chats:        newChatSessions(),
	}
	r.routes()
	return r
}

func (r *Router) routes() {
	r.HandleFunc("/api/health", r.handleHealth).Methods("GET")
	r.HandleFunc("/api/auth/login", r.handleLogin).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(r.cfg.JWTSecret))

	api.HandleFunc("/chat", r.handleChat).Methods("POST")
	api.HandleFunc("/chat/ws", r.handleChatWS).Methods("GET")

	api.HandleFunc("/products/search", r.handleProductSearch).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", r.handleProductGet).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/stock", r.handleProductStock).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/equivalents", r.handleProductEquivalents).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/tapes", r.handleProductTapes).Methods("GET")

	api.HandleFunc("/feedback/stats", r.handleFeedbackStats).Methods("GET")
	api.HandleFunc("/proposals/pdf", r.handleProposalPDF).Methods("POST")
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("⚠️  Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
