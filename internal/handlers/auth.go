package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/painelsoft/mdfcopilot/internal/utils"
)

const sessionTTL = 12 * time.Hour

type loginRequest struct {
	Seller   string `json:"seller"`
	Password string `json:"password"`
}

// handleLogin trades the shared terminal password for a session token.
// With no APP_PASSWORD configured the endpoint says so instead of
// issuing tokens nobody needs.
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if r.cfg.AppPassword == "" {
		respondJSON(w, http.StatusOK, map[string]any{
			"token":   "",
			"message": "authentication disabled",
		})
		return
	}

	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !passwordMatches(body.Password, r.cfg.AppPassword) {
		respondError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	seller := body.Seller
	if seller == "" {
		seller = "balcao"
	}

	token, err := utils.GenerateJWT(seller, r.cfg.JWTSecret, sessionTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"seller": seller,
	})
}

// passwordMatches accepts APP_PASSWORD either as plaintext or as a
// bcrypt hash, so deployments can avoid storing the password itself.
func passwordMatches(candidate, configured string) bool {
	if strings.HasPrefix(configured, "$2") {
		return utils.CheckPasswordHash(candidate, configured)
	}
	return candidate == configured
}
