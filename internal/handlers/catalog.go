package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/painelsoft/mdfcopilot/internal/middleware"
	"github.com/painelsoft/mdfcopilot/internal/proposal"
)

func pathID(req *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	return id
}

func (r *Router) handleProductSearch(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	res, err := r.matcher.Search(query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (r *Router) handleProductGet(w http.ResponseWriter, req *http.Request) {
	product, err := r.store.FindProductByID(pathID(req))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (r *Router) handleProductStock(w http.ResponseWriter, req *http.Request) {
	id := pathID(req)
	product, err := r.store.FindProductByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	rows, err := r.store.GetStock(id, "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "stock lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"product": product,
		"stock":   rows,
	})
}

func (r *Router) handleProductEquivalents(w http.ResponseWriter, req *http.Request) {
	sameThickness := req.URL.Query().Get("same_thickness") != "false"
	original, equivalents, err := r.equivalences.Resolve(pathID(req), sameThickness)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "equivalence lookup failed")
		return
	}
	if original == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"original":    original,
		"equivalents": equivalents,
	})
}

func (r *Router) handleProductTapes(w http.ResponseWriter, req *http.Request) {
	product, options, err := r.tapes.Resolve(pathID(req))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "tape lookup failed")
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"product": product,
		"tapes":   options,
	})
}

func (r *Router) handleFeedbackStats(w http.ResponseWriter, req *http.Request) {
	stats, err := r.store.GetFeedbackStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type proposalRequest struct {
	OriginalProductID  int64  `json:"original_product_id"`
	SuggestedProductID int64  `json:"suggested_product_id"`
	SuggestionType     string `json:"suggestion_type"`
	QRContent          string `json:"qr_content,omitempty"`
}

// handleProposalPDF renders the printable substitution proposal.
func (r *Router) handleProposalPDF(w http.ResponseWriter, req *http.Request) {
	var body proposalRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	original, err := r.store.FindProductByID(body.OriginalProductID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	suggested, err := r.store.FindProductByID(body.SuggestedProductID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if original == nil || suggested == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	text, err := r.proposals.ClientText(req.Context(), body.OriginalProductID, body.SuggestedProductID, body.SuggestionType)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not build client text")
		return
	}

	pdf, err := proposal.BuildPDF(proposal.PDFInput{
		Original:   *original,
		Suggested:  *suggested,
		ClientText: text,
		QRContent:  body.QRContent,
		Seller:     middleware.Seller(req.Context()),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not render pdf")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="proposta-substituicao.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
