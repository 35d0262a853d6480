package handlers

import (
	"net/http"

	"github.com/ukydev/ride-dispatch/internal/maps"
)

// MapsHandler serves address autocomplete suggestions.
type MapsHandler struct {
	oracle maps.Oracle
}

// NewMapsHandler creates a new maps handler
func NewMapsHandler(oracle maps.Oracle) *MapsHandler {
	return &MapsHandler{oracle: oracle}
}

// Suggestions returns autocomplete candidates for the input query param.
func (h *MapsHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		http.Error(w, "Input is required", http.StatusBadRequest)
		return
	}

	suggestions, err := h.oracle.Suggest(r.Context(), input)
	if err != nil {
		http.Error(w, "Failed to get suggestions", http.StatusInternalServerError)
		return
	}
	if suggestions == nil {
		suggestions = []maps.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}
