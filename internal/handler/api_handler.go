package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mycogenesis/internal/content"
	"mycogenesis/internal/middleware"
)

// APIHandler serves page content as JSON.
type APIHandler struct {
	content ContentLoader
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(cl ContentLoader) *APIHandler {
	return &APIHandler{content: cl}
}

// optionKeys are the query parameters passed on as load options. Others are
// dropped so they cannot create cache entries.
var optionKeys = []string{"slug", "q"}

// contentHandler returns the envelope of {pageType}. A failed required operation is reported with 503 but the
// envelope is still returned.
func (h *APIHandler) contentHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	opts := content.Options{}
	query := r.URL.Query()
	for _, k := range optionKeys {
		if v := query.Get(k); v != "" {
			opts[k] = v
		}
	}

	pc, err := h.content.LoadPageContent(r.Context(), chi.URLParam(r, "pageType"), opts)
	if errors.Is(err, content.ErrUnknownPageType) {
		return &middleware.AppError{Error: err, Message: "Unknown page type", Code: http.StatusNotFound}
	}
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load content", Code: http.StatusInternalServerError}
	}

	status := http.StatusOK
	if reqErr := pc.RequiredError(); reqErr != nil {
		status = http.StatusServiceUnavailable
		if isNotFound(reqErr) {
			status = http.StatusNotFound
		}
	}
	writeJSON(w, status, pc)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
