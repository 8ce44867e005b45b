package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Davidi18/Schema-API-Full/internal/fetch"
	"github.com/Davidi18/Schema-API-Full/internal/sitemap"
)

const categoryValidation = "validation"

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func categoryError(w http.ResponseWriter, msg, category string, code int) {
	writeJSON(w, code, map[string]string{"error": msg, "category": category})
}

func validationError(w http.ResponseWriter, msg string) {
	categoryError(w, msg, categoryValidation, http.StatusBadRequest)
}

// writeServiceError maps a sitemap service failure onto a status code and
// message. Upstream answers the service could not use are the caller's
// problem (400); failures to reach or process them are ours (500).
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		ue *sitemap.UpstreamStatusError
		pe *sitemap.ParseError
		te *fetch.TransportError
		ce *sitemap.ProcessingError
	)
	switch {
	case errors.As(err, &ue):
		categoryError(w, fmt.Sprintf("Failed to fetch sitemap: HTTP %d", ue.StatusCode), ue.Category(), http.StatusBadRequest)
	case errors.As(err, &pe):
		categoryError(w, "Invalid XML sitemap: "+pe.Error(), pe.Category(), http.StatusBadRequest)
	case errors.As(err, &te):
		categoryError(w, "Network error: "+te.Error(), te.Category(), http.StatusInternalServerError)
	case errors.As(err, &ce):
		log.Error("sitemap processing failed", "error", err)
		categoryError(w, "Sitemap processing error: "+ce.Error(), ce.Category(), http.StatusInternalServerError)
	default:
		log.Error("sitemap processing failed", "error", err)
		categoryError(w, "Sitemap processing error: "+err.Error(), "processing", http.StatusInternalServerError)
	}
}

// decodeJSON reads a size-capped JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
