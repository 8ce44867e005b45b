package api

import (
	"net/http"

	"github.com/Davidi18/Schema-API-Full/internal/extract"
	"github.com/Davidi18/Schema-API-Full/internal/sitemap"
)

type extractRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var body extractRequest
	if err := s.decodeJSON(w, r, &body); err != nil {
		validationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, extract.Analyze(body.Text))
}

func (s *Server) handleValidateEntity(w http.ResponseWriter, r *http.Request) {
	var e extract.Entity
	if err := s.decodeJSON(w, r, &e); err != nil {
		validationError(w, err.Error())
		return
	}

	if errs := extract.ValidateEntity(e); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid":  false,
			"errors": errs,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"type":       e.Type,
		"properties": e.Properties,
	})
}

type schemaRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	var body schemaRequest
	if err := s.decodeJSON(w, r, &body); err != nil {
		validationError(w, err.Error())
		return
	}
	if err := sitemap.ValidateURL(body.URL); err != nil {
		validationError(w, err.Error())
		return
	}

	res, err := s.schemas.Generate(r.Context(), body.URL)
	if err != nil {
		s.log.Warn("schema generation failed", "url", body.URL, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Schema generation failed",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
