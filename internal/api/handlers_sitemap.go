package api

import (
	"net/http"

	"github.com/Davidi18/Schema-API-Full/internal/sitemap"
)

type sitemapRequest struct {
	URL     string `json:"url"`
	MaxURLs *int   `json:"max_urls"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	var body sitemapRequest
	if err := s.decodeJSON(w, r, &body); err != nil {
		validationError(w, err.Error())
		return
	}

	req := sitemap.Request{URL: body.URL, MaxURLs: s.cfg.DefaultMaxURLs}
	if body.MaxURLs != nil {
		req.MaxURLs = *body.MaxURLs
	}
	if err := req.Validate(); err != nil {
		validationError(w, err.Error())
		return
	}

	res, err := s.sitemaps.Resolve(r.Context(), req)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type clusterRequest struct {
	URL   string `json:"url"`
	Level *int   `json:"level"`
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var body clusterRequest
	if err := s.decodeJSON(w, r, &body); err != nil {
		validationError(w, err.Error())
		return
	}
	if err := sitemap.ValidateURL(body.URL); err != nil {
		validationError(w, err.Error())
		return
	}
	if body.Level == nil {
		validationError(w, "level is required")
		return
	}

	res, err := s.sitemaps.Cluster(r.Context(), body.URL, *body.Level)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
