package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Davidi18/Schema-API-Full/internal/config"
	"github.com/Davidi18/Schema-API-Full/internal/fetch"
	"github.com/Davidi18/Schema-API-Full/internal/schema"
	"github.com/Davidi18/Schema-API-Full/internal/sitemap"
)

// Server is the HTTP API server for schema-api.
type Server struct {
	router   chi.Router
	sitemaps *sitemap.Service
	schemas  *schema.Generator
	stats    *fetch.LatencyStats
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(sitemaps *sitemap.Service, schemas *schema.Generator, stats *fetch.LatencyStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sitemaps: sitemaps,
		schemas:  schemas,
		stats:    stats,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

var endpoints = []string{
	"GET /",
	"GET /health",
	"POST /sitemap",
	"POST /extract",
	"POST /schema",
	"POST /validate-entity",
	"POST /cluster",
	"GET /stats/fetch",
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ThrottleBacklog(s.cfg.MaxInFlight, s.cfg.MaxBacklog, s.cfg.BacklogTimeout))

		r.Post("/sitemap", s.handleSitemap)
		r.Post("/extract", s.handleExtract)
		r.Post("/schema", s.handleSchema)
		r.Post("/validate-entity", s.handleValidateEntity)
		r.Post("/cluster", s.handleCluster)
		r.Get("/stats/fetch", s.handleFetchStats)
	})

	s.router = r
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "running",
		"service":   s.cfg.ServiceName,
		"version":   s.cfg.Version,
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.cfg.ServiceName,
	})
}
