package sitemap

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Davidi18/Schema-API-Full/internal/fetch"
)

// Fetcher retrieves a remote document.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*fetch.Response, error)
}

// Request asks for the locations listed by a sitemap.
type Request struct {
	URL     string
	MaxURLs int
}

// Validate checks that URL is absolute and MaxURLs is not negative.
func (r Request) Validate() error {
	if err := ValidateURL(r.URL); err != nil {
		return err
	}
	if r.MaxURLs < 0 {
		return fmt.Errorf("max_urls must be >= 0, got %d", r.MaxURLs)
	}
	return nil
}

// ValidateURL checks that raw is an absolute URL with a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("url must be absolute: %q", raw)
	}
	return nil
}

// ServiceConfig bounds the upstream work of a Service.
type ServiceConfig struct {
	FetchTimeout   time.Duration // sitemap resolution
	ClusterTimeout time.Duration // clustering
	MaxBytes       int64         // cap on a decompressed body
}

// Service fetches sitemaps and resolves them. It holds no per-request state.
type Service struct {
	fetcher Fetcher
	cfg     ServiceConfig
	log     *slog.Logger
}

// NewService creates a Service. Zero timeouts fall back to 30s and 15s.
func NewService(f Fetcher, cfg ServiceConfig, log *slog.Logger) *Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.ClusterTimeout <= 0 {
		cfg.ClusterTimeout = 15 * time.Second
	}
	return &Service{fetcher: f, cfg: cfg, log: log}
}

// Resolve fetches req.URL and returns its first req.MaxURLs locations.
// Errors are one of *fetch.TransportError, *UpstreamStatusError, *ParseError
// or *ProcessingError.
func (s *Service) Resolve(ctx context.Context, req Request) (*Result, error) {
	log := s.log.With("url", req.URL, "max_urls", req.MaxURLs)

	body, err := s.download(ctx, req.URL, s.cfg.FetchTimeout)
	if err != nil {
		log.Warn("sitemap fetch failed", "error", err)
		return nil, err
	}

	res, err := Resolve(body, req.MaxURLs)
	if err != nil {
		log.Warn("sitemap parse failed", "error", err)
		return nil, classify(err)
	}

	log.Info("sitemap resolved", "type", res.Type, "count", res.Count)
	return res, nil
}

// Cluster fetches rawURL, takes every location it lists and groups them by
// path segment.
func (s *Service) Cluster(ctx context.Context, rawURL string, level int) (*ClusterResult, error) {
	log := s.log.With("url", rawURL, "level", level)

	body, err := s.download(ctx, rawURL, s.cfg.ClusterTimeout)
	if err != nil {
		log.Warn("sitemap fetch failed", "error", err)
		return nil, err
	}

	_, locs, err := Entries(body)
	if err != nil {
		log.Warn("sitemap parse failed", "error", err)
		return nil, classify(err)
	}

	res := Cluster(locs, level)
	log.Info("sitemap clustered", "total_urls", res.TotalURLs, "clusters", len(res.Clusters))
	return &res, nil
}

// download fetches rawURL and returns the (possibly gunzipped) body of a
// 200 answer.
func (s *Service) download(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	resp, err := s.fetcher.Fetch(ctx, rawURL, timeout)
	if err != nil {
		return nil, classify(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := gunzip(resp.Body, s.cfg.MaxBytes)
	if err != nil {
		return nil, classify(err)
	}
	return body, nil
}

// classify leaves the typed failures alone and wraps everything else.
func classify(err error) error {
	var (
		te *fetch.TransportError
		pe *ParseError
		ue *UpstreamStatusError
		ce *ProcessingError
	)
	switch {
	case errors.As(err, &te), errors.As(err, &pe), errors.As(err, &ue), errors.As(err, &ce):
		return err
	}
	return &ProcessingError{Err: err}
}

var gzipMagic = []byte{0x1f, 0x8b}

// gunzip inflates gzip bodies (sitemap.xml.gz); anything else is returned
// unchanged. A corrupt stream is a ParseError.
func gunzip(body []byte, maxBytes int64) ([]byte, error) {
	if !bytes.HasPrefix(body, gzipMagic) {
		return body, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("gzip: %w", err)}
	}
	defer zr.Close()

	var r io.Reader = zr
	if maxBytes > 0 {
		r = io.LimitReader(zr, maxBytes+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("gzip: %w", err)}
	}
	if maxBytes > 0 && int64(len(out)) > maxBytes {
		return nil, fmt.Errorf("%w: decompressed sitemap exceeds %d bytes", fetch.ErrBodyTooLarge, maxBytes)
	}
	return out, nil
}
