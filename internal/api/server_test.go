package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Davidi18/Schema-API-Full/internal/config"
	"github.com/Davidi18/Schema-API-Full/internal/fetch"
	"github.com/Davidi18/Schema-API-Full/internal/schema"
	"github.com/Davidi18/Schema-API-Full/internal/sitemap"
)

const urlsetXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://acme.test/blog/a</loc></url>
  <url><loc>https://acme.test/blog/b</loc></url>
  <url><loc>https://acme.test/shop/c</loc></url>
</urlset>`

const indexXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://acme.test/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>https://acme.test/sitemap-2.xml</loc></sitemap>
</sitemapindex>`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/urlset.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, urlsetXML)
	})
	mux.HandleFunc("/index.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, indexXML)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<urlset><url><loc>x</url>")
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><head><title>Acme</title><meta name="description" content="Widgets"></head><body><p>Hello there</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() config.Config {
	return config.Config{
		Port:                "8000",
		ServiceName:         "schema-api",
		Version:             "1.0.0",
		UserAgent:           "schema-api-test",
		SitemapFetchTimeout: 2 * time.Second,
		PageFetchTimeout:    2 * time.Second,
		MaxFetchBytes:       1 << 20,
		MaxRequestBytes:     1 << 16,
		DefaultMaxURLs:      100,
		MaxInFlight:         8,
		MaxBacklog:          8,
		BacklogTimeout:      time.Second,
		StatsWindow:         time.Hour,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	stats := fetch.NewLatencyStats(cfg.StatsWindow)
	f := fetch.New(cfg.UserAgent, cfg.MaxFetchBytes, stats)
	t.Cleanup(f.Close)

	sitemaps := sitemap.NewService(f, sitemap.ServiceConfig{
		FetchTimeout:   cfg.SitemapFetchTimeout,
		ClusterTimeout: cfg.PageFetchTimeout,
		MaxBytes:       cfg.MaxFetchBytes,
	}, log)
	schemas := schema.NewGenerator(f, cfg.PageFetchTimeout, log)
	return NewServer(sitemaps, schemas, stats, log, cfg)
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: response is not a JSON object: %v (%q)", method, path, err, rec.Body.String())
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, out := do(t, newTestServer(t), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if out["status"] != "healthy" || out["service"] != "schema-api" {
		t.Errorf("unexpected health payload %v", out)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
}

func TestInfo(t *testing.T) {
	rec, out := do(t, newTestServer(t), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if out["status"] != "running" || out["version"] != "1.0.0" {
		t.Errorf("unexpected info payload %v", out)
	}
	if eps, ok := out["endpoints"].([]any); !ok || len(eps) != len(endpoints) {
		t.Errorf("expected %d endpoints, got %v", len(endpoints), out["endpoints"])
	}
}

func TestSitemap(t *testing.T) {
	upstream := newUpstream(t)
	s := newTestServer(t)

	t.Run("urlset with default max", func(t *testing.T) {
		rec, out := do(t, s, http.MethodPost, "/sitemap", `{"url":"`+upstream.URL+`/urlset.xml"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", rec.Code, out)
		}
		if out["type"] != "urlset" || out["count"] != float64(3) || out["requested_max"] != float64(100) {
			t.Errorf("unexpected result %v", out)
		}
		if out["success"] != true {
			t.Errorf("expected success=true, got %v", out["success"])
		}
	})

	t.Run("index truncated", func(t *testing.T) {
		rec, out := do(t, s, http.MethodPost, "/sitemap", `{"url":"`+upstream.URL+`/index.xml","max_urls":1}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", rec.Code, out)
		}
		urls, _ := out["urls"].([]any)
		if out["type"] != "sitemap_index" || len(urls) != 1 || urls[0] != "https://acme.test/sitemap-1.xml" {
			t.Errorf("unexpected result %v", out)
		}
	})

	t.Run("zero max keeps type", func(t *testing.T) {
		rec, out := do(t, s, http.MethodPost, "/sitemap", `{"url":"`+upstream.URL+`/index.xml","max_urls":0}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		urls, ok := out["urls"].([]any)
		if !ok || len(urls) != 0 || out["type"] != "sitemap_index" {
			t.Errorf("unexpected result %v", out)
		}
	})
}

func TestSitemap_Errors(t *testing.T) {
	upstream := newUpstream(t)
	s := newTestServer(t)

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	tests := []struct {
		name     string
		body     string
		status   int
		category string
		prefix   string
	}{
		{"upstream 404", `{"url":"` + upstream.URL + `/missing.xml"}`, http.StatusBadRequest, "upstream_status", "Failed to fetch sitemap: HTTP 404"},
		{"malformed xml", `{"url":"` + upstream.URL + `/broken.xml"}`, http.StatusBadRequest, "parse", "Invalid XML sitemap: "},
		{"unreachable", `{"url":"` + deadURL + `/sitemap.xml"}`, http.StatusInternalServerError, "transport", "Network error: "},
		{"missing url", `{}`, http.StatusBadRequest, "validation", "url is required"},
		{"relative url", `{"url":"/sitemap.xml"}`, http.StatusBadRequest, "validation", "url must be absolute"},
		{"negative max", `{"url":"https://acme.test/s.xml","max_urls":-1}`, http.StatusBadRequest, "validation", "max_urls must be >= 0"},
		{"not json", `url=x`, http.StatusBadRequest, "validation", "invalid request body"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := do(t, s, http.MethodPost, "/sitemap", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %v", tc.status, rec.Code, out)
			}
			if out["category"] != tc.category {
				t.Errorf("expected category %q, got %v", tc.category, out["category"])
			}
			msg, _ := out["error"].(string)
			if !strings.HasPrefix(msg, tc.prefix) {
				t.Errorf("expected error starting with %q, got %q", tc.prefix, msg)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	s := newTestServer(t)

	rec, out := do(t, s, http.MethodPost, "/extract", `{"text":"Hello, world! How are you?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if out["word_count"] != float64(5) || out["n_tokens"] != float64(5) || out["sentence_count"] != float64(2) {
		t.Errorf("unexpected counts %v", out)
	}
	if out["avg_token_length"] != 3.8 || out["language_detected"] != "unknown" {
		t.Errorf("unexpected result %v", out)
	}

	rec, out = do(t, s, http.MethodPost, "/extract", `{"text":"   "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for blank text, got %d", rec.Code)
	}
	for _, k := range []string{"word_count", "n_tokens", "avg_token_length", "char_count", "sentence_count"} {
		if out[k] != float64(0) {
			t.Errorf("expected %s=0, got %v", k, out[k])
		}
	}
}

func TestValidateEntity(t *testing.T) {
	s := newTestServer(t)

	rec, out := do(t, s, http.MethodPost, "/validate-entity", `{"type":"Organization","properties":{"name":"Acme"}}`)
	if rec.Code != http.StatusOK || out["valid"] != true || out["type"] != "Organization" {
		t.Errorf("expected valid entity, got %d %v", rec.Code, out)
	}

	rec, out = do(t, s, http.MethodPost, "/validate-entity", `{"type":"Person","properties":{}}`)
	if rec.Code != http.StatusBadRequest || out["valid"] != false {
		t.Fatalf("expected invalid entity, got %d %v", rec.Code, out)
	}
	errs, _ := out["errors"].([]any)
	if len(errs) != 1 || errs[0] != "Person.name is required" {
		t.Errorf("unexpected errors %v", out["errors"])
	}
}

func TestSchema(t *testing.T) {
	upstream := newUpstream(t)
	s := newTestServer(t)

	rec, out := do(t, s, http.MethodPost, "/schema", `{"url":"`+upstream.URL+`/page"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, out)
	}
	page, _ := out["schema"].(map[string]any)
	if page["name"] != "Acme" || page["description"] != "Widgets" || page["@type"] != "WebPage" {
		t.Errorf("unexpected schema %v", page)
	}

	rec, out = do(t, s, http.MethodPost, "/schema", `{"url":"`+upstream.URL+`/nope"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if out["error"] != "Schema generation failed" || out["details"] == "" {
		t.Errorf("unexpected failure body %v", out)
	}
}

func TestCluster(t *testing.T) {
	upstream := newUpstream(t)
	s := newTestServer(t)

	rec, out := do(t, s, http.MethodPost, "/cluster", `{"url":"`+upstream.URL+`/urlset.xml","level":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, out)
	}
	clusters, _ := out["clusters"].(map[string]any)
	if out["cluster_by"] != "dir_1" || clusters["blog"] != float64(2) || clusters["shop"] != float64(1) {
		t.Errorf("unexpected clusters %v", out)
	}

	rec, out = do(t, s, http.MethodPost, "/cluster", `{"url":"`+upstream.URL+`/urlset.xml"}`)
	if rec.Code != http.StatusBadRequest || out["error"] != "level is required" {
		t.Errorf("expected level validation error, got %d %v", rec.Code, out)
	}

	rec, out = do(t, s, http.MethodPost, "/cluster", `{"url":"`+upstream.URL+`/missing.xml","level":1}`)
	if rec.Code != http.StatusBadRequest || out["category"] != "upstream_status" {
		t.Errorf("expected upstream status error, got %d %v", rec.Code, out)
	}
}

func TestFetchStats(t *testing.T) {
	upstream := newUpstream(t)
	s := newTestServer(t)

	do(t, s, http.MethodPost, "/sitemap", `{"url":"`+upstream.URL+`/urlset.xml"}`)

	rec, out := do(t, s, http.MethodGet, "/stats/fetch", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	stats, _ := out["stats"].(map[string]any)
	if stats["count"] != float64(1) {
		t.Errorf("expected one recorded fetch, got %v", out)
	}
	if out["window"] != "1h0m0s" {
		t.Errorf("unexpected window %v", out["window"])
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/sitemap", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
