// Package schema builds schema.org WebPage markup for a live page.
package schema

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/Davidi18/Schema-API-Full/internal/extract"
	"github.com/Davidi18/Schema-API-Full/internal/fetch"
)

const (
	schemaContext = "https://schema.org"
	typeWebPage   = "WebPage"
)

// WebPage is the generated JSON-LD object.
type WebPage struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TextStats summarizes the visible body text of the page.
type TextStats struct {
	WordCount      int     `json:"word_count"`
	NTokens        int     `json:"n_tokens"`
	AvgTokenLength float64 `json:"avg_token_length"`
}

// Result is the body of a successful schema generation.
type Result struct {
	FromExistingSchema []string  `json:"from_existing_schema"`
	UsedType           string    `json:"used_type"`
	Schema             WebPage   `json:"schema"`
	Extract            TextStats `json:"extract"`
}

// Fetcher retrieves a remote document.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*fetch.Response, error)
}

// Generator fetches pages and describes them as schema.org WebPages.
type Generator struct {
	fetcher Fetcher
	timeout time.Duration
	log     *slog.Logger
}

// NewGenerator creates a Generator whose page fetches are bounded by timeout.
func NewGenerator(f Fetcher, timeout time.Duration, log *slog.Logger) *Generator {
	return &Generator{fetcher: f, timeout: timeout, log: log}
}

// Generate fetches pageURL and builds its WebPage description. Any failure,
// including a non-2xx answer, is returned as an error.
func (g *Generator) Generate(ctx context.Context, pageURL string) (*Result, error) {
	resp, err := g.fetcher.Fetch(ctx, pageURL, g.timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if !statusOK(resp.StatusCode) {
		return nil, fmt.Errorf("fetch page: HTTP %d", resp.StatusCode)
	}

	res, err := Build(pageURL, resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	g.log.Info("schema generated", "url", pageURL, "name", res.Schema.Name, "words", res.Extract.WordCount)
	return res, nil
}

// Build parses an HTML page body. contentType, when known, selects the
// charset used to decode body.
func Build(pageURL string, body []byte, contentType string) (*Result, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	name := strings.TrimSpace(doc.Find("head > title").First().Text())
	if name == "" {
		if u, err := url.Parse(pageURL); err == nil {
			name = u.Hostname()
		}
	}
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	return &Result{
		FromExistingSchema: []string{typeWebPage},
		UsedType:           typeWebPage,
		Schema: WebPage{
			Context:     schemaContext,
			Type:        typeWebPage,
			URL:         pageURL,
			Name:        name,
			Description: description,
		},
		Extract: bodyStats(doc),
	}, nil
}

// bodyStats rounds ties away from zero, unlike extract.AverageLength.
func bodyStats(doc *goquery.Document) TextStats {
	body := doc.Find("body")
	body.Find("script, style, noscript").Remove()

	words := strings.Fields(body.Text())
	tokens := extract.Tokenize(strings.Join(words, " "))
	return TextStats{
		WordCount:      len(words),
		NTokens:        len(tokens),
		AvgTokenLength: math.Round(extract.MeanLength(tokens)*100) / 100,
	}
}

// statusOK reports whether code is a 2xx status.
func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
