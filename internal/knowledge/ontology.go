package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Davidi18/Schema-API-Full/internal/fetch"
)

const (
	// OntologyFile is the name of the ontology written by WriteOntology.
	OntologyFile = "ontology.json"

	// DefaultSource lists every schema.org type on a single page.
	DefaultSource = "https://schema.org/docs/full.html"

	ontologyVersion = "1.0.0"
	schemaOrigin    = "https://schema.org"
)

// SchemaType is one schema.org type link.
type SchemaType struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Ontology is the document written to ontology.json.
type Ontology struct {
	Version string       `json:"version"`
	Updated string       `json:"updated"`
	Types   []SchemaType `json:"types"`
}

// Fetcher retrieves a remote document.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*fetch.Response, error)
}

// ParseSchemaTypes collects the site-relative links of a schema.org type
// listing in document order. Protocol-relative and external links are skipped.
func ParseSchemaTypes(html []byte) ([]SchemaType, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	types := []SchemaType{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
			return
		}
		types = append(types, SchemaType{
			Name: strings.TrimPrefix(href, "/"),
			URL:  schemaOrigin + href,
		})
	})
	return types, nil
}

// FetchSchemaTypes downloads source and parses its type links.
func FetchSchemaTypes(ctx context.Context, f Fetcher, source string, timeout time.Duration) ([]SchemaType, error) {
	resp, err := f.Fetch(ctx, source, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", source, resp.StatusCode)
	}
	return ParseSchemaTypes(resp.Body)
}

// NewOntology stamps types with the current version and the date of now.
func NewOntology(types []SchemaType, now time.Time) Ontology {
	return Ontology{
		Version: ontologyVersion,
		Updated: now.Format(time.DateOnly),
		Types:   types,
	}
}

// WriteOntology writes o to dir/ontology.json with two-space indentation and
// returns the path written.
func WriteOntology(dir string, o Ontology) (string, error) {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal ontology: %w", err)
	}
	return writeFile(dir, OntologyFile, data)
}
