package sitemap

import (
	"bytes"
	"errors"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Namespace is the sitemaps.org schema namespace. Elements outside it are
// not matched.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Type classifies a sitemap document.
type Type string

const (
	TypeSitemapIndex Type = "sitemap_index"
	TypeURLSet       Type = "urlset"
)

// Result is the outcome of resolving one sitemap document.
type Result struct {
	Success      bool     `json:"success"`
	URLs         []string `json:"urls"`
	Count        int      `json:"count"`
	RequestedMax int      `json:"requested_max"`
	Type         Type     `json:"type"`
}

var namespaces = map[string]string{"sm": Namespace}

// Both queries start below the document element.
var (
	indexLocs = mustCompile("/*//sm:sitemap/sm:loc")
	urlLocs   = mustCompile("/*//sm:url/sm:loc")
)

func mustCompile(expr string) *xpath.Expr {
	e, err := xpath.CompileWithNS(expr, namespaces)
	if err != nil {
		panic(err)
	}
	return e
}

// Entries parses content and returns every non-empty location in document
// order with the document's classification. A document is an index when it
// has at least one sitemap/loc element, even one with blank text.
func Entries(content []byte) (Type, []string, error) {
	doc, err := parseDocument(content)
	if err != nil {
		return "", nil, err
	}

	if nodes := xmlquery.QuerySelectorAll(doc, indexLocs); len(nodes) > 0 {
		return TypeSitemapIndex, locations(nodes), nil
	}
	return TypeURLSet, locations(xmlquery.QuerySelectorAll(doc, urlLocs)), nil
}

// Resolve parses content and returns at most maxURLs locations. Truncation
// happens after classification and after blank entries are dropped, so
// maxURLs never changes the reported type. A negative maxURLs is treated as 0.
func Resolve(content []byte, maxURLs int) (*Result, error) {
	typ, locs, err := Entries(content)
	if err != nil {
		return nil, err
	}
	if maxURLs < 0 {
		maxURLs = 0
	}

	n := min(len(locs), maxURLs)
	urls := make([]string, n)
	copy(urls, locs[:n])

	return &Result{
		Success:      true,
		URLs:         urls,
		Count:        n,
		RequestedMax: maxURLs,
		Type:         typ,
	}, nil
}

func parseDocument(content []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	// Text ahead of the first element is linked after doc, not under it.
	roots := 0
	for _, first := range []*xmlquery.Node{doc.FirstChild, doc.NextSibling} {
		for n := first; n != nil; n = n.NextSibling {
			switch n.Type {
			case xmlquery.ElementNode:
				roots++
			case xmlquery.TextNode, xmlquery.CharDataNode:
				if strings.TrimSpace(n.Data) != "" {
					return nil, &ParseError{Err: errors.New("text outside document element")}
				}
			}
		}
	}
	switch {
	case roots == 0:
		return nil, &ParseError{Err: errors.New("no element found")}
	case roots > 1:
		return nil, &ParseError{Err: errors.New("junk after document element")}
	}
	return doc, nil
}

func locations(nodes []*xmlquery.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}
