package sitemap

import "fmt"

// ParseError means the upstream answered but the body is not a well-formed
// XML document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Category() string { return "parse" }

// UpstreamStatusError means the upstream was reached but did not answer 200.
type UpstreamStatusError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *UpstreamStatusError) Category() string { return "upstream_status" }

// ProcessingError wraps any other failure while handling a sitemap.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string { return e.Err.Error() }
func (e *ProcessingError) Unwrap() error { return e.Err }
func (e *ProcessingError) Category() string { return "processing" }
