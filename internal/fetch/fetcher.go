package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Fetcher issues single, non-retried GET requests against upstream hosts.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	stats     *LatencyStats
}

// Response is the raw outcome of a completed fetch. Any status code is a
// completed fetch; interpreting it is up to the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// TransportError means the upstream could not be reached or did not answer
// in time: DNS, connect, TLS and timeout failures all land here.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Category() string {
	return "transport"
}

// Timeout reports whether the failure was the fetch deadline expiring.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ErrBodyTooLarge is returned when the upstream body exceeds the configured cap.
var ErrBodyTooLarge = errors.New("response body too large")

// New creates a Fetcher. stats may be nil.
func New(userAgent string, maxBytes int64, stats *LatencyStats) *Fetcher {
	return &Fetcher{
		client:    &http.Client{},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		stats:     stats,
	}
}

// Fetch performs one GET bounded by timeout. The body is returned as-is
// without looking at the content type.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		te := &TransportError{URL: url, Err: err}
		f.record(req, start, te)
		return nil, te
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		te := &TransportError{URL: url, Err: fmt.Errorf("read body: %w", err)}
		f.record(req, start, te)
		return nil, te
	}
	f.record(req, start, nil)

	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, f.maxBytes)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (f *Fetcher) record(req *http.Request, start time.Time, te *TransportError) {
	if f.stats == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case te != nil && te.Timeout():
		outcome = OutcomeTimeout
	case te != nil:
		outcome = OutcomeFailed
	}
	f.stats.Record(req.URL.Host, time.Since(start), outcome)
}

// Close releases idle upstream connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}
