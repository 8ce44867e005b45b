package fetch

import (
	"math"
	"slices"
	"sync"
	"time"
)

// Outcome classifies one finished fetch attempt.
type Outcome int

const (
	// OutcomeOK is any completed exchange, whatever its status code.
	OutcomeOK Outcome = iota
	OutcomeFailed
	OutcomeTimeout
)

type sample struct {
	at      time.Time
	host    string
	ms      int64
	outcome Outcome
}

// StatsSnapshot aggregates the upstream fetches seen inside the window.
// Failures includes Timeouts.
type StatsSnapshot struct {
	Count    int            `json:"count"`
	Failures int            `json:"failures"`
	Timeouts int            `json:"timeouts"`
	MinMs    int64          `json:"min_ms"`
	MaxMs    int64          `json:"max_ms"`
	AvgMs    float64        `json:"avg_ms"`
	P50Ms    float64        `json:"p50_ms"`
	P95Ms    float64        `json:"p95_ms"`
	P99Ms    float64        `json:"p99_ms"`
	Hosts    map[string]int `json:"hosts,omitempty"`
}

// LatencyStats keeps upstream fetch latencies for a rolling window.
// Samples are appended in time order.
type LatencyStats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

// NewLatencyStats creates stats over window, one hour when window is not positive.
func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one fetch against host.
func (s *LatencyStats) Record(host string, d time.Duration, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLocked(now)
	s.samples = append(s.samples, sample{
		at:      now,
		host:    host,
		ms:      max(d.Milliseconds(), 0),
		outcome: outcome,
	})
}

// Snapshot aggregates the samples still inside the window.
func (s *LatencyStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(s.now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	snap := StatsSnapshot{
		Count: len(s.samples),
		Hosts: make(map[string]int),
	}
	latencies := make([]int64, len(s.samples))
	var total int64
	for i, sm := range s.samples {
		latencies[i] = sm.ms
		total += sm.ms
		switch sm.outcome {
		case OutcomeTimeout:
			snap.Timeouts++
			snap.Failures++
		case OutcomeFailed:
			snap.Failures++
		}
		if sm.host != "" {
			snap.Hosts[sm.host]++
		}
	}
	slices.Sort(latencies)

	snap.MinMs = latencies[0]
	snap.MaxMs = latencies[len(latencies)-1]
	snap.AvgMs = float64(total) / float64(len(latencies))
	snap.P50Ms = percentile(latencies, 50)
	snap.P95Ms = percentile(latencies, 95)
	snap.P99Ms = percentile(latencies, 99)
	return snap
}

// expireLocked drops the leading samples older than the window.
func (s *LatencyStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i, _ := slices.BinarySearchFunc(s.samples, cutoff, func(sm sample, t time.Time) int {
		return sm.at.Compare(t)
	})
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// percentile interpolates between the closest ranks of an ascending slice.
func percentile(asc []int64, p float64) float64 {
	switch {
	case len(asc) == 0:
		return 0
	case p <= 0:
		return float64(asc[0])
	case p >= 100:
		return float64(asc[len(asc)-1])
	}

	whole, frac := math.Modf(float64(len(asc)-1) * p / 100)
	lo := asc[int(whole)]
	if frac == 0 {
		return float64(lo)
	}
	return float64(lo) + float64(asc[int(whole)+1]-lo)*frac
}
