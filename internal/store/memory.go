package store

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe result exists for an upstream.
	ErrNotFound = errors.New("no probe results for upstream")
)

// ProbeResult is the outcome of one reachability check against an upstream.
type ProbeResult struct {
	Upstream  string    `json:"upstream"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	LatencyMs int64     `json:"latencyMs"`
	CheckedAt time.Time `json:"checkedAt"` // always UTC
}

// ProbeHistory holds a time-ordered list of results for one upstream.
type ProbeHistory struct {
	Results []ProbeResult
}

// MemoryStore is a concurrency-safe in-memory store of probe results.
type MemoryStore struct {
	mu sync.RWMutex

	// key: upstream name, value: history
	data map[string]*ProbeHistory

	// retention configuration
	maxHistory int           // max number of results per upstream
	maxAge     time.Duration // optional max age for results
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ProbeHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a result for its upstream and enforces retention.
func (s *MemoryStore) Save(result ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[result.Upstream]
	if !ok {
		history = &ProbeHistory{}
		s.data[result.Upstream] = history
	}

	history.Results = append(history.Results, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Results) > s.maxHistory {
		over := len(history.Results) - s.maxHistory
		history.Results = history.Results[over:]
	}

	// Enforce retention by age. The newest result is always kept.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Results)-1; i++ {
			if !history.Results[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		history.Results = history.Results[i:]
	}
}

// Latest returns the most recent result for an upstream.
func (s *MemoryStore) Latest(upstream string) (ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[upstream]
	if !ok || len(history.Results) == 0 {
		return ProbeResult{}, ErrNotFound
	}
	return history.Results[len(history.Results)-1], nil
}

// LatestAll returns the most recent result of every upstream, sorted by name.
func (s *MemoryStore) LatestAll() []ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]ProbeResult, 0, len(s.data))
	for _, history := range s.data {
		if len(history.Results) > 0 {
			results = append(results, history.Results[len(history.Results)-1])
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Upstream < results[j].Upstream
	})
	return results
}

// History returns a copy of all retained results for an upstream, oldest first.
func (s *MemoryStore) History(upstream string) ([]ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[upstream]
	if !ok || len(history.Results) == 0 {
		return nil, ErrNotFound
	}

	out := make([]ProbeResult, len(history.Results))
	copy(out, history.Results)
	return out, nil
}
