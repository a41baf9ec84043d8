// Package search implements debounced search-as-you-type over the remote
// product API: keystrokes are coalesced, short inputs are suppressed, and
// stale in-flight results are discarded so the newest query always wins.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
)

// Defaults matching the storefront UI behavior.
const (
	DefaultDebounce   = 500 * time.Millisecond
	DefaultMinChars   = 2
	DefaultMaxResults = 10
)

// ProductAPI is the query surface of the catalog client.
type ProductAPI interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

// State is one rendered snapshot of the search box: in-flight, empty, or a
// bounded result list.
type State struct {
	Query   string
	Loading bool
	Results []domain.Product
	Err     error
}

// Empty reports whether a finished query matched nothing.
func (s State) Empty() bool {
	return !s.Loading && s.Err == nil && s.Query != "" && len(s.Results) == 0
}

// Searcher debounces queries against a ProductAPI and emits State snapshots
// on its updates channel. Safe for use from one input goroutine.
type Searcher struct {
	api        ProductAPI
	debounce   time.Duration
	minChars   int
	maxResults int

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	cancel  context.CancelFunc
	updates chan State
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithDebounce overrides the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) { s.debounce = d }
}

// WithMinChars overrides the minimum query length.
func WithMinChars(n int) Option {
	return func(s *Searcher) { s.minChars = n }
}

// WithMaxResults overrides the result list bound.
func WithMaxResults(n int) Option {
	return func(s *Searcher) { s.maxResults = n }
}

// New creates a Searcher.
func New(api ProductAPI, opts ...Option) *Searcher {
	s := &Searcher{
		api:        api,
		debounce:   DefaultDebounce,
		minChars:   DefaultMinChars,
		maxResults: DefaultMaxResults,
		updates:    make(chan State, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Updates returns the channel of state snapshots.
func (s *Searcher) Updates() <-chan State {
	return s.updates
}

// SetQuery registers a keystroke. The query only fires after the debounce
// delay passes without another call; anything in flight for an older query
// is cancelled.
func (s *Searcher) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Every keystroke invalidates whatever was pending or in flight.
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	trimmed := strings.TrimSpace(query)
	if len(trimmed) < s.minChars {
		s.emit(State{Query: trimmed})
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(gen, trimmed)
	})
}

// Select clears the query and returns the detail route for the chosen
// product.
func (s *Searcher) Select(p domain.Product) string {
	s.SetQuery("")
	return p.DetailRoute()
}

// Close cancels any pending or in-flight query.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire runs the query for one debounced keystroke generation.
func (s *Searcher) fire(gen uint64, query string) {
	s.mu.Lock()
	if gen != s.gen {
		// A newer keystroke arrived between timer fire and lock.
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.emit(State{Query: query, Loading: true})
	s.mu.Unlock()

	results, err := s.api.Search(ctx, query, s.maxResults)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// Last query wins: a newer one was issued while this was in flight.
		return
	}
	s.cancel = nil
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	s.emit(State{Query: query, Results: results, Err: err})
}

// emit delivers a snapshot without ever blocking the input path; when the
// consumer lags, the oldest snapshot is dropped.
func (s *Searcher) emit(st State) {
	for {
		select {
		case s.updates <- st:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
