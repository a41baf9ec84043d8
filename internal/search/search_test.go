package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain"
)

// fakeAPI records queries and serves canned results, optionally blocking
// until released so in-flight cancellation can be exercised.
type fakeAPI struct {
	mu      sync.Mutex
	queries []string
	results map[string][]domain.Product
	err     error

	calls   int32
	block   chan struct{}
	started chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{results: map[string][]domain.Product{}}
}

func (a *fakeAPI) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	atomic.AddInt32(&a.calls, 1)
	a.mu.Lock()
	a.queries = append(a.queries, query)
	res := a.results[query]
	a.mu.Unlock()

	if a.started != nil {
		a.started <- query
	}
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (a *fakeAPI) seenQueries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.queries...)
}

func waitForState(t *testing.T, updates <-chan State, match func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-updates:
			if match(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func TestSearcher_DebouncesKeystrokes(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.results["mug"] = []domain.Product{{ID: "p1", Name: "mug"}}

	s := New(api, WithDebounce(30*time.Millisecond))
	defer s.Close()

	// Three quick keystrokes; only the last survives the debounce window.
	s.SetQuery("m")
	s.SetQuery("mu")
	s.SetQuery("mug")

	st := waitForState(t, s.Updates(), func(st State) bool {
		return !st.Loading && st.Query == "mug"
	})
	if len(st.Results) != 1 || st.Results[0].Name != "mug" {
		t.Errorf("results = %+v", st.Results)
	}

	if got := atomic.LoadInt32(&api.calls); got != 1 {
		t.Errorf("api calls = %d, want 1 (keystrokes coalesced)", got)
	}
	if queries := api.seenQueries(); len(queries) != 1 || queries[0] != "mug" {
		t.Errorf("queries = %v, want [mug]", queries)
	}
}

func TestSearcher_ShortQuerySuppressed(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	s := New(api, WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.SetQuery("m")

	st := waitForState(t, s.Updates(), func(State) bool { return true })
	if st.Loading || len(st.Results) != 0 {
		t.Errorf("short query produced non-cleared state: %+v", st)
	}

	// Give a would-be debounce timer time to fire, then confirm it never did.
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&api.calls); got != 0 {
		t.Errorf("api calls = %d, want 0 for sub-minimum query", got)
	}
}

func TestSearcher_WhitespaceOnlyQuerySuppressed(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	s := New(api, WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.SetQuery("   ")

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&api.calls); got != 0 {
		t.Errorf("api calls = %d, want 0", got)
	}
}

func TestSearcher_LastQueryWins(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.results["mug"] = []domain.Product{{ID: "p1", Name: "mug"}}
	api.results["pen"] = []domain.Product{{ID: "p2", Name: "pen"}}
	api.block = make(chan struct{})
	api.started = make(chan string, 2)

	s := New(api, WithDebounce(5*time.Millisecond))
	defer s.Close()

	// First query goes in flight and stalls.
	s.SetQuery("mug")
	<-api.started

	// Second query supersedes it while it is still blocked.
	s.SetQuery("pen")
	<-api.started
	close(api.block)

	st := waitForState(t, s.Updates(), func(st State) bool {
		return !st.Loading && len(st.Results) > 0
	})
	if st.Query != "pen" || st.Results[0].Name != "pen" {
		t.Errorf("stale query result surfaced: %+v", st)
	}

	// The superseded result must never arrive after the winner.
	select {
	case late := <-s.Updates():
		if !late.Loading && late.Query == "mug" {
			t.Errorf("stale snapshot emitted: %+v", late)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSearcher_EmptyStateAfterNoMatch(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	s := New(api, WithDebounce(5*time.Millisecond))
	defer s.Close()

	s.SetQuery("zzqx")

	st := waitForState(t, s.Updates(), func(st State) bool {
		return !st.Loading && st.Query == "zzqx"
	})
	if !st.Empty() {
		t.Errorf("state not empty: %+v", st)
	}
}

func TestSearcher_APIErrorSurfaces(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.err = errors.New("upstream 500")
	s := New(api, WithDebounce(5*time.Millisecond))
	defer s.Close()

	s.SetQuery("mug")

	st := waitForState(t, s.Updates(), func(st State) bool {
		return !st.Loading && st.Query == "mug"
	})
	if st.Err == nil {
		t.Error("api error not surfaced in state")
	}
	if st.Empty() {
		t.Error("error state misreported as empty")
	}
}

func TestSearcher_ResultsCapped(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	many := make([]domain.Product, 25)
	for i := range many {
		many[i] = domain.Product{ID: "p", Name: "mug"}
	}
	api.results["mug"] = many

	s := New(api, WithDebounce(5*time.Millisecond), WithMaxResults(10))
	defer s.Close()

	s.SetQuery("mug")

	st := waitForState(t, s.Updates(), func(st State) bool {
		return !st.Loading && st.Query == "mug"
	})
	if len(st.Results) != 10 {
		t.Errorf("results = %d, want capped at 10", len(st.Results))
	}
}

func TestSearcher_SelectClearsQuery(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	s := New(api, WithDebounce(5*time.Millisecond))
	defer s.Close()

	p := domain.Product{ID: "p1", Name: "Mug", Slug: "mug", Category: "kitchen"}
	route := s.Select(p)
	if route != "/products/kitchen/mug" {
		t.Errorf("route = %q", route)
	}

	st := waitForState(t, s.Updates(), func(State) bool { return true })
	if st.Query != "" || len(st.Results) != 0 {
		t.Errorf("query not cleared on select: %+v", st)
	}
}
