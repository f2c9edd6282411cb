package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mkoistinen/filamentcolors/core"
)

// ErrNoSuchPage is returned for a page past the end of the catalog.
var ErrNoSuchPage = errors.New("no such page")

// MockFetcher serves a fixed, paginated catalog.
type MockFetcher struct {
	// FetchPageFunc is called by FetchPage if set.
	// If nil, pages are served from the configured catalog.
	FetchPageFunc func(ctx context.Context, page int) (*core.Page, error)

	mu       sync.Mutex
	pages    [][]core.RawSwatch
	failures map[int]*failure
	calls    []int
}

type failure struct {
	remaining int
	err       error
}

// NewMockFetcher creates a fetcher whose page N (1-based) holds pages[N-1].
func NewMockFetcher(pages ...[]core.RawSwatch) *MockFetcher {
	return &MockFetcher{
		pages:    pages,
		failures: make(map[int]*failure),
	}
}

// SetPages replaces the served catalog.
func (m *MockFetcher) SetPages(pages ...[]core.RawSwatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = pages
}

// FailPage makes the next times requests for page return err.
// A negative times fails every request.
func (m *MockFetcher) FailPage(page, times int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[page] = &failure{remaining: times, err: err}
}

// FetchPage returns the requested page, or an injected failure.
func (m *MockFetcher) FetchPage(ctx context.Context, page int) (*core.Page, error) {
	m.mu.Lock()
	m.calls = append(m.calls, page)
	fn := m.FetchPageFunc
	if f, ok := m.failures[page]; ok && f.remaining != 0 {
		if f.remaining > 0 {
			f.remaining--
		}
		m.mu.Unlock()
		return nil, f.err
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, page)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 1 || page > len(m.pages) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchPage, page)
	}

	count := 0
	for _, p := range m.pages {
		count += len(p)
	}
	results := make([]core.RawSwatch, len(m.pages[page-1]))
	copy(results, m.pages[page-1])
	return &core.Page{
		Results: results,
		Next:    page < len(m.pages),
		Count:   count,
	}, nil
}

// Calls returns the page numbers requested so far, in order.
func (m *MockFetcher) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

// CallCount returns the number of FetchPage calls.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls and injected failures.
func (m *MockFetcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.failures = make(map[int]*failure)
	m.FetchPageFunc = nil
}
