package match

import (
	"context"
	"fmt"

	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/storage"
)

// Matcher answers queries against a snapshot of a store taken when it was
// created. It is safe for concurrent use.
type Matcher struct {
	finder   *Finder
	snapshot []*core.Swatch
}

// NewMatcher loads every swatch from repo. It returns ErrNoCatalog when the
// store has never been synchronized.
func NewMatcher(ctx context.Context, repo storage.SwatchRepository, opts ...Option) (*Matcher, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	initialized, err := repo.Initialized(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking catalog store: %w", err)
	}
	if !initialized {
		return nil, ErrNoCatalog
	}

	snapshot, err := repo.ScanSwatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	m := &Matcher{
		finder:   NewFinder(opts...),
		snapshot: snapshot,
	}
	m.finder.logger.Debug("catalog snapshot loaded", "swatches", len(snapshot))
	return m, nil
}

// Size returns the number of swatches in the snapshot.
func (m *Matcher) Size() int {
	return len(m.snapshot)
}

// Swatches returns a copy of the snapshot in ascending id order.
func (m *Matcher) Swatches() []*core.Swatch {
	return append([]*core.Swatch(nil), m.snapshot...)
}

// Find ranks the snapshot against queryHex. It returns ErrEmptyCatalog when
// the snapshot is empty and ErrNoMatches when exclusions leave nothing.
// Input errors take precedence over both.
func (m *Matcher) Find(queryHex string, opts ...QueryOption) ([]Match, error) {
	matches, err := m.finder.FindClosest(m.snapshot, queryHex, opts...)
	if err != nil {
		return nil, err
	}
	if len(m.snapshot) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(matches) == 0 {
		return nil, ErrNoMatches
	}
	return matches, nil
}
