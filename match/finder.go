package match

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/core"
)

// Match is one ranked result.
type Match struct {
	Swatch   *core.Swatch
	Distance float64
}

// query holds the parameters of one FindClosest call.
type query struct {
	topN     int
	excluded map[core.ID]struct{}
	metric   colorspace.Metric
}

// QueryOption sets a FindClosest parameter.
type QueryOption func(*query)

// WithTopN sets how many matches to return. Default is 1.
func WithTopN(n int) QueryOption {
	return func(q *query) {
		q.topN = n
	}
}

// WithExcluded removes the given swatch ids from consideration.
func WithExcluded(ids ...core.ID) QueryOption {
	return func(q *query) {
		for _, id := range ids {
			q.excluded[id] = struct{}{}
		}
	}
}

// WithMetric selects the distance metric. Default is colorspace.DefaultMetric.
func WithMetric(m colorspace.Metric) QueryOption {
	return func(q *query) {
		q.metric = m
	}
}

// Finder ranks swatches against query colors.
type Finder struct {
	converter *colorspace.Converter
	logger    *slog.Logger
}

// Option configures a Finder or Matcher.
type Option func(*Finder)

// WithConverter shares a color converter (and its cache).
func WithConverter(conv *colorspace.Converter) Option {
	return func(f *Finder) {
		if conv != nil {
			f.converter = conv
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// NewFinder creates a Finder with its own converter unless one is given.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{
		converter: colorspace.NewConverter(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindClosest returns up to top-N swatches nearest to queryHex, nearest
// first. Fewer are returned when fewer are eligible. records is not
// modified. A malformed queryHex fails with an error matching both
// ErrInvalidInput and colorspace.ErrInvalidHexColor.
func (f *Finder) FindClosest(records []*core.Swatch, queryHex string, opts ...QueryOption) ([]Match, error) {
	q := query{
		topN:     1,
		excluded: make(map[core.ID]struct{}),
		metric:   colorspace.DefaultMetric,
	}
	for _, opt := range opts {
		opt(&q)
	}

	if q.topN < 1 {
		return nil, fmt.Errorf("%w: top-N must be at least 1, got %d", ErrInvalidInput, q.topN)
	}
	distance, err := q.metric.Func()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	target, err := f.converter.ToLab(queryHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	matches := make([]Match, 0, len(records))
	for _, sw := range records {
		if _, skip := q.excluded[sw.Id]; skip {
			continue
		}
		matches = append(matches, Match{
			Swatch:   sw,
			Distance: distance(target, sw.Lab()),
		})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	f.logger.Debug("ranked swatches",
		"query", queryHex,
		"metric", q.metric,
		"eligible", len(matches),
		"excluded", len(records)-len(matches))

	if len(matches) > q.topN {
		matches = matches[:q.topN]
	}
	return matches, nil
}
