// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalogsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/storage"
)

// PageFetcher retrieves one page of the remote catalog. Pages are numbered
// from 1.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (*core.Page, error)
}

// Result summarizes a synchronization run.
type Result struct {
	StartPage int  // first page fetched
	Pages     int  // pages committed
	Created   int  // swatches that did not exist before
	Updated   int  // swatches overwritten
	Rebuilt   bool // the store was dropped and recreated
	Total     int  // swatches in the store when the run ended
}

// Synchronizer mirrors the remote catalog into a SwatchRepository.
// A Synchronizer runs one Sync at a time.
type Synchronizer struct {
	fetcher     PageFetcher
	repo        storage.SwatchRepository
	checkpoints storage.CheckpointRepository
	converter   *colorspace.Converter
	pool        *ants.Pool
	config      *Config
	progress    io.Writer
	logger      *slog.Logger

	mu sync.Mutex
}

// Option configures a Synchronizer.
type Option func(*Synchronizer) error

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Synchronizer) error {
		if config == nil {
			return nil
		}
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config
		return nil
	}
}

// WithCheckpoints records progress after every page, enabling Config.Resume.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(s *Synchronizer) error {
		s.checkpoints = repo
		return nil
	}
}

// WithConverter shares a color converter (and its cache) with other components.
func WithConverter(conv *colorspace.Converter) Option {
	return func(s *Synchronizer) error {
		if conv != nil {
			s.converter = conv
		}
		return nil
	}
}

// WithProgress writes a progress line to w while syncing.
func WithProgress(w io.Writer) Option {
	return func(s *Synchronizer) error {
		s.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSynchronizer creates a synchronizer reading from fetcher and writing to repo.
// Call Release when done to stop the conversion workers.
func NewSynchronizer(fetcher PageFetcher, repo storage.SwatchRepository, opts ...Option) (*Synchronizer, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Synchronizer{
		fetcher:   fetcher,
		repo:      repo,
		converter: colorspace.NewConverter(),
		config:    DefaultConfig(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(s.config.PoolSize)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// Release stops the worker pool. The Synchronizer must not be used afterwards.
func (s *Synchronizer) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Sync fetches every page and upserts its swatches. With rebuild set the
// store is recreated after the first page arrives and before it is written.
// On a fetch failure the returned Result describes the pages committed so
// far and the error wraps ErrFetchFailed.
func (s *Synchronizer) Sync(ctx context.Context, rebuild bool) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needsRebuild := rebuild
	if !needsRebuild {
		initialized, err := s.repo.Initialized(ctx)
		if err != nil {
			return nil, fmt.Errorf("checking catalog store: %w", err)
		}
		if !initialized {
			s.logger.Info("no local catalog yet, it will be created")
			needsRebuild = true
		}
	}

	startPage := 1
	if !needsRebuild && s.config.Resume {
		page, err := s.resumePage(ctx)
		if err != nil {
			return nil, err
		}
		startPage = page
	}

	result := &Result{StartPage: startPage}
	tracker := NewProgressTracker(s.progress, 0, s.config.ReportInterval)
	if s.progress != nil {
		tracker.Start()
		defer tracker.Finish()
	}

	for page := startPage; ; page++ {
		fetched, err := s.fetchPage(ctx, page)
		if err != nil {
			return s.finish(ctx, result, err)
		}

		// Only the first page of a run may rebuild.
		if needsRebuild {
			if err := s.repo.RebuildSchema(ctx); err != nil {
				return s.finish(ctx, result, fmt.Errorf("rebuilding catalog store: %w", err))
			}
			needsRebuild = false
			result.Rebuilt = true
		}
		if fetched.Count > 0 {
			tracker.SetTotal(fetched.Count)
		}

		swatches, err := s.convertPage(ctx, fetched.Results)
		if err != nil {
			return s.finish(ctx, result, fmt.Errorf("page %d: %w", page, err))
		}

		created, err := s.repo.UpsertSwatches(ctx, swatches...)
		if err != nil {
			return s.finish(ctx, result, fmt.Errorf("page %d: storing swatches: %w", page, err))
		}
		result.Pages++
		result.Created += created
		result.Updated += len(swatches) - created
		tracker.PageDone(page, len(swatches))

		if err := s.saveCheckpoint(ctx, page, !fetched.Next); err != nil {
			return s.finish(ctx, result, err)
		}

		s.logger.Info("page synchronized",
			"page", page,
			"swatches", len(swatches),
			"created", created,
			"updated", len(swatches)-created)

		if !fetched.Next {
			break
		}
	}

	return s.finish(ctx, result, nil)
}

// finish fills in the final record count. The count is best effort when
// the run already failed.
func (s *Synchronizer) finish(ctx context.Context, result *Result, runErr error) (*Result, error) {
	total, err := s.repo.CountSwatches(ctx)
	if err == nil {
		result.Total = total
	} else if runErr == nil {
		return result, fmt.Errorf("counting swatches: %w", err)
	}
	if runErr != nil {
		s.logger.Error("catalog sync aborted",
			"pages", result.Pages, "total", result.Total, "error", runErr)
		return result, runErr
	}
	s.logger.Info("catalog sync complete",
		"pages", result.Pages,
		"created", result.Created,
		"updated", result.Updated,
		"total", result.Total)
	return result, nil
}

// resumePage returns the page after the last committed one of an
// incomplete run, or 1.
func (s *Synchronizer) resumePage(ctx context.Context) (int, error) {
	if s.checkpoints == nil {
		return 1, nil
	}
	cp, err := s.checkpoints.LoadCheckpoint(ctx, s.config.CheckpointName)
	if err != nil {
		return 0, fmt.Errorf("loading checkpoint: %w", err)
	}
	if cp == nil || cp.Complete || cp.LastPage < 1 {
		return 1, nil
	}
	s.logger.Info("resuming catalog sync", "after_page", cp.LastPage, "checkpoint_time", cp.UpdatedAt)
	return cp.LastPage + 1, nil
}

func (s *Synchronizer) saveCheckpoint(ctx context.Context, page int, complete bool) error {
	if s.checkpoints == nil {
		return nil
	}
	err := s.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		Name:     s.config.CheckpointName,
		LastPage: page,
		Complete: complete,
	})
	if err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return nil
}

func (s *Synchronizer) fetchPage(ctx context.Context, page int) (*core.Page, error) {
	var fetched *core.Page
	err := retryWithBackoff(ctx, s.logger, s.config.MaxRetries, s.config.RetryDelay, s.config.MaxRetryDelay,
		func(attempt int) error {
			p, err := s.fetcher.FetchPage(ctx, page)
			if err != nil {
				return err
			}
			if p == nil {
				return ErrNoPage
			}
			fetched = p
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrFetchFailed, page, err)
	}
	return fetched, nil
}

// convertPage validates every item and computes its Lab color on the pool.
// The returned swatches keep the page order. The first invalid item, in
// page order, fails the whole page.
func (s *Synchronizer) convertPage(ctx context.Context, raws []core.RawSwatch) ([]*core.Swatch, error) {
	if len(raws) == 0 {
		return nil, nil
	}

	swatches := make([]*core.Swatch, len(raws))
	errs := make([]error, len(raws))

	var wg sync.WaitGroup
	for i := range raws {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			raw := &raws[i]
			if err := core.ValidateRawSwatch(raw); err != nil {
				errs[i] = err
				return
			}
			swatches[i], errs[i] = core.NewSwatch(raw.Id, raw.HexColor, s.converter)
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submitting conversion: %w", err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return swatches, ctx.Err()
}
