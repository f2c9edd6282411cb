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

// Package filamentcolors keeps a local copy of the filamentcolors.xyz swatch
// catalog and finds the swatches closest to a given color.
//
// A Database ties a configured store to the components that use it:
//
//	db, err := filamentcolors.OpenDatabase(filamentcolors.WithConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	sync, err := db.NewSynchronizer(nil)
//	...
//	matcher, err := db.NewMatcher(ctx)
package filamentcolors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/mkoistinen/filamentcolors/catalogsync"
	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/config"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/match"
	"github.com/mkoistinen/filamentcolors/remote"
	"github.com/mkoistinen/filamentcolors/report"
	"github.com/mkoistinen/filamentcolors/storage"
	"github.com/mkoistinen/filamentcolors/storage/badger"
	"github.com/mkoistinen/filamentcolors/storage/sqlite"
)

type Database struct {
	store     storage.Store
	config    *config.Config
	converter *colorspace.Converter
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	config    *config.Config
	logger    *slog.Logger
	mustExist bool
}

// WithConfig sets the configuration. Default is config.Default() with the
// store path expanded.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.config = cfg
	}
}

// WithExistingStore makes OpenDatabase fail with storage.ErrStoreNotFound
// instead of creating a store that is not on disk yet. Commands that only
// read the catalog use it.
func WithExistingStore() DatabaseOption {
	return func(o *databaseOptions) {
		o.mustExist = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// OpenDatabase opens the store named by the configuration.
func OpenDatabase(opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.config == nil {
		options.config = config.Default()
		if err := options.config.Expand(); err != nil {
			return nil, err
		}
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if options.mustExist {
		exists, err := StoreExists(options.config.Store)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", storage.ErrStoreNotFound, options.config.Store.Path)
		}
	}

	store, err := openStore(options.config.Store)
	if err != nil {
		return nil, err
	}
	options.logger.Debug("catalog store opened",
		"driver", options.config.Store.Driver, "path", options.config.Store.Path)

	return &Database{
		store:     store,
		config:    options.config,
		converter: colorspace.NewConverter(),
		logger:    options.logger,
	}, nil
}

// StoreExists reports whether the configured store is on disk. An
// in-memory SQLite store never exists beforehand.
func StoreExists(cfg config.StoreConfig) (bool, error) {
	if cfg.Path == ":memory:" {
		return false, nil
	}
	_, err := os.Stat(cfg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking catalog store: %w", err)
	}
	return true, nil
}

func openStore(cfg config.StoreConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverBadger, "":
		store, err := badger.OpenStore(cfg.Path, false)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnsupportedDriver, cfg.Driver)
	}
}

func (db *Database) Close() error {
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing catalog store", "err", err)
		return err
	}
	return nil
}

// Store returns the underlying catalog store.
func (db *Database) Store() storage.Store {
	return db.store
}

// Config returns the configuration the database was opened with.
func (db *Database) Config() *config.Config {
	return db.config
}

// SyncConfig translates the sync section of the configuration.
func (db *Database) SyncConfig() *catalogsync.Config {
	cfg := catalogsync.DefaultConfig()
	cfg.MaxRetries = db.config.Sync.MaxRetries
	cfg.RetryDelay = db.config.Sync.RetryDelay
	cfg.PoolSize = db.config.Sync.PoolSize
	cfg.ReportInterval = db.config.Sync.ReportInterval
	return cfg
}

// NewClient creates a client for the configured catalog service.
func (db *Database) NewClient() (*remote.Client, error) {
	opts := []remote.Option{remote.WithLogger(db.logger)}
	if db.config.Sync.Timeout > 0 {
		opts = append(opts, remote.WithTimeout(db.config.Sync.Timeout))
	}
	return remote.NewClient(db.config.Service.Origin, opts...)
}

// NewSynchronizer creates a synchronizer writing to this database. A nil
// fetcher means the configured catalog service. Options are applied after
// the configured ones.
func (db *Database) NewSynchronizer(fetcher catalogsync.PageFetcher, opts ...catalogsync.Option) (*catalogsync.Synchronizer, error) {
	if fetcher == nil {
		client, err := db.NewClient()
		if err != nil {
			return nil, err
		}
		fetcher = client
	}
	base := []catalogsync.Option{
		catalogsync.WithConfig(db.SyncConfig()),
		catalogsync.WithCheckpoints(db.store),
		catalogsync.WithConverter(db.converter),
		catalogsync.WithLogger(db.logger),
	}
	return catalogsync.NewSynchronizer(fetcher, db.store, append(base, opts...)...)
}

// NewMatcher loads a snapshot of the catalog for matching.
func (db *Database) NewMatcher(ctx context.Context, opts ...match.Option) (*match.Matcher, error) {
	base := []match.Option{
		match.WithConverter(db.converter),
		match.WithLogger(db.logger),
	}
	return match.NewMatcher(ctx, db.store, append(base, opts...)...)
}

// Status describes the stored catalog and the last synchronization.
func (db *Database) Status(ctx context.Context) (*report.Status, error) {
	swatches, err := db.store.ScanSwatches(ctx)
	if err != nil {
		return nil, err
	}
	cp, err := db.store.LoadCheckpoint(ctx, catalogsync.DefaultCheckpointName)
	if err != nil {
		return nil, err
	}
	return &report.Status{
		Count:       len(swatches),
		Driver:      db.config.Store.Driver,
		Path:        db.config.Store.Path,
		Fingerprint: core.Fingerprint(swatches),
		Checkpoint:  cp,
	}, nil
}
