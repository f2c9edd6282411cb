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

// Package sqlite implements the storage interfaces on an embedded SQLite
// database. The schema is managed by golang-migrate from migrations
// embedded in the binary.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const initializedKey = "initialized"

// Store is a SQLite backed storage.Store.
type Store struct {
	db       *sql.DB
	migrator *migrate.Migrate
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check
var _ storage.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path and applies
// pending migrations. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	migrator, err := newMigrator(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	return &Store{
		db:       db,
		migrator: migrator,
		logger:   slog.Default().With("component", "sqlite"),
	}, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migrate driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not create source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// runInTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) runInTx(ctx context.Context, fn func(*sql.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrStorageClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) UpsertSwatches(ctx context.Context, swatches ...*core.Swatch) (int, error) {
	created := 0
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		for _, sw := range swatches {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM swatch WHERE id = ?)`, int64(sw.Id)).Scan(&exists); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO swatch (id, hex_color, lab_l, lab_a, lab_b)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					hex_color = excluded.hex_color,
					lab_l = excluded.lab_l,
					lab_a = excluded.lab_a,
					lab_b = excluded.lab_b`,
				int64(sw.Id), sw.HexColor, sw.LabL, sw.LabA, sw.LabB)
			if err != nil {
				return fmt.Errorf("upsert swatch %d: %w", sw.Id, err)
			}
			if exists {
				s.logger.Debug("swatch updated", "id", sw.Id, "hex", sw.HexColor)
			} else {
				created++
				s.logger.Debug("swatch added", "id", sw.Id, "hex", sw.HexColor)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *Store) GetSwatch(ctx context.Context, id core.ID) (*core.Swatch, error) {
	var sw *core.Swatch
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, hex_color, lab_l, lab_a, lab_b FROM swatch WHERE id = ?`, int64(id))
		var err error
		sw, err = scanSwatch(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: swatch %d", storage.ErrNotFound, id)
		}
		return err
	})
	return sw, err
}

// ScanSwatches returns every swatch ordered by id.
func (s *Store) ScanSwatches(ctx context.Context) ([]*core.Swatch, error) {
	var result []*core.Swatch
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, hex_color, lab_l, lab_a, lab_b FROM swatch ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			sw, err := scanSwatch(rows)
			if err != nil {
				return err
			}
			result = append(result, sw)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CountSwatches(ctx context.Context) (int, error) {
	var count int
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM swatch`).Scan(&count)
	})
	return count, err
}

// RebuildSchema migrates all the way down and back up, then marks the
// catalog initialized.
func (s *Store) RebuildSchema(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return storage.ErrStorageClosed
	}

	if err := s.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not drop schema: %w", err)
	}
	if err := s.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not create schema: %w", err)
	}

	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO catalog_meta (key, value) VALUES (?, ?)`,
			initializedKey, time.Now().UTC().Format(time.RFC3339))
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("catalog storage rebuilt")
	return nil
}

func (s *Store) Initialized(ctx context.Context) (bool, error) {
	var initialized bool
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM catalog_meta WHERE key = ?)`, initializedKey).Scan(&initialized)
	})
	return initialized, err
}

func (s *Store) SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error {
	if err := storage.ValidateCheckpoint(cp); err != nil {
		return err
	}
	cp.UpdatedAt = time.Now().UTC()
	return s.runInTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sync_checkpoint (name, last_page, complete, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				last_page = excluded.last_page,
				complete = excluded.complete,
				updated_at = excluded.updated_at`,
			cp.Name, cp.LastPage, cp.Complete, cp.UpdatedAt.UnixMicro())
		return err
	})
}

func (s *Store) LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error) {
	var cp *core.Checkpoint
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		var (
			loaded core.Checkpoint
			micros int64
		)
		err := tx.QueryRowContext(ctx,
			`SELECT name, last_page, complete, updated_at FROM sync_checkpoint WHERE name = ?`, name).
			Scan(&loaded.Name, &loaded.LastPage, &loaded.Complete, &micros)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		loaded.UpdatedAt = time.UnixMicro(micros).UTC()
		cp = &loaded
		return nil
	})
	return cp, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwatch(row rowScanner) (*core.Swatch, error) {
	var (
		sw core.Swatch
		id int64
	)
	if err := row.Scan(&id, &sw.HexColor, &sw.LabL, &sw.LabA, &sw.LabB); err != nil {
		return nil, err
	}
	sw.Id = core.ID(id)
	return &sw, nil
}
