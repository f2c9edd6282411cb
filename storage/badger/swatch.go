package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/storage"
)

// SwatchRepository implements storage.SwatchRepository for BadgerDB.
type SwatchRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.SwatchRepository = (*SwatchRepository)(nil)

// NewSwatchRepository creates a new SwatchRepository.
func NewSwatchRepository(backend *Backend) *SwatchRepository {
	return &SwatchRepository{
		backend: backend,
		logger:  slog.Default(),
	}
}

// Close is a no-op; the backend is owned by the caller.
func (r *SwatchRepository) Close() error {
	return nil
}

// UpsertSwatches stores swatches in a single transaction.
func (r *SwatchRepository) UpsertSwatches(ctx context.Context, swatches ...*core.Swatch) (int, error) {
	created := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, swatch := range swatches {
			key := makeSwatchKey(swatch.Id)

			_, err := tx.Get(key)
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
				created++
				r.logger.Debug("swatch added", "id", swatch.Id)
			case err != nil:
				return err
			default:
				r.logger.Debug("swatch updated", "id", swatch.Id)
			}

			if err := tx.Set(key, storage.MarshalSwatch(swatch)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetSwatch retrieves a single swatch by ID.
func (r *SwatchRepository) GetSwatch(ctx context.Context, id core.ID) (*core.Swatch, error) {
	var result *core.Swatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSwatchKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalSwatch(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// ScanSwatches returns every swatch in ascending id order.
func (r *SwatchRepository) ScanSwatches(ctx context.Context) ([]*core.Swatch, error) {
	var results []*core.Swatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(swatchPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var swatch *core.Swatch
			err := iter.Item().Value(func(val []byte) error {
				var err error
				swatch, err = storage.UnmarshalSwatch(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, swatch)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CountSwatches counts swatch keys without reading values.
func (r *SwatchRepository) CountSwatches(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(swatchPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// RebuildSchema drops every key, checkpoints included, and marks the empty
// store as initialized.
func (r *SwatchRepository) RebuildSchema(ctx context.Context) error {
	if err := r.backend.DropAll(); err != nil {
		return err
	}
	r.logger.Info("catalog storage rebuilt")
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(metaInitializedKey), []byte{1}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Initialized reports whether RebuildSchema has run on this database.
func (r *SwatchRepository) Initialized(ctx context.Context) (bool, error) {
	initialized := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(metaInitializedKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		initialized = true
		return nil
	}, false)
	return initialized, err
}
