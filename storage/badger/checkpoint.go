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

package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/storage"
)

// CheckpointRepository stores synchronization cursors next to the catalog.
// Cursors live under their own key prefix, so swatch scans and counts never
// see them, and RebuildSchema drops them together with the swatches.
type CheckpointRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

func NewCheckpointRepository(backend *Backend) *CheckpointRepository {
	return &CheckpointRepository{
		backend: backend,
		logger:  slog.Default(),
	}
}

// SaveCheckpoint records the page cursor of a sync run, stamping UpdatedAt.
func (r *CheckpointRepository) SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error {
	if err := storage.ValidateCheckpoint(cp); err != nil {
		return err
	}
	cp.UpdatedAt = time.Now().UTC()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey(cp.Name), storage.MarshalCheckpoint(cp)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	r.logger.Debug("sync cursor saved", "name", cp.Name, "page", cp.LastPage, "complete", cp.Complete)
	return nil
}

// LoadCheckpoint returns the cursor saved under name, or nil, nil when the
// catalog has never been synchronized under that name.
func (r *CheckpointRepository) LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error) {
	var cp *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			cp, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)
	if err != nil || cp == nil {
		return nil, err
	}

	cp.UpdatedAt = cp.UpdatedAt.UTC()
	r.logger.Debug("sync cursor loaded", "name", name, "page", cp.LastPage, "complete", cp.Complete)
	return cp, nil
}
