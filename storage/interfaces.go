package storage

import (
	"context"

	"github.com/mkoistinen/filamentcolors/core"
)

// SwatchRepository is durable storage for catalog swatches keyed by id.
// Implementations must be safe for use by one writer and any number of
// readers.
type SwatchRepository interface {
	// UpsertSwatches stores each swatch, replacing every field of an
	// existing swatch with the same id. Returns how many were newly created.
	UpsertSwatches(ctx context.Context, swatches ...*core.Swatch) (created int, err error)

	// GetSwatch retrieves a single swatch by id.
	// Returns ErrNotFound if the swatch doesn't exist.
	GetSwatch(ctx context.Context, id core.ID) (*core.Swatch, error)

	// ScanSwatches returns every stored swatch in ascending id order.
	ScanSwatches(ctx context.Context) ([]*core.Swatch, error)

	// CountSwatches returns the number of stored swatches.
	CountSwatches(ctx context.Context) (int, error)

	// RebuildSchema destroys all stored data and recreates empty storage.
	// Afterwards Initialized reports true.
	RebuildSchema(ctx context.Context) error

	// Initialized reports whether the store has ever been set up by
	// RebuildSchema. A fresh store reports false.
	Initialized(ctx context.Context) (bool, error)

	// Close releases resources held by the repository.
	Close() error
}

// CheckpointRepository persists synchronization progress.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint, replacing any previous one with
	// the same name. UpdatedAt is set automatically.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the named checkpoint.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error)
}

// Store is a backend providing both repositories.
type Store interface {
	SwatchRepository
	CheckpointRepository
}
