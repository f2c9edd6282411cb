package badger

import "github.com/mkoistinen/filamentcolors/storage"

// Store bundles the repositories of one BadgerDB database.
type Store struct {
	*SwatchRepository
	*CheckpointRepository
	backend *Backend
}

var _ storage.Store = (*Store)(nil)

// OpenStore opens (creating if needed) a BadgerDB catalog at filePath.
func OpenStore(filePath string, inMemory bool) (*Store, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}
	return newStore(backend), nil
}

func newStore(backend *Backend) *Store {
	return &Store{
		SwatchRepository:     NewSwatchRepository(backend),
		CheckpointRepository: NewCheckpointRepository(backend),
		backend:              backend,
	}
}

// Backend returns the underlying backend.
func (s *Store) Backend() *Backend {
	return s.backend
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}
