package storage

import (
	"fmt"

	"github.com/mkoistinen/filamentcolors/core"
)

// ValidateCheckpoint checks a sync cursor before it is saved.
func ValidateCheckpoint(cp *core.Checkpoint) error {
	switch {
	case cp == nil:
		return fmt.Errorf("%w: nil", ErrInvalidCheckpoint)
	case cp.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidCheckpoint)
	case cp.LastPage < 0:
		return fmt.Errorf("%w: page %d", ErrInvalidCheckpoint, cp.LastPage)
	}
	return nil
}
