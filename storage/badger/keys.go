package badger

import (
	"encoding/binary"

	"github.com/mkoistinen/filamentcolors/core"
)

// Key prefixes for different data types
const (
	swatchPrefix       = "swatch:"
	checkpointPrefix   = "chkpt:"
	metaInitializedKey = "meta:initialized"
)

// makeSwatchKey generates a key for a swatch by ID.
// Format: prefix + 8 byte big endian id, so keys sort in id order.
func makeSwatchKey(id core.ID) []byte {
	buf := make([]byte, len(swatchPrefix)+8)
	offset := copy(buf, swatchPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCheckpointKey generates a key for a named checkpoint.
func makeCheckpointKey(name string) []byte {
	return []byte(checkpointPrefix + name)
}
