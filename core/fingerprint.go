package core

import (
	"encoding/hex"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint returns a BLAKE2b-256 digest of a catalog's content.
// The digest depends only on the set of swatches (ids, colors and Lab
// components), not on the order they are given in, so two stores holding
// the same catalog produce the same fingerprint.
func Fingerprint(swatches []*Swatch) string {
	sorted := slices.Clone(swatches)
	slices.SortFunc(sorted, func(a, b *Swatch) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})

	h, _ := blake2b.New(32, nil) // unkeyed, fixed size: cannot fail
	for _, s := range sorted {
		buf := make([]byte, SwatchMUS.Size(*s))
		SwatchMUS.Marshal(*s, buf)
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}
