package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mkoistinen/filamentcolors/core"
)

// ParseIDs parses swatch ids given as separate values, comma separated
// lists or both. Empty items are skipped and anything that is not an
// integer fails with ErrInvalidInput. Zero and negative ids are accepted
// but dropped, since no catalog swatch carries one.
func ParseIDs(values ...string) ([]core.ID, error) {
	var ids []core.ID
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			n, err := strconv.ParseInt(item, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: excluded swatch ids must be integers, got %q", ErrInvalidInput, item)
			}
			if n > 0 {
				ids = append(ids, core.ID(n))
			}
		}
	}
	return ids, nil
}
