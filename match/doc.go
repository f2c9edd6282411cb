// Package match ranks catalog swatches by color distance to a query color.
//
// Finder is a pure linear scan over a slice of swatches: every eligible
// swatch is measured, the results are sorted stably by distance and the
// first N are returned. Swatches at equal distance keep the order they had
// in the input, which for a store snapshot is ascending id.
//
// Matcher wraps a Finder around a snapshot loaded from a SwatchRepository
// and reports the "nothing to match against" conditions as distinct errors:
// ErrNoCatalog, ErrEmptyCatalog and ErrNoMatches.
package match
