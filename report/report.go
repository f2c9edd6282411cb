// Package report renders command output for people: match results, sync
// summaries and catalog status.
package report

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/flosch/pongo2"

	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/match"
)

// Fixed messages for the conditions where there is nothing to match.
const (
	NoCatalogMessage    = "There is no local database yet."
	NoSwatchesMessage   = "No swatches were found."
	NoMatchesMessage    = "No swatches remain after the exclusions."
	catalogSizeTemplate = "There are currently %d swatches available."
)

var (
	//go:embed templates/matches.tpl
	matchesSource string
	//go:embed templates/sync.tpl
	syncSource string
	//go:embed templates/status.tpl
	statusSource string

	matchesTpl = pongo2.Must(pongo2.FromString(matchesSource))
	syncTpl    = pongo2.Must(pongo2.FromString(syncSource))
	statusTpl  = pongo2.Must(pongo2.FromString(statusSource))
)

// Renderer writes reports that link swatches on the catalog service.
type Renderer struct {
	origin string
}

// NewRenderer creates a renderer whose swatch links point at origin.
func NewRenderer(origin string) *Renderer {
	return &Renderer{origin: strings.TrimRight(origin, "/")}
}

// matchLine is one rendered result.
type matchLine struct {
	Index string
	ID    string
	URL   string
	Hex   string
}

// Matches writes the ranked results of a query. topN is the requested
// count: a request for one match reads as a sentence, anything else as a
// numbered list.
func (r *Renderer) Matches(w io.Writer, query string, metric colorspace.Metric, topN int, matches []match.Match) error {
	width := len(strconv.Itoa(max(topN, len(matches))))
	lines := make([]matchLine, len(matches))
	for i, m := range matches {
		lines[i] = matchLine{
			Index: fmt.Sprintf("%*d", width, i+1),
			ID:    strconv.FormatUint(uint64(m.Swatch.Id), 10),
			URL:   m.Swatch.URL(r.origin),
			Hex:   m.Swatch.HexColor,
		}
	}

	return matchesTpl.ExecuteWriter(pongo2.Context{
		"single":  topN == 1,
		"metric":  metric.String(),
		"query":   strings.TrimPrefix(query, "#"),
		"top_n":   topN,
		"matches": lines,
	}, w)
}

// CatalogSize writes the number of swatches available for matching.
func (r *Renderer) CatalogSize(w io.Writer, n int) error {
	_, err := fmt.Fprintf(w, catalogSizeTemplate+"\n", n)
	return err
}

// NoCatalog reports that nothing was ever synchronized.
func (r *Renderer) NoCatalog(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", NoCatalogMessage, NoSwatchesMessage)
	return err
}

// EmptyCatalog reports a synchronized but empty catalog.
func (r *Renderer) EmptyCatalog(w io.Writer) error {
	_, err := fmt.Fprintln(w, NoSwatchesMessage)
	return err
}

// NoMatches reports that exclusions removed every candidate.
func (r *Renderer) NoMatches(w io.Writer) error {
	_, err := fmt.Fprintln(w, NoMatchesMessage)
	return err
}

// SyncSummary holds the figures of a finished synchronization.
type SyncSummary struct {
	Pages   int
	Created int
	Updated int
	Rebuilt bool
	Total   int
}

// Synced writes a synchronization summary.
func (r *Renderer) Synced(w io.Writer, s SyncSummary) error {
	return syncTpl.ExecuteWriter(pongo2.Context{
		"pages":   s.Pages,
		"created": s.Created,
		"updated": s.Updated,
		"rebuilt": s.Rebuilt,
		"total":   s.Total,
	}, w)
}

// Status describes the local catalog.
type Status struct {
	Count       int
	Driver      string
	Path        string
	Fingerprint string
	Checkpoint  *core.Checkpoint
}

// Status writes a catalog status report.
func (r *Renderer) Status(w io.Writer, s Status) error {
	ctx := pongo2.Context{
		"count":       s.Count,
		"driver":      s.Driver,
		"path":        s.Path,
		"fingerprint": s.Fingerprint,
	}
	if s.Checkpoint != nil {
		ctx["checkpoint"] = *s.Checkpoint
		ctx["updated"] = s.Checkpoint.UpdatedAt.Local().Format(time.RFC1123)
	}
	return statusTpl.ExecuteWriter(ctx, w)
}
