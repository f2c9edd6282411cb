package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results(ids ...core.ID) []match.Match {
	out := make([]match.Match, len(ids))
	for i, id := range ids {
		out[i] = match.Match{Swatch: &core.Swatch{Id: id, HexColor: "FE0000"}}
	}
	return out
}

func TestRenderer_SingleMatch(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer("https://filamentcolors.xyz/")

	require.NoError(t, r.Matches(&buf, "#FF0000", colorspace.MetricHue, 1, results(2)))
	assert.Equal(t,
		"The visually closest swatch (by hue) to #FF0000 is ID: 2 (https://filamentcolors.xyz/swatch/2/) color: #FE0000.\n",
		buf.String())
}

func TestRenderer_TopN(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer("https://filamentcolors.xyz")

	ids := []core.ID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.NoError(t, r.Matches(&buf, "abcdef", colorspace.MetricAbsolute, 10, results(ids...)))

	out := buf.String()
	assert.Contains(t, out, "The top-10 visually closest swatches (by absolute) to #abcdef are:\n")
	assert.Contains(t, out, "\n   1. ID: 1 (https://filamentcolors.xyz/swatch/1/) color: #FE0000.\n")
	assert.Contains(t, out, "\n  10. ID: 10 (https://filamentcolors.xyz/swatch/10/) color: #FE0000.\n")
}

func TestRenderer_TopNFewerResults(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer("https://filamentcolors.xyz")

	require.NoError(t, r.Matches(&buf, "FF0000", colorspace.MetricHue, 3, results(7)))
	assert.Equal(t,
		"The top-3 visually closest swatches (by hue) to #FF0000 are:\n  1. ID: 7 (https://filamentcolors.xyz/swatch/7/) color: #FE0000.\n",
		buf.String())
}

func TestRenderer_Messages(t *testing.T) {
	r := NewRenderer("https://filamentcolors.xyz")

	var buf bytes.Buffer
	require.NoError(t, r.CatalogSize(&buf, 42))
	assert.Equal(t, "There are currently 42 swatches available.\n", buf.String())

	buf.Reset()
	require.NoError(t, r.NoCatalog(&buf))
	assert.Equal(t, "There is no local database yet.\nNo swatches were found.\n", buf.String())

	buf.Reset()
	require.NoError(t, r.EmptyCatalog(&buf))
	assert.Equal(t, "No swatches were found.\n", buf.String())

	buf.Reset()
	require.NoError(t, r.NoMatches(&buf))
	assert.Equal(t, NoMatchesMessage+"\n", buf.String())
}

func TestRenderer_Synced(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer("https://filamentcolors.xyz")

	require.NoError(t, r.Synced(&buf, SyncSummary{Pages: 3, Created: 5, Updated: 1, Rebuilt: true, Total: 6}))
	assert.Equal(t,
		"Synchronized 3 pages: 5 added, 1 updated, store rebuilt.\nThere are now 6 swatches available.\n",
		buf.String())

	buf.Reset()
	require.NoError(t, r.Synced(&buf, SyncSummary{Pages: 1, Total: 0}))
	assert.Contains(t, buf.String(), "Synchronized 1 page: 0 added, 0 updated.\n")
}

func TestRenderer_Status(t *testing.T) {
	r := NewRenderer("https://filamentcolors.xyz")

	var buf bytes.Buffer
	require.NoError(t, r.Status(&buf, Status{Count: 0, Driver: "badger", Path: "/tmp/x", Fingerprint: "abc"}))
	assert.Contains(t, buf.String(), "Swatches:    0\n")
	assert.Contains(t, buf.String(), "Store:       badger (/tmp/x)\n")
	assert.Contains(t, buf.String(), "Last sync:   never\n")

	buf.Reset()
	cp := &core.Checkpoint{Name: "catalog-sync", LastPage: 4, Complete: false, UpdatedAt: time.Now()}
	require.NoError(t, r.Status(&buf, Status{Count: 9, Driver: "sqlite", Path: "/tmp/y", Fingerprint: "def", Checkpoint: cp}))
	assert.Contains(t, buf.String(), "Last sync:   page 4, incomplete, ")
}
