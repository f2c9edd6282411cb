package colorspace

import (
	"fmt"
	"sync"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		r, g, b uint8
		wantErr bool
	}{
		{name: "lower case", hex: "ff8000", r: 255, g: 128, b: 0},
		{name: "upper case", hex: "FE0000", r: 254, g: 0, b: 0},
		{name: "leading hash", hex: "#00ff00", r: 0, g: 255, b: 0},
		{name: "black", hex: "000000"},
		{name: "empty", hex: "", wantErr: true},
		{name: "too short", hex: "fff", wantErr: true},
		{name: "too long", hex: "ff00000", wantErr: true},
		{name: "non hex digits", hex: "ZZZZZZ", wantErr: true},
		{name: "non hex with hash", hex: "#ZZZZZZ", wantErr: true},
		{name: "double hash", hex: "##ff0000", wantErr: true},
		{name: "go prefix", hex: "0xff00", wantErr: true},
		{name: "embedded space", hex: "ff 000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, err := ParseHex(tt.hex)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidHexColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.r, r)
			assert.Equal(t, tt.g, g)
			assert.Equal(t, tt.b, b)
		})
	}
}

func TestConverter_ToLab_ReferenceColors(t *testing.T) {
	conv := NewConverter()

	white, err := conv.ToLab("ffffff")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, white.L, 0.5)
	assert.InDelta(t, 0.0, white.A, 0.5)
	assert.InDelta(t, 0.0, white.B, 0.5)

	black, err := conv.ToLab("000000")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, black.L, 0.01)
	assert.InDelta(t, 0.0, black.A, 0.01)
	assert.InDelta(t, 0.0, black.B, 0.01)

	red, err := conv.ToLab("ff0000")
	require.NoError(t, err)
	assert.InDelta(t, 53.24, red.L, 1.0)
	assert.InDelta(t, 80.09, red.A, 1.0)
	assert.InDelta(t, 67.20, red.B, 1.0)
}

func TestConverter_ToLab_MatchesGoColorful(t *testing.T) {
	conv := NewConverter()
	for _, hex := range []string{"ff0000", "00ff00", "0000ff", "808080", "c0ffee", "123456", "fe0000", "7f3f1f"} {
		t.Run(hex, func(t *testing.T) {
			lab, err := conv.ToLab(hex)
			require.NoError(t, err)

			ref, err := colorful.Hex("#" + hex)
			require.NoError(t, err)
			l, a, b := ref.Lab()

			assert.InDelta(t, l*100, lab.L, 0.5)
			assert.InDelta(t, a*100, lab.A, 0.5)
			assert.InDelta(t, b*100, lab.B, 0.5)
		})
	}
}

func TestConverter_ToLab_Deterministic(t *testing.T) {
	conv := NewConverter()

	first, err := conv.ToLab("c0ffee")
	require.NoError(t, err)
	second, err := conv.ToLab("c0ffee")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, conv.Len(), "second call should hit the cache")

	// A fresh converter computes the same value.
	other, err := NewConverter().ToLab("c0ffee")
	require.NoError(t, err)
	assert.Equal(t, first, other)
}

func TestConverter_ToLab_CacheKeyIsExactInput(t *testing.T) {
	conv := NewConverter()

	lower, err := conv.ToLab("abcdef")
	require.NoError(t, err)
	upper, err := conv.ToLab("ABCDEF")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
	assert.Equal(t, 2, conv.Len())
}

func TestConverter_ToLab_InvalidNotCached(t *testing.T) {
	conv := NewConverter()

	_, err := conv.ToLab("#ZZZZZZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHexColor)
	assert.Equal(t, 0, conv.Len())
}

func TestConverter_ToLab_Ranges(t *testing.T) {
	conv := NewConverter()
	for r := 0; r <= 255; r += 51 {
		for g := 0; g <= 255; g += 51 {
			for b := 0; b <= 255; b += 51 {
				hex := fmt.Sprintf("%02x%02x%02x", r, g, b)
				lab, err := conv.ToLab(hex)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, lab.L, -0.01, hex)
				assert.LessOrEqual(t, lab.L, 100.01, hex)
				assert.GreaterOrEqual(t, lab.A, -128.0, hex)
				assert.LessOrEqual(t, lab.A, 128.0, hex)
				assert.GreaterOrEqual(t, lab.B, -128.0, hex)
				assert.LessOrEqual(t, lab.B, 128.0, hex)
			}
		}
	}
}

func TestConverter_ConcurrentUse(t *testing.T) {
	conv := NewConverter()
	want, err := NewConverter().ToLab("336699")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := conv.ToLab("336699")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, conv.Len())
}
