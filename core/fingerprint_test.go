package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := &Swatch{Id: 1, HexColor: "ff0000", LabL: 53.2, LabA: 80.1, LabB: 67.2}
	b := &Swatch{Id: 2, HexColor: "00ff00", LabL: 87.7, LabA: -86.2, LabB: 83.2}

	fp := Fingerprint([]*Swatch{a, b})
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, Fingerprint([]*Swatch{b, a}), "order must not matter")

	changed := *b
	changed.HexColor = "00fe00"
	assert.NotEqual(t, fp, Fingerprint([]*Swatch{a, &changed}))
	assert.NotEqual(t, fp, Fingerprint([]*Swatch{a}))
}

func TestFingerprint_DoesNotReorderInput(t *testing.T) {
	in := []*Swatch{{Id: 3}, {Id: 1}, {Id: 2}}
	Fingerprint(in)
	assert.Equal(t, ID(3), in[0].Id)
	assert.Equal(t, ID(1), in[1].Id)
}
