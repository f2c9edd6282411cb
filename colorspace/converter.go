// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package colorspace

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jkl1337/go-chromath"
	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a CIE L*a*b* color relative to the D65 white point.
// L is in [0,100]; a and b are roughly in [-128,127].
type Lab struct {
	L float64
	A float64
	B float64
}

// chromath returns the color in go-chromath's representation.
func (c Lab) chromath() chromath.Lab {
	return chromath.Lab{c.L, c.A, c.B}
}

var (
	// 8-bit sRGB in, XYZ relative to the sRGB (D65) white out.
	rgbToXYZ = chromath.NewRGBTransformer(&chromath.SpaceSRGB, nil, nil, &chromath.Scaler8bClamping, 1.0, nil)
	labToXYZ = chromath.NewLabTransformer(&chromath.IlluminantRefD65)
)

// ParseHex decodes a six digit RGB hex string into its channels.
// A single leading '#' is tolerated; anything else that is not exactly
// two hex digits per channel fails with ErrInvalidHexColor.
func ParseHex(hex string) (r, g, b uint8, err error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return 0, 0, 0, fmt.Errorf("%w: %q must have 6 hex digits", ErrInvalidHexColor, hex)
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return 0, 0, 0, fmt.Errorf("%w: %q contains non-hex character %q", ErrInvalidHexColor, hex, digits[i])
		}
	}

	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q: %w", ErrInvalidHexColor, hex, err)
	}
	r, g, b = c.RGB255()
	return r, g, b, nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// RGBToLab converts an 8-bit sRGB triplet to Lab.
func RGBToLab(r, g, b uint8) Lab {
	xyz := rgbToXYZ.Convert(chromath.RGB{float64(r), float64(g), float64(b)})
	lab := labToXYZ.Invert(xyz)
	return Lab{L: lab.L(), A: lab.A(), B: lab.B()}
}

// Converter converts hex colors to Lab and remembers every result by its
// exact input string. It is safe for concurrent use.
type Converter struct {
	mu    sync.RWMutex
	cache map[string]Lab
}

// NewConverter creates a Converter with an empty cache.
func NewConverter() *Converter {
	return &Converter{
		cache: make(map[string]Lab),
	}
}

// ToLab converts a six digit hex color to Lab.
// Malformed input fails with ErrInvalidHexColor and is not cached.
func (c *Converter) ToLab(hex string) (Lab, error) {
	c.mu.RLock()
	lab, ok := c.cache[hex]
	c.mu.RUnlock()
	if ok {
		return lab, nil
	}

	r, g, b, err := ParseHex(hex)
	if err != nil {
		return Lab{}, err
	}
	lab = RGBToLab(r, g, b)

	c.mu.Lock()
	c.cache[hex] = lab
	c.mu.Unlock()
	return lab, nil
}

// Len returns the number of cached conversions.
func (c *Converter) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
