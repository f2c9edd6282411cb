package core

//go:generate go run ../cmd/musgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkoistinen/filamentcolors/colorspace"
)

// ID is the catalog identifier of a swatch. IDs are assigned by the remote
// catalog service and never generated locally.
type ID uint64

// Swatch is one persisted catalog entry: the remote identity, its RGB hex
// color and the Lab components derived from that hex color at write time.
type Swatch struct {
	Id       ID
	HexColor string  // six hex digits, no leading '#'
	LabL     float64 // derived from HexColor, never set independently
	LabA     float64
	LabB     float64
}

// NewSwatch builds a Swatch whose Lab components are computed from hex.
func NewSwatch(id ID, hex string, conv *colorspace.Converter) (*Swatch, error) {
	lab, err := conv.ToLab(hex)
	if err != nil {
		return nil, err
	}
	return &Swatch{
		Id:       id,
		HexColor: hex,
		LabL:     lab.L,
		LabA:     lab.A,
		LabB:     lab.B,
	}, nil
}

// Lab returns the stored Lab color. It is never recomputed from HexColor.
func (s *Swatch) Lab() colorspace.Lab {
	return colorspace.Lab{L: s.LabL, A: s.LabA, B: s.LabB}
}

// URL returns the swatch's page on the catalog service at origin.
func (s *Swatch) URL(origin string) string {
	return fmt.Sprintf("%s/swatch/%d/", strings.TrimRight(origin, "/"), s.Id)
}

func (s *Swatch) String() string {
	return fmt.Sprintf("swatch (%d)", s.Id)
}

// RawSwatch is a catalog item as delivered by the remote service.
// Fields other than the id and color are ignored.
type RawSwatch struct {
	Id       ID     `json:"id" validate:"required"`
	HexColor string `json:"hex_color" validate:"rgbhex"`
}

// Page is one page of remote catalog results.
type Page struct {
	Results []RawSwatch
	Next    bool // another page follows
	Count   int  // total items reported by the service, 0 if unknown
}

// Checkpoint records how far a synchronization run got.
type Checkpoint struct {
	Name      string
	LastPage  int  // last page whose records were committed
	Complete  bool // the run reached the final page
	UpdatedAt time.Time
}
