package core

import (
	"errors"
	"testing"

	"github.com/mkoistinen/filamentcolors/colorspace"
)

func TestValidateRawSwatch(t *testing.T) {
	tests := []struct {
		name    string
		raw     *RawSwatch
		wantErr []error
	}{
		{
			name: "valid swatch",
			raw:  &RawSwatch{Id: 1, HexColor: "ff0000"},
		},
		{
			name: "upper case hex",
			raw:  &RawSwatch{Id: 2, HexColor: "C0FFEE"},
		},
		{
			name:    "nil swatch",
			raw:     nil,
			wantErr: []error{ErrInvalidSwatch},
		},
		{
			name:    "zero id",
			raw:     &RawSwatch{Id: 0, HexColor: "ff0000"},
			wantErr: []error{ErrInvalidSwatch, ErrMissingID},
		},
		{
			name:    "empty color",
			raw:     &RawSwatch{Id: 3, HexColor: ""},
			wantErr: []error{ErrInvalidSwatch, colorspace.ErrInvalidHexColor},
		},
		{
			name:    "hash prefixed color",
			raw:     &RawSwatch{Id: 4, HexColor: "#ff0000"},
			wantErr: []error{ErrInvalidSwatch, colorspace.ErrInvalidHexColor},
		},
		{
			name:    "non hex color",
			raw:     &RawSwatch{Id: 5, HexColor: "ZZZZZZ"},
			wantErr: []error{ErrInvalidSwatch, colorspace.ErrInvalidHexColor},
		},
		{
			name:    "short color",
			raw:     &RawSwatch{Id: 6, HexColor: "fff"},
			wantErr: []error{ErrInvalidSwatch, colorspace.ErrInvalidHexColor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRawSwatch(tt.raw)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("ValidateRawSwatch() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateRawSwatch() expected error, got nil")
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("ValidateRawSwatch() error = %v, want %v", err, want)
				}
			}
		})
	}
}
