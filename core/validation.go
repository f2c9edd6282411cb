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

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mkoistinen/filamentcolors/colorspace"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("rgbhex", rgbHexValidator); err != nil {
		panic(err)
	}
	return v
}

// rgbHexValidator accepts exactly six hex digits with no '#' prefix.
func rgbHexValidator(fl validator.FieldLevel) bool {
	hex := fl.Field().String()
	if strings.HasPrefix(hex, "#") {
		return false
	}
	_, _, _, err := colorspace.ParseHex(hex)
	return err == nil
}

// ValidateRawSwatch validates a remote catalog item before it is stored.
//
// Validation rules:
//   - Id must be non-zero
//   - HexColor must be exactly six hex digits without a '#' prefix
//
// A bad color is reported as colorspace.ErrInvalidHexColor as well as
// ErrInvalidSwatch.
func ValidateRawSwatch(raw *RawSwatch) error {
	if raw == nil {
		return fmt.Errorf("%w: swatch is nil", ErrInvalidSwatch)
	}

	err := validate.Struct(raw)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Field() {
			case "Id":
				return fmt.Errorf("%w: %w", ErrInvalidSwatch, ErrMissingID)
			case "HexColor":
				return fmt.Errorf("%w: swatch %d: %w: %q", ErrInvalidSwatch, raw.Id, colorspace.ErrInvalidHexColor, raw.HexColor)
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidSwatch, err)
}
