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

package match

import "errors"

var (
	// ErrInvalidInput indicates unusable query parameters. No matching work
	// is done when it is returned.
	ErrInvalidInput = errors.New("invalid match query")

	// ErrRepositoryRequired is returned when a swatch repository is not provided.
	ErrRepositoryRequired = errors.New("swatch repository required")

	// ErrNoCatalog indicates the local store was never populated.
	ErrNoCatalog = errors.New("no local catalog yet")

	// ErrEmptyCatalog indicates a local catalog holding no swatches.
	ErrEmptyCatalog = errors.New("local catalog is empty")

	// ErrNoMatches indicates every swatch was excluded from the query.
	ErrNoMatches = errors.New("no swatches left after exclusions")
)
