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

package catalogsync

import "errors"

var (
	// ErrFetchFailed indicates a page could not be fetched; the run was aborted.
	ErrFetchFailed = errors.New("catalog page fetch failed")

	// ErrNoPage indicates a fetcher that returned neither a page nor an error.
	ErrNoPage = errors.New("fetcher returned no page")

	// ErrFetcherRequired indicates a nil PageFetcher.
	ErrFetcherRequired = errors.New("page fetcher is required")

	// ErrRepositoryRequired indicates a nil swatch repository.
	ErrRepositoryRequired = errors.New("swatch repository is required")

	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrInvalidConfig indicates a Config with out-of-range values.
	ErrInvalidConfig = errors.New("invalid sync configuration")
)
