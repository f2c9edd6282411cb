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

import (
	"fmt"
	"runtime"
	"time"
)

// DefaultCheckpointName is the checkpoint a Synchronizer records progress under.
const DefaultCheckpointName = "catalog-sync"

// Config holds configuration for a synchronization run.
type Config struct {
	// MaxRetries is the maximum number of fetch attempts per page
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay; zero means no cap
	MaxRetryDelay time.Duration

	// PoolSize is the number of workers converting a page's colors
	PoolSize int

	// ReportInterval is how often to report progress (number of swatches)
	ReportInterval int

	// Resume continues an interrupted run after its last committed page
	Resume bool

	// CheckpointName names the checkpoint used for Resume
	CheckpointName string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		MaxRetries:     3,
		RetryDelay:     500 * time.Millisecond,
		MaxRetryDelay:  10 * time.Second,
		PoolSize:       poolSize,
		ReportInterval: 50,
		CheckpointName: DefaultCheckpointName,
	}
}

// Validate checks that every field is usable.
func (c *Config) Validate() error {
	switch {
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: MaxRetries must be at least 1, got %d", ErrInvalidConfig, c.MaxRetries)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: RetryDelay must not be negative", ErrInvalidConfig)
	case c.MaxRetryDelay < 0:
		return fmt.Errorf("%w: MaxRetryDelay must not be negative", ErrInvalidConfig)
	case c.PoolSize < 1:
		return fmt.Errorf("%w: PoolSize must be at least 1, got %d", ErrInvalidConfig, c.PoolSize)
	case c.ReportInterval < 1:
		return fmt.Errorf("%w: ReportInterval must be at least 1, got %d", ErrInvalidConfig, c.ReportInterval)
	case c.CheckpointName == "":
		return fmt.Errorf("%w: CheckpointName is required", ErrInvalidConfig)
	}
	return nil
}
