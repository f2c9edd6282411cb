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

// Package storage provides the storage abstraction layer for the swatch
// catalog.
//
// This package defines repository interfaces that decouple storage from the
// synchronization and matching logic. Two backends implement them:
//
//   - storage/badger: an embedded BadgerDB key-value store (the default)
//   - storage/sqlite: a SQLite database whose schema is managed by embedded
//     migrations
//
// # Architecture
//
//   - SwatchRepository: upsert-by-id, full scan, count and schema rebuild
//   - CheckpointRepository: synchronization resume cursors
//   - Store: a backend providing both
//
// Swatches are plain core.Swatch values; the repositories own all persistence
// mechanics. Records are serialized with the MUS codecs in package core.
//
// # Usage
//
//	store, err := badger.OpenStore("/path/to/catalog", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Ordering
//
// ScanSwatches returns swatches in ascending id order on every backend. The
// matcher relies on this order to break distance ties reproducibly.
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific timeout requirements.
package storage
