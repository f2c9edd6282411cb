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

// Package catalogsync mirrors the remote swatch catalog into a local store.
//
// A Synchronizer walks the remote catalog page by page, starting at page 1
// and stopping at the first page that does not announce a successor. Every
// item is validated, converted to Lab and upserted by id, so running a sync
// twice against an unchanged catalog leaves the store as it was.
//
// # Rebuilds
//
// Sync(ctx, true) drops and recreates the store exactly once per run, after
// the first page has been fetched and before any of it is written. A store
// that was never initialized is rebuilt the same way without being asked.
//
// # Failures
//
// A page fetch is retried with exponential backoff. When the retries are
// exhausted the run stops with ErrFetchFailed. Pages committed before the
// failure stay committed; the failing page writes nothing. With a
// checkpoint repository configured, Config.Resume continues such a run
// after the last committed page.
//
// # Example
//
//	sync, err := catalogsync.NewSynchronizer(client, store,
//	    catalogsync.WithCheckpoints(store),
//	    catalogsync.WithProgress(os.Stderr))
//	if err != nil {
//	    return err
//	}
//	defer sync.Release()
//
//	result, err := sync.Sync(ctx, false)
package catalogsync
