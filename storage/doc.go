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


// Package storage persists engine state.
//
// StateStore is the persistence contract used by boox.Engine.Save and
// boox.Engine.Load. Two implementations exist:
//
//   - FileStore: a single compressed JSON snapshot (gzip ".gz" or zlib
//     deflate ".dat", level 6), the format written by the train command.
//   - badger.StateRepository: one BadgerDB record per document, posting
//     list, popularity count and configuration, encoded with MUS.
//
// Snapshots:
//
//	info, err := storage.WriteSnapshot(w, engine.State(), storage.FormatGzip)
//	state, err := storage.ReadSnapshot(r)
//
// The record codec (MarshalDocument, MarshalPostings, MarshalConfig,
// MarshalCount) is deterministic: equal values encode to equal bytes, so
// Digest can detect unchanged records between saves.
//
// All StateStore implementations are safe for concurrent use.
package storage
