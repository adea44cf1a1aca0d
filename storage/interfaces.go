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


package storage

import (
	"context"

	"github.com/poiesic/boox/core"
)

// StateStore persists complete engine snapshots.
type StateStore interface {
	// SaveState replaces the stored snapshot with state.
	// Records already stored with identical content may be left in place.
	SaveState(ctx context.Context, state *core.State) error

	// LoadState returns the stored snapshot.
	// Returns ErrNotFound if nothing was ever saved.
	LoadState(ctx context.Context) (*core.State, error)

	// Close releases the store. It does not close shared backends.
	Close() error
}
