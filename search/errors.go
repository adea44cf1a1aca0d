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


package search

import "errors"

var (
	// ErrIndexRequired is returned when scoring is attempted without an index.
	ErrIndexRequired = errors.New("index required")

	// ErrMatchingCoefficient wraps failures of a matching coefficient function.
	ErrMatchingCoefficient = errors.New("matching coefficient failed")

	// ErrInvalidChunkSize is returned when a chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)
