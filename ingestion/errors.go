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


package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrPrepareRequired is returned when Run is called without a prepare function.
	ErrPrepareRequired = errors.New("prepare function required")

	// ErrApplyRequired is returned when Run is called without an apply function.
	ErrApplyRequired = errors.New("apply function required")

	// ErrInvalidBatchSize is returned when a batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")
)

// ItemError reports the failure of one input item.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
