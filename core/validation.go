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
	"fmt"
	"math"
)

// ValidateConfig validates a Config according to domain rules.
//
// Validation rules:
//   - Feature and attribute names must not be empty
//   - A feature may be listed only once
//
// A field may be both a feature and an attribute. An empty ID is valid; it
// means DefaultIDField.
func ValidateConfig(cfg Config) error {
	seen := make(map[string]struct{}, len(cfg.Features))
	for _, key := range cfg.Features {
		if key == "" {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrEmptyFieldName)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrDuplicateField, key)
		}
		seen[key] = struct{}{}
	}
	for _, key := range cfg.Attributes {
		if key == "" {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrEmptyFieldName)
		}
	}
	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Magnitude must be finite and non-negative
//
// Attributes may be empty: a document with zero indexed fields is valid.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrNilDocument)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}
	if doc.Magnitude < 0 || math.IsNaN(doc.Magnitude) || math.IsInf(doc.Magnitude, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidMagnitude)
	}
	return nil
}

// ValidateState checks that a snapshot can be restored.
// Every document must be valid and stored under its own ID.
// Postings referencing unknown documents are tolerated; they never count towards
// document frequency.
func ValidateState(state *State) error {
	if state == nil {
		return fmt.Errorf("%w: state is nil", ErrInvalidState)
	}
	if err := ValidateConfig(state.Configs); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	for key, doc := range state.Documents {
		if err := ValidateDocument(doc); err != nil {
			return fmt.Errorf("%w: document %q: %w", ErrInvalidState, key, err)
		}
		if doc.ID != key {
			return fmt.Errorf("%w: %w: %q stored as %q", ErrInvalidState, ErrDocumentIDMismatch, doc.ID, key)
		}
	}
	return nil
}
