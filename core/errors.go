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

import "errors"

// Domain validation errors
var (
	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidState indicates a State failed validation.
	ErrInvalidState = errors.New("invalid state")

	// ErrEmptyFieldName indicates a configured field name is empty.
	ErrEmptyFieldName = errors.New("field name cannot be empty")

	// ErrDuplicateField indicates a field is configured more than once.
	ErrDuplicateField = errors.New("field configured more than once")

	// ErrNilDocument indicates a nil document in a state snapshot.
	ErrNilDocument = errors.New("document is nil")

	// ErrEmptyDocumentID indicates a document without an identifier.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrDocumentIDMismatch indicates a document stored under another document's key.
	ErrDocumentIDMismatch = errors.New("document id does not match its key")

	// ErrInvalidMagnitude indicates a negative or non-finite magnitude.
	ErrInvalidMagnitude = errors.New("magnitude must be a finite non-negative number")
)
