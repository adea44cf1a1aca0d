package boox

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingID is matched by errors for datasets without an identifier value.
	ErrMissingID = errors.New("document identifier not found in dataset")

	// ErrDuplicateDocument is matched by errors for adding an ID that is already indexed.
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrQueryExpansion wraps failures of a query expander.
	ErrQueryExpansion = errors.New("query expansion failed")

	// ErrEngineClosed is returned by operations on a closed engine.
	ErrEngineClosed = errors.New("engine is closed")

	// ErrStoreRequired is returned when persistence is requested without a store.
	ErrStoreRequired = errors.New("state store required")
)

// MissingIDError reports a dataset lacking its identifier field.
type MissingIDError struct {
	Field string
}

func (e *MissingIDError) Error() string {
	return fmt.Sprintf("%q not found in dataset.", e.Field)
}

func (e *MissingIDError) Is(target error) bool {
	return target == ErrMissingID
}

// DuplicateDocumentError reports an add for an already indexed ID.
type DuplicateDocumentError struct {
	ID string
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("Document with the ID %q already exists. Please use the \"boox.update()\" instead.", e.ID)
}

func (e *DuplicateDocumentError) Is(target error) bool {
	return target == ErrDuplicateDocument
}
