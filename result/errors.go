package result

import "errors"

var (
	// ErrInvalidHighlightTag is returned when a highlight tag pair has an empty side.
	ErrInvalidHighlightTag = errors.New("highlight tag requires an opening and a closing marker")
)
