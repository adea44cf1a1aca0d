package config

import "errors"

var (
	// ErrInvalidConfig wraps every problem reported by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
