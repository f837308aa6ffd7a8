package password

import "errors"

// Public, stable errors for callers.
var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	ErrInvalidCost     = errors.New("bcrypt cost out of range")
)
