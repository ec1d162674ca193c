package capture

import "errors"

// Sentinel errors for extraction operations, checked with errors.Is().
var (
	ErrExtraction   = errors.New("extraction error")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// IsNotFound reports whether err is ErrNotFound or wraps it.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
