package parsers

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEncoding indicates file content that is not valid UTF-8 text.
	ErrInvalidEncoding = errors.New("content is not valid UTF-8")
)

// ReadError reports a file that could not be read as text. It is the only
// error the parser produces for a single file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
