package article

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("article not found")
	ErrFetch    = errors.New("fetch failed")
	ErrInvalid  = errors.New("invalid article")
)

// FetchError reports that the backing source was unreachable or returned
// malformed data.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// ValidationError lists the required fields a draft left empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// NotFound wraps ErrNotFound with the missing id.
func NotFound(id int) error {
	return fmt.Errorf("article %d: %w", id, ErrNotFound)
}
