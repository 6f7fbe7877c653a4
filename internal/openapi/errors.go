package openapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPaths is returned for documents whose paths object is missing or empty.
	ErrNoPaths = errors.New("paths is empty or invalid")
	// ErrEmptyOperations is returned when a document yields zero usable operations.
	ErrEmptyOperations = errors.New("document yields no usable operations")
	// ErrNotMapping is returned when the document root is not an object.
	ErrNotMapping = errors.New("document is not a mapping")
)

// LoadError records a failure to load one source. It never aborts loading of
// other sources.
type LoadError struct {
	Source string
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// FetchError is returned by fetchers for transport failures and non-2xx responses.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: server returned %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Diagnostic describes an operation entry skipped during compilation.
type Diagnostic struct {
	Path   string
	Method string
	Reason string
}

func (d Diagnostic) String() string {
	if d.Method == "" {
		return fmt.Sprintf("path %q: %s", d.Path, d.Reason)
	}
	return fmt.Sprintf("path %q method %q: %s", d.Path, d.Method, d.Reason)
}
