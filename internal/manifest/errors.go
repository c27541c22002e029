package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrManifestFetch matches any FetchError.
	ErrManifestFetch = errors.New("manifest fetch failed")
	// ErrManifestParse matches any ParseError.
	ErrManifestParse = errors.New("manifest parse failed")
	// ErrMissingField is wrapped by ParseError when a required field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrVersionNotFound is wrapped by ParseError when the version index has no such id.
	ErrVersionNotFound = errors.New("version not found")
)

// FetchError reports a transport failure or a non-success response.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch manifest %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch manifest %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrManifestFetch }

// ParseError reports a body that does not match the expected schema.
type ParseError struct {
	URL   string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse manifest %s: %s: %v", e.URL, e.Field, e.Err)
	}
	return fmt.Sprintf("parse manifest %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrManifestParse }

func missing(url, field string) error {
	return &ParseError{URL: url, Field: field, Err: ErrMissingField}
}
