package extractor

import (
	"errors"
	"fmt"
)

var (
	ErrTitleNotFound   = errors.New("title not found")
	ErrAuthorsNotFound = errors.New("authors not found")
	ErrBodyNotFound    = errors.New("body not found")
)

// ParseError reports content that cannot be read as markup at all.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse html: %s: %v", e.Reason, e.Err)
	}
	return "parse html: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractionError reports a required fingerprint missing from the document.
// Err is one of ErrTitleNotFound, ErrAuthorsNotFound or ErrBodyNotFound.
type ExtractionError struct {
	Field    string
	Selector string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Field, e.Selector, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
