package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when a document has none of the known
// section headers.
var ErrUnsupportedFormat = errors.New("unsupported statement format: no transaction section headers found")

// Reasons a single row is dropped.
var (
	ErrMissingAmount    = errors.New("missing amount")
	ErrMalformedAmount  = errors.New("malformed amount")
	ErrRowGrammar       = errors.New("row does not match section layout")
	ErrEmptyDescription = errors.New("empty description")
	ErrOutsidePeriod    = errors.New("date outside billing period")
)

// RowParseError describes a transaction row that was dropped. It never
// aborts the document.
type RowParseError struct {
	Page int // 1-based
	Line int // 1-based
	Text string
	Err  error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("page %d line %d: %v: %q", e.Page, e.Line, e.Err, e.Text)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}
