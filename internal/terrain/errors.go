// Package terrain implements the classification pipeline: slope
// extraction, two-class clustering and contour-grid construction.
package terrain

import (
	"errors"
	"fmt"
)

// The three failure kinds every pipeline error maps to. Structurally
// invalid input aborts the run; valid-but-sparse input degrades via the
// documented fallbacks instead of erroring.
var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInsufficientData  = errors.New("insufficient data")
)

// RowError attaches the offending row index and constraint to one of
// the sentinel kinds so callers can point at the broken line.
type RowError struct {
	Kind   error
	Row    int // 0-based data row, -1 when not row-specific
	Detail string
}

func (e *RowError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Kind, e.Detail)
}

func (e *RowError) Unwrap() error { return e.Kind }

// Malformedf builds a row-scoped ErrMalformedInput.
func Malformedf(row int, format string, args ...any) error {
	return &RowError{Kind: ErrMalformedInput, Row: row, Detail: fmt.Sprintf(format, args...)}
}

// InvalidCoordinatef builds a row-scoped ErrInvalidCoordinate.
func InvalidCoordinatef(row int, format string, args ...any) error {
	return &RowError{Kind: ErrInvalidCoordinate, Row: row, Detail: fmt.Sprintf(format, args...)}
}

// Insufficientf builds an ErrInsufficientData with no row attached.
func Insufficientf(format string, args ...any) error {
	return &RowError{Kind: ErrInsufficientData, Row: -1, Detail: fmt.Sprintf(format, args...)}
}
