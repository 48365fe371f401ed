package distmat

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a matrix is requested for a
	// dataset with no rows.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrInvalidWorkers is returned when a negative worker count is
	// configured.
	ErrInvalidWorkers = errors.New("worker count must not be negative")

	// ErrEmptySelection is returned when a row selection matches no rows.
	ErrEmptySelection = errors.New("row selection is empty")
)

// ErrDimensionMismatch indicates that a dataset row does not have the
// same length as the first row.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Row      int
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch at row %d: expected %d, got %d", e.Row, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrSelectionOutOfRange indicates a row selection referencing an index
// beyond the dataset.
type ErrSelectionOutOfRange struct {
	Index int
	Rows  int
}

func (e *ErrSelectionOutOfRange) Error() string {
	return fmt.Sprintf("row selection index %d out of range for %d rows", e.Index, e.Rows)
}
