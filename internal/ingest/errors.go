package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFileType is returned when the declared MIME type is not
	// CSV, XLS or XLSX.
	ErrUnsupportedFileType = errors.New("invalid file type, only CSV, XLS and XLSX files are allowed")

	// ErrEmptyInput is returned when no data rows remain after parsing.
	ErrEmptyInput = errors.New("uploaded file is empty or could not be parsed")

	// ErrParse is the sentinel wrapped by every ParseError.
	ErrParse = errors.New("error parsing file")
)

// ParseError describes why an upload could not be decoded or lacks the
// required columns. Missing is set when the header row is incomplete.
type ParseError struct {
	Format  Format
	Missing []string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required columns: %s. Expected: %s",
			strings.Join(e.Missing, ", "), strings.Join(ExpectedColumns, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrParse.Error(), e.Err)
	}
	return ErrParse.Error()
}

// Unwrap lets errors.Is match both ErrParse and the underlying decoder error.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

func newParseError(format Format, err error) *ParseError {
	return &ParseError{Format: format, Err: err}
}

// RowError reports a data row that lacks a required value. Row is the
// 1-based row number in the source file, counting the header as row 1.
type RowError struct {
	Row   int
	Field string
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s is required", e.Row, e.Field)
}
