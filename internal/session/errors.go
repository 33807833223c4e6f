package session

import (
	"errors"
	"fmt"
)

// ErrNoDocument is returned by operations that need a loaded document.
var ErrNoDocument = errors.New("no document loaded")

// DocumentOpenError reports an upload that could not be opened. The
// session is reset when it occurs.
type DocumentOpenError struct {
	Name string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("error opening %s: %v", e.Name, e.Err)
}

func (e *DocumentOpenError) Unwrap() error { return e.Err }

// ConversionError reports a failed conversion batch. Every page in the
// batch holds an error placeholder afterwards.
type ConversionError struct {
	Pages []int // 0-based
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("error converting pages %v: %v", humanPages(e.Pages), e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// InvalidRangeError rejects a page number or range outside the document.
type InvalidRangeError struct {
	Start, End int // 1-based as entered
	Total      int
}

func (e *InvalidRangeError) Error() string {
	if e.Start == e.End {
		return fmt.Sprintf("page number must be between 1 and %d", e.Total)
	}
	if e.Start > e.End {
		return fmt.Sprintf("start page %d is after end page %d", e.Start, e.End)
	}
	return fmt.Sprintf("pages must be between 1 and %d", e.Total)
}

func humanPages(indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = idx + 1
	}
	return out
}

var errEmpty = errors.New("the PDF seems to be empty or invalid")
