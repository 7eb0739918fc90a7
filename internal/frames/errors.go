package frames

import (
	"errors"
	"fmt"
)

// Errors returned while loading or parsing a frame file.
var (
	// ErrEmptyInput indicates the file has no header line.
	ErrEmptyInput = errors.New("frames: empty input (missing header)")

	// ErrBadHeader indicates a header that is not three non-negative integers.
	ErrBadHeader = errors.New("frames: malformed header")

	// ErrMissingFrames indicates fewer frame records than the header announces.
	ErrMissingFrames = errors.New("frames: fewer records than frame count")

	// ErrFieldCount indicates a record whose field count is not 2*size.
	ErrFieldCount = errors.New("frames: record field count does not match particle count")

	// ErrBadField indicates a field that is not a finite real number.
	ErrBadField = errors.New("frames: non-numeric field")

	// ErrFrameRange indicates a frame index outside [0, frame_count).
	ErrFrameRange = errors.New("frames: frame index out of range")
)

// ParseError wraps a parse failure with the position it occurred at.
// Frame is -1 when the record is not attached to a store.
type ParseError struct {
	Frame   int
	Field   int
	Detail  string
	Wrapped error
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("field %d", e.Field)
	if e.Frame >= 0 {
		loc = fmt.Sprintf("frame %d, %s", e.Frame, loc)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%v (%s)", e.Wrapped, loc)
	}
	return fmt.Sprintf("%v (%s): %s", e.Wrapped, loc, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}
