package frames

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Separator splits fields in the header and in frame records.
const Separator = ","

// maxRecordBytes bounds a single line; a 100x100 grid at full float
// precision is well under 1 MiB.
const maxRecordBytes = 64 << 20

// Header is the first record of a frame file.
type Header struct {
	Width      int
	Height     int
	FrameCount int
}

// Size is the number of particles in every frame.
func (h Header) Size() int {
	return h.Width * h.Height
}

func (h Header) String() string {
	return fmt.Sprintf("%d%s%d%s%d", h.Width, Separator, h.Height, Separator, h.FrameCount)
}

// Frame is one parsed time step. X[i], Y[i] is particle i.
type Frame struct {
	Index int
	X     []float64
	Y     []float64
}

func (f Frame) Len() int { return len(f.X) }

// Store holds a whole frame file in memory. It is immutable after Load.
type Store struct {
	header  Header
	records []string
}

// Load reads the frame file at path.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame file: %w", err)
	}
	defer f.Close()

	st, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// Read loads a frame file from r. Only the first FrameCount records
// after the header are kept.
func Read(r io.Reader) (*Store, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, ErrEmptyInput
	}

	header, err := ParseHeader(sc.Text())
	if err != nil {
		return nil, err
	}

	// The header count is untrusted; let append grow past the first chunk.
	records := make([]string, 0, min(header.FrameCount, 1024))
	for len(records) < header.FrameCount && sc.Scan() {
		records = append(records, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(records) < header.FrameCount {
		return nil, fmt.Errorf("%w: header announces %d, found %d", ErrMissingFrames, header.FrameCount, len(records))
	}

	return &Store{header: header, records: records}, nil
}

// ParseHeader parses "width,height,frame_count".
func ParseHeader(line string) (Header, error) {
	fields := splitFields(line)
	if len(fields) != 3 {
		return Header{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrBadHeader, len(fields))
	}

	var vals [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Header{}, fmt.Errorf("%w: field %d %q is not an integer", ErrBadHeader, i, f)
		}
		if v < 0 {
			return Header{}, fmt.Errorf("%w: field %d is negative (%d)", ErrBadHeader, i, v)
		}
		vals[i] = v
	}

	return Header{Width: vals[0], Height: vals[1], FrameCount: vals[2]}, nil
}

// Header returns the parsed header.
func (s *Store) Header() Header { return s.header }

// Len is the number of frames available, equal to Header().FrameCount.
func (s *Store) Len() int { return len(s.records) }

// Record returns the raw text of frame t.
func (s *Store) Record(t int) (string, error) {
	if t < 0 || t >= len(s.records) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrFrameRange, t, len(s.records))
	}
	return s.records[t], nil
}

// Frame parses frame t.
func (s *Store) Frame(t int) (Frame, error) {
	rec, err := s.Record(t)
	if err != nil {
		return Frame{}, err
	}
	xs, ys, err := ParseFrame(rec, s.header.Size())
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Frame = t
		}
		return Frame{}, err
	}
	return Frame{Index: t, X: xs, Y: ys}, nil
}

// ParseFrame splits an interleaved record into x and y coordinates.
// The record must hold exactly 2*size fields; a single trailing
// separator is ignored.
func ParseFrame(record string, size int) (xs, ys []float64, err error) {
	fields := splitFields(record)
	if len(fields) != 2*size {
		return nil, nil, &ParseError{
			Frame:   -1,
			Field:   len(fields),
			Detail:  fmt.Sprintf("expected %d fields for %d particles, got %d", 2*size, size, len(fields)),
			Wrapped: ErrFieldCount,
		}
	}

	xs = make([]float64, size)
	ys = make([]float64, size)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, &ParseError{Frame: -1, Field: i, Detail: fmt.Sprintf("%q", f), Wrapped: ErrBadField}
		}
		if i%2 == 0 {
			xs[i/2] = v
		} else {
			ys[i/2] = v
		}
	}
	return xs, ys, nil
}

// splitFields trims surrounding whitespace and one trailing separator.
// An empty line has zero fields.
func splitFields(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, Separator)
	if line == "" {
		return nil
	}
	fields := strings.Split(line, Separator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
