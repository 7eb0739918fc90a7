package frames

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Writer produces a frame file: the header line followed by one
// interleaved record per WriteFrame call.
type Writer struct {
	w       *bufio.Writer
	header  Header
	written int
}

// NewWriter writes the header immediately.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, h.String()); err != nil {
		return nil, err
	}
	return &Writer{w: bw, header: h}, nil
}

// WriteFrame appends one record. xs and ys must both have Header().Size() entries.
func (w *Writer) WriteFrame(xs, ys []float64) error {
	size := w.header.Size()
	if len(xs) != size || len(ys) != size {
		return fmt.Errorf("%w: frame %d has %d/%d coordinates, want %d", ErrFieldCount, w.written, len(xs), len(ys), size)
	}

	buf := make([]byte, 0, size*24)
	for i := 0; i < size; i++ {
		if i > 0 {
			buf = append(buf, Separator...)
		}
		buf = strconv.AppendFloat(buf, xs[i], 'g', -1, 64)
		buf = append(buf, Separator...)
		buf = strconv.AppendFloat(buf, ys[i], 'g', -1, 64)
	}
	buf = append(buf, '\n')

	if _, err := w.w.Write(buf); err != nil {
		return err
	}
	w.written++
	return nil
}

// Written is the number of frames written so far.
func (w *Writer) Written() int { return w.written }

func (w *Writer) Flush() error {
	return w.w.Flush()
}
