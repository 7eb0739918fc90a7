package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// mjpegEncoder writes JPEG frames into an AVI container.
type mjpegEncoder struct {
	w      mjpeg.AviWriter
	opts   Options
	buf    bytes.Buffer
	frames int
	closed bool
}

func newMJPEG(path string, opts Options) (Encoder, error) {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = jpeg.DefaultQuality
	}
	w, err := mjpeg.New(path, int32(opts.Width), int32(opts.Height), int32(opts.FPS))
	if err != nil {
		return nil, fmt.Errorf("create avi: %w", err)
	}
	return &mjpegEncoder{w: w, opts: opts}, nil
}

func (e *mjpegEncoder) AddFrame(img image.Image) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkBounds(img, e.opts); err != nil {
		return err
	}

	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.opts.Quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := e.w.AddFrame(e.buf.Bytes()); err != nil {
		return fmt.Errorf("add avi frame: %w", err)
	}
	e.frames++
	return nil
}

func (e *mjpegEncoder) Frames() int { return e.frames }

func (e *mjpegEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.w.Close()
}
