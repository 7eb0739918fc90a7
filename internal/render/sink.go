package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/softplot/internal/export"
	"github.com/san-kum/softplot/internal/playback"
)

// VideoSink renders each frame with a Plotter and streams it into a
// video encoder chosen by the output extension.
type VideoSink struct {
	path    string
	plotter *Plotter
	opts    export.Options

	surface *playback.Surface
	enc     export.Encoder
	closed  bool
}

// NewVideoSink writes to path. Width and height come from style; the
// frame rate is taken from the surface at Configure.
func NewVideoSink(path string, style Style, opts export.Options) *VideoSink {
	opts.Width = style.Width
	opts.Height = style.Height
	return &VideoSink{
		path:    path,
		plotter: NewPlotter(style),
		opts:    opts,
	}
}

func (v *VideoSink) Path() string { return v.path }

// Frames is the number of frames encoded so far.
func (v *VideoSink) Frames() int {
	if v.enc == nil {
		return 0
	}
	return v.enc.Frames()
}

func (v *VideoSink) Configure(s *playback.Surface) error {
	if v.enc != nil {
		return errors.New("render: sink already configured")
	}
	opts := v.opts
	opts.FPS = s.FPS
	enc, err := export.New(v.path, opts)
	if err != nil {
		return err
	}
	v.surface = s
	v.enc = enc
	return nil
}

func (v *VideoSink) Update(t int, xs, ys []float64) error {
	if v.enc == nil {
		return errors.New("render: sink not configured")
	}
	img, err := v.plotter.Frame(v.surface, t, xs, ys)
	if err != nil {
		return err
	}
	if err := v.enc.AddFrame(img); err != nil {
		return fmt.Errorf("render: encode frame %d: %w", t, err)
	}
	return nil
}

func (v *VideoSink) Export() error {
	if v.enc == nil {
		return errors.New("render: sink not configured")
	}
	v.closed = true
	if err := v.enc.Close(); err != nil {
		return fmt.Errorf("render: finalise %s: %w", v.path, err)
	}
	return nil
}

// Abort closes the encoder and removes the partial output.
func (v *VideoSink) Abort() error {
	if v.enc == nil {
		return nil
	}
	var closeErr error
	if !v.closed {
		if err := v.enc.Close(); err != nil {
			closeErr = fmt.Errorf("render: close %s: %w", v.path, err)
		}
		v.closed = true
	}
	v.enc = nil
	if err := os.Remove(v.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(closeErr, err)
	}
	return closeErr
}
