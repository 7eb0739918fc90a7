package playback

import (
	"fmt"
	"time"

	"github.com/san-kum/softplot/internal/frames"
)

const (
	// DefaultInterval is the nominal spacing between frames during
	// interactive playback. It has no effect on exported video.
	DefaultInterval = 500 * time.Millisecond

	// DefaultFPS is the export frame rate.
	DefaultFPS = 24
)

// Viewport is the fixed data-space window of the plot.
type Viewport struct {
	XMin, XMax float64
	YMin, YMax float64
}

// NewViewport derives the plot window from the grid dimensions:
// x in [-0.5*width, 1.5*width], y in [0, 1.5*height].
func NewViewport(h frames.Header) Viewport {
	w, ht := float64(h.Width), float64(h.Height)
	return Viewport{
		XMin: -0.5 * w,
		XMax: 1.5 * w,
		YMin: 0,
		YMax: 1.5 * ht,
	}
}

func (v Viewport) Dx() float64 { return v.XMax - v.XMin }
func (v Viewport) Dy() float64 { return v.YMax - v.YMin }

// Degenerate reports whether either axis has zero extent.
func (v Viewport) Degenerate() bool {
	return v.Dx() <= 0 || v.Dy() <= 0
}

// Contains reports whether (x, y) lies inside the window, edges included.
func (v Viewport) Contains(x, y float64) bool {
	return x >= v.XMin && x <= v.XMax && y >= v.YMin && y <= v.YMax
}

func (v Viewport) String() string {
	return fmt.Sprintf("x[%g, %g] y[%g, %g]", v.XMin, v.XMax, v.YMin, v.YMax)
}

// Options control a playback run.
type Options struct {
	FPS       int
	Interval  time.Duration
	ShowTicks bool
}

func DefaultOptions() Options {
	return Options{
		FPS:      DefaultFPS,
		Interval: DefaultInterval,
	}
}

// Surface is the configured display handle passed to sinks. It replaces
// any process-wide plotting state: each run owns its own Surface.
type Surface struct {
	Header    frames.Header
	Viewport  Viewport
	Frames    int
	Particles int
	FPS       int
	Interval  time.Duration
	ShowTicks bool
}

// Configure builds the surface for src.
func Configure(src Source, opts Options) (*Surface, error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %d", ErrOptions, opts.FPS)
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %v", ErrOptions, opts.Interval)
	}

	h := src.Header()
	if h.FrameCount == 0 {
		return nil, fmt.Errorf("%w: header %s", ErrNoFrames, h)
	}
	return &Surface{
		Header:    h,
		Viewport:  NewViewport(h),
		Frames:    h.FrameCount,
		Particles: h.Size(),
		FPS:       opts.FPS,
		Interval:  opts.Interval,
		ShowTicks: opts.ShowTicks,
	}, nil
}

// Duration is the length of the exported video.
func (s *Surface) Duration() time.Duration {
	return time.Duration(s.Frames) * time.Second / time.Duration(s.FPS)
}
