package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/softplot/internal/frames"
)

var (
	// ErrState indicates a driver call made out of lifecycle order.
	ErrState = errors.New("playback: invalid state transition")

	// ErrOptions indicates invalid playback options.
	ErrOptions = errors.New("playback: invalid options")

	// ErrNoFrames indicates a source whose header announces zero frames.
	ErrNoFrames = errors.New("playback: no frames to render")

	// ErrCanceled indicates the run was interrupted between frames.
	ErrCanceled = errors.New("playback: canceled by context")
)

// Source supplies frames by index. *frames.Store satisfies it.
type Source interface {
	Header() frames.Header
	Frame(t int) (frames.Frame, error)
}

// Sink receives the configured surface, one point set per frame in
// increasing order, and finally an export request.
type Sink interface {
	Configure(s *Surface) error
	Update(t int, xs, ys []float64) error
	Export() error
}

// Aborter is implemented by sinks that can discard partial output.
type Aborter interface {
	Abort() error
}

// Observer is notified after each frame reaches the sink.
type Observer interface {
	OnFrame(t int, xs, ys []float64)
}

// State of a Driver.
type State int

const (
	Idle State = iota
	Configured
	Rendering
	Exported
	Terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configured:
		return "configured"
	case Rendering:
		return "rendering"
	case Exported:
		return "exported"
	case Terminal:
		return "terminal"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Driver walks a Source from frame 0 to FrameCount-1 into a Sink.
// It is single use and not safe for concurrent calls.
type Driver struct {
	src       Source
	sink      Sink
	opts      Options
	observers []Observer
	surface   *Surface
	state     State
	rendered  int
}

func New(src Source, sink Sink, opts Options) *Driver {
	return &Driver{src: src, sink: sink, opts: opts}
}

// Observe registers an observer. Call before Render.
func (d *Driver) Observe(o Observer) {
	d.observers = append(d.observers, o)
}

func (d *Driver) State() State { return d.state }

// Surface is nil until Configure succeeds.
func (d *Driver) Surface() *Surface { return d.surface }

// Rendered is the number of frames delivered to the sink.
func (d *Driver) Rendered() int { return d.rendered }

func (d *Driver) Configure() error {
	if d.state != Idle {
		return d.stateErr("configure")
	}
	s, err := Configure(d.src, d.opts)
	if err != nil {
		return d.fail(err)
	}
	if err := d.sink.Configure(s); err != nil {
		return d.fail(fmt.Errorf("configure sink: %w", err))
	}
	d.surface = s
	d.state = Configured
	return nil
}

// Render delivers every frame to the sink. Frame indices never reach
// FrameCount.
func (d *Driver) Render(ctx context.Context) error {
	if d.state != Configured {
		return d.stateErr("render")
	}
	d.state = Rendering

	for t := 0; t < d.surface.Frames; t++ {
		select {
		case <-ctx.Done():
			return d.fail(fmt.Errorf("%w at frame %d: %v", ErrCanceled, t, ctx.Err()))
		default:
		}

		f, err := d.src.Frame(t)
		if err != nil {
			return d.fail(fmt.Errorf("read frame %d: %w", t, err))
		}
		if err := d.sink.Update(t, f.X, f.Y); err != nil {
			return d.fail(fmt.Errorf("draw frame %d: %w", t, err))
		}
		d.rendered++
		for _, o := range d.observers {
			o.OnFrame(t, f.X, f.Y)
		}
	}
	return nil
}

func (d *Driver) Export() error {
	if d.state != Rendering {
		return d.stateErr("export")
	}
	if err := d.sink.Export(); err != nil {
		return d.fail(fmt.Errorf("export: %w", err))
	}
	d.state = Exported
	return nil
}

func (d *Driver) Close() error {
	if d.state != Exported {
		return d.stateErr("close")
	}
	d.state = Terminal
	return nil
}

// Run configures, renders, exports and closes in one call.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Configure(); err != nil {
		return err
	}
	if err := d.Render(ctx); err != nil {
		return err
	}
	if err := d.Export(); err != nil {
		return err
	}
	return d.Close()
}

func (d *Driver) stateErr(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrState, op, d.state)
}

// fail aborts the sink and parks the driver in Terminal.
func (d *Driver) fail(err error) error {
	if a, ok := d.sink.(Aborter); ok && d.state != Idle {
		if aerr := a.Abort(); aerr != nil {
			err = errors.Join(err, fmt.Errorf("abort: %w", aerr))
		}
	}
	d.state = Terminal
	return err
}
