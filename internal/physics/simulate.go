package physics

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/softplot/internal/frames"
)

var (
	// ErrUnstable indicates the body state diverged to NaN or Inf.
	ErrUnstable = errors.New("physics: simulation unstable (state diverged)")

	// ErrCanceled indicates the simulation was interrupted.
	ErrCanceled = errors.New("physics: simulation canceled by context")
)

// Result summarises a simulation run.
type Result struct {
	Frames        int
	Steps         int
	SimTime       float64
	InitialEnergy float64
	FinalEnergy   float64
	Energies      []float64
}

// Simulate records nFrames frames of body into w, advancing substeps
// steps between frames. The header announces the grid size and nFrames.
func Simulate(ctx context.Context, body *SoftBody, nFrames, substeps int, w *frames.Writer) (*Result, error) {
	if substeps <= 0 {
		return nil, fmt.Errorf("physics: substeps must be positive, got %d", substeps)
	}

	res := &Result{
		InitialEnergy: body.Energy(),
		Energies:      make([]float64, 0, nFrames),
	}

	for f := 0; f < nFrames; f++ {
		select {
		case <-ctx.Done():
			return res, fmt.Errorf("%w at frame %d", ErrCanceled, f)
		default:
		}

		for k := 0; k < substeps; k++ {
			body.Step()
		}
		if !body.IsValid() {
			return res, fmt.Errorf("%w at frame %d (t=%.4f)", ErrUnstable, f, body.Time())
		}

		xs, ys := body.Positions()
		if err := w.WriteFrame(xs, ys); err != nil {
			return res, err
		}
		res.Frames++
		res.Energies = append(res.Energies, body.Energy())
	}

	if err := w.Flush(); err != nil {
		return res, err
	}

	res.Steps = body.Steps()
	res.SimTime = body.Time()
	res.FinalEnergy = body.Energy()
	return res, nil
}
