// Package physics provides the mass-spring soft body that produces
// frame files.
//
// A [SoftBody] is a width x height grid of unit masses. Every pair of
// points closer than 1.5 at rest is joined by a damped Hooke spring, so
// each interior point has up to eight neighbours. The body is dropped
// from a configurable height and bounces on the ground line y = 0.
//
// # Example
//
//	body, _ := physics.NewSoftBody(physics.DefaultParams(), integrators.NewTrapezoid())
//	w, _ := frames.NewWriter(f, frames.Header{Width: 10, Height: 10, FrameCount: 900})
//	res, err := physics.Simulate(ctx, body, 900, 10, w)
package physics
