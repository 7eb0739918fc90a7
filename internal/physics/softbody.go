package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/softplot/internal/integrators"
)

const (
	// springReach is the largest initial distance joined by a spring:
	// direct and diagonal grid neighbours.
	springReach = 1.5

	// collisionDistance is the separation below which two joined points
	// exchange momentum instead of feeling a spring force.
	collisionDistance = 0.1
)

// Params configure a soft body.
type Params struct {
	Width          int
	Height         int
	DroppingHeight float64
	Stiffness      float64
	Damping        float64
	Gravity        float64
	Dt             float64
}

func DefaultParams() Params {
	return Params{
		Width:          10,
		Height:         10,
		DroppingHeight: 10,
		Stiffness:      100,
		Damping:        10,
		Gravity:        1,
		Dt:             0.01,
	}
}

// Point is a unit mass.
type Point struct {
	Pos   integrators.Vec2
	Vel   integrators.Vec2
	Force integrators.Vec2
}

// Spring joins points A and B with rest length Rest.
type Spring struct {
	A, B int
	Rest float64
}

// SoftBody is a grid of unit masses joined by damped springs, falling
// under gravity onto the ground line y = 0.
type SoftBody struct {
	params  Params
	integ   integrators.Integrator
	Points  []Point
	Springs []Spring
	steps   int
}

// SpringCount is the number of springs for a width x height grid.
func SpringCount(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return 4*width*height - 3*(width+height) + 2
}

// NewSoftBody lays points out at (i, j + DroppingHeight) in row-major
// order and joins every pair closer than springReach.
func NewSoftBody(p Params, integ integrators.Integrator) (*SoftBody, error) {
	if p.Width < 0 || p.Height < 0 {
		return nil, fmt.Errorf("soft body: negative grid %dx%d", p.Width, p.Height)
	}
	if p.Dt <= 0 {
		return nil, fmt.Errorf("soft body: dt must be positive, got %g", p.Dt)
	}
	if integ == nil {
		integ = integrators.NewTrapezoid()
	}

	size := p.Width * p.Height
	b := &SoftBody{
		params:  p,
		integ:   integ,
		Points:  make([]Point, size),
		Springs: make([]Spring, 0, SpringCount(p.Width, p.Height)),
	}

	for j := 0; j < p.Height; j++ {
		for i := 0; i < p.Width; i++ {
			b.Points[i+p.Width*j] = Point{
				Pos:   integrators.Vec2{float64(i), float64(j) + p.DroppingHeight},
				Force: integrators.Vec2{0, -p.Gravity},
			}
		}
	}

	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			d := distance(b.Points[i].Pos, b.Points[j].Pos)
			if d < springReach {
				b.Springs = append(b.Springs, Spring{A: i, B: j, Rest: d})
			}
		}
	}

	return b, nil
}

func (b *SoftBody) Params() Params { return b.params }

// Steps is the number of Step calls so far.
func (b *SoftBody) Steps() int { return b.steps }

// Time is the simulated time.
func (b *SoftBody) Time() float64 { return float64(b.steps) * b.params.Dt }

// Step applies spring forces then advances every point by one dt.
func (b *SoftBody) Step() {
	for _, s := range b.Springs {
		b.applySpring(s)
	}

	for i := range b.Points {
		p := &b.Points[i]
		b.integ.Advance(&p.Pos, &p.Vel, p.Force, b.params.Dt)

		if p.Pos[1] < 0 && p.Vel[1] < 0 {
			p.Vel[1] = -p.Vel[1]
		}

		p.Force = integrators.Vec2{0, -b.params.Gravity}
	}
	b.steps++
}

func (b *SoftBody) applySpring(s Spring) {
	p1, p2 := &b.Points[s.A], &b.Points[s.B]

	axis := integrators.Vec2{p2.Pos[0] - p1.Pos[0], p2.Pos[1] - p1.Pos[1]}
	length := norm(axis)
	if length == 0 {
		return
	}
	axis[0] /= length
	axis[1] /= length

	if length < collisionDistance {
		m1 := dot(p1.Vel, axis)
		p1.Vel[0] -= 2 * m1 * axis[0]
		p1.Vel[1] -= 2 * m1 * axis[1]
		m2 := dot(p2.Vel, axis)
		p2.Vel[0] -= 2 * m2 * axis[0]
		p2.Vel[1] -= 2 * m2 * axis[1]
		return
	}

	relVel := integrators.Vec2{p2.Vel[0] - p1.Vel[0], p2.Vel[1] - p1.Vel[1]}
	magnitude := (length-s.Rest)*b.params.Stiffness + dot(axis, relVel)*b.params.Damping
	f := integrators.Vec2{magnitude * axis[0], magnitude * axis[1]}

	p1.Force[0] += f[0]
	p1.Force[1] += f[1]
	p2.Force[0] -= f[0]
	p2.Force[1] -= f[1]
}

// Positions returns the x and y coordinates in point order.
func (b *SoftBody) Positions() (xs, ys []float64) {
	xs = make([]float64, len(b.Points))
	ys = make([]float64, len(b.Points))
	for i, p := range b.Points {
		xs[i], ys[i] = p.Pos[0], p.Pos[1]
	}
	return xs, ys
}

// Energy is kinetic plus gravitational plus spring potential energy.
func (b *SoftBody) Energy() float64 {
	e := 0.0
	for _, p := range b.Points {
		e += 0.5*dot(p.Vel, p.Vel) + b.params.Gravity*p.Pos[1]
	}
	for _, s := range b.Springs {
		stretch := distance(b.Points[s.A].Pos, b.Points[s.B].Pos) - s.Rest
		e += 0.5 * b.params.Stiffness * stretch * stretch
	}
	return e
}

// IsValid reports whether every coordinate is finite.
func (b *SoftBody) IsValid() bool {
	for _, p := range b.Points {
		for _, v := range [4]float64{p.Pos[0], p.Pos[1], p.Vel[0], p.Vel[1]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func dot(a, b integrators.Vec2) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

func norm(a integrators.Vec2) float64 {
	return math.Sqrt(dot(a, a))
}

func distance(a, b integrators.Vec2) float64 {
	return norm(integrators.Vec2{b[0] - a[0], b[1] - a[1]})
}
