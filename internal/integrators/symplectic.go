package integrators

// Symplectic is semi-implicit Euler: velocity first, then position with
// the new velocity. It keeps oscillator energy bounded.
type Symplectic struct{}

func NewSymplectic() *Symplectic {
	return &Symplectic{}
}

func (s *Symplectic) Name() string { return "symplectic" }

func (s *Symplectic) Advance(pos, vel *Vec2, acc Vec2, dt float64) {
	for i := 0; i < 2; i++ {
		vel[i] += acc[i] * dt
		pos[i] += vel[i] * dt
	}
}
