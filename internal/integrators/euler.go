package integrators

// Euler is the explicit forward Euler step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Advance(pos, vel *Vec2, acc Vec2, dt float64) {
	for i := 0; i < 2; i++ {
		pos[i] += vel[i] * dt
		vel[i] += acc[i] * dt
	}
}
