package integrators

// Trapezoid updates velocity with a forward step and moves the position
// by the mean of old and new velocity.
type Trapezoid struct{}

func NewTrapezoid() *Trapezoid {
	return &Trapezoid{}
}

func (t *Trapezoid) Name() string { return "trapezoid" }

func (t *Trapezoid) Advance(pos, vel *Vec2, acc Vec2, dt float64) {
	for i := 0; i < 2; i++ {
		next := vel[i] + acc[i]*dt
		pos[i] += (vel[i] + next) * 0.5 * dt
		vel[i] = next
	}
}
