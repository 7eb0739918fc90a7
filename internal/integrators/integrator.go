package integrators

import (
	"fmt"
	"sort"
)

// Vec2 is a planar vector.
type Vec2 [2]float64

// Integrator advances one point mass by dt under a constant acceleration.
type Integrator interface {
	Name() string
	Advance(pos, vel *Vec2, acc Vec2, dt float64)
}

var registry = map[string]func() Integrator{
	"euler":      func() Integrator { return NewEuler() },
	"symplectic": func() Integrator { return NewSymplectic() },
	"trapezoid":  func() Integrator { return NewTrapezoid() },
}

// Get returns the integrator registered under name.
func Get(name string) (Integrator, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
