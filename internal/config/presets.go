package config

import "sort"

// Presets are named soft-body setups for the simulate command.
var Presets = map[string]SimulationConfig{
	"default": DefaultSimulation(),
	"jelly": {
		Width: 10, Height: 10, Frames: 900, DroppingHeight: 10,
		Stiffness: 30, Damping: 2, Gravity: 1, Dt: 0.01, Substeps: 10,
		Integrator: "trapezoid",
	},
	"stiff": {
		Width: 10, Height: 10, Frames: 600, DroppingHeight: 10,
		Stiffness: 400, Damping: 20, Gravity: 1, Dt: 0.005, Substeps: 20,
		Integrator: "symplectic",
	},
	"tall": {
		Width: 4, Height: 16, Frames: 900, DroppingHeight: 6,
		Stiffness: 150, Damping: 10, Gravity: 1, Dt: 0.01, Substeps: 10,
		Integrator: "trapezoid",
	},
	"large": {
		Width: 20, Height: 12, Frames: 600, DroppingHeight: 8,
		Stiffness: 100, Damping: 10, Gravity: 1, Dt: 0.01, Substeps: 10,
		Integrator: "trapezoid",
	},
}

func GetPreset(name string) (SimulationConfig, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
