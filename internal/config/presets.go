package config

import "sort"

var Presets = map[string]map[string]*Config{
	"exponential": {
		"growth": {
			System: "exponential", Method: "rk4", Dt: 0.01, Duration: 5.0,
			X0: []float64{1.0},
		},
		"decay": {
			System: "exponential", Method: "rk4", Dt: 0.01, Duration: 5.0,
			X0: []float64{1.0}, Params: map[string]float64{"rate": -1.0},
		},
	},
	"harmonic": {
		"default": {
			System: "harmonic", Method: "rk4", Dt: 0.01, Duration: 20.0,
			X0: []float64{1.0, 0.0},
		},
		"damped": {
			System: "harmonic", Method: "rk4", Dt: 0.01, Duration: 20.0,
			X0: []float64{1.0, 0.0}, Params: map[string]float64{"damping": 0.2},
		},
		"stiff": {
			System: "harmonic", Method: "dopri5", Dt: 0.001, Duration: 5.0,
			X0: []float64{1.0, 0.0}, Params: map[string]float64{"stiffness": 100.0},
		},
	},
	"pendulum": {
		"small": {
			System: "pendulum", Method: "rk4", Dt: 0.01, Duration: 20.0,
			X0: []float64{0.2, 0.0},
		},
		"large": {
			System: "pendulum", Method: "rk4", Dt: 0.01, Duration: 20.0,
			X0: []float64{2.5, 0.0},
		},
		"spinning": {
			System: "pendulum", Method: "verlet", Dt: 0.01, Duration: 30.0,
			X0: []float64{0.1, 8.0},
		},
	},
	"vanderpol": {
		"limit_cycle": {
			System: "vanderpol", Method: "rk4", Dt: 0.01, Duration: 40.0,
			X0: []float64{2.0, 0.0},
		},
		"relaxation": {
			System: "vanderpol", Method: "dopri5", Dt: 0.001, Duration: 40.0,
			X0: []float64{0.5, 0.0}, Params: map[string]float64{"mu": 5.0},
		},
	},
	"lorenz": {
		"classic": {
			System: "lorenz", Method: "rk4", Dt: 0.005, Duration: 50.0,
			X0: []float64{1.0, 1.0, 1.0},
		},
		"calm": {
			System: "lorenz", Method: "rk4", Dt: 0.005, Duration: 50.0,
			X0: []float64{1.0, 1.0, 1.0}, Params: map[string]float64{"rho": 14.0},
		},
	},
	"duffing": {
		"chaotic": {
			System: "duffing", Method: "rk4", Dt: 0.005, Duration: 100.0,
			X0: []float64{1.0, 0.0},
		},
		"gentle": {
			System: "duffing", Method: "rk4", Dt: 0.01, Duration: 50.0,
			X0: []float64{1.0, 0.0}, Params: map[string]float64{"gamma": 0.1},
		},
	},
	"rossler": {
		"classic": {
			System: "rossler", Method: "rk4", Dt: 0.01, Duration: 100.0,
			X0: []float64{1.0, 1.0, 1.0},
		},
	},
	"doublewell": {
		"trapped": {
			System: "doublewell", Method: "rk4", Dt: 0.01, Duration: 30.0,
			X0: []float64{1.1, 0.0},
		},
		"hopping": {
			System: "doublewell", Method: "rk4", Dt: 0.01, Duration: 50.0,
			X0: []float64{0.0, 1.6}, Params: map[string]float64{"damping": 0.0},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil when either
// name is unknown.
func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	// Preset literals leave ValidateState unset; runs want it on.
	out.ValidateState = true
	return out
}

// ListPresets names the presets for a system in sorted order.
func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
