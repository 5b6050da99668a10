package systems

import (
	"fmt"
	"sort"

	"github.com/odelab/odelab/internal/ode"
)

var catalog = map[string]func() ode.System{
	"exponential": func() ode.System { return NewExponential() },
	"harmonic":    func() ode.System { return NewHarmonic() },
	"pendulum":    func() ode.System { return NewPendulum() },
	"vanderpol":   func() ode.System { return NewVanDerPol() },
	"lorenz":      func() ode.System { return NewLorenz() },
	"duffing":     func() ode.System { return NewDuffing() },
	"rossler":     func() ode.System { return NewRossler() },
	"doublewell":  func() ode.System { return NewDoubleWell() },
}

// ByName constructs a fresh system with default parameters.
func ByName(name string) (ode.System, error) {
	fn, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown system: %s", name)
	}
	return fn(), nil
}

// Names lists the catalog alphabetically.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultState returns the canonical initial condition for sys, or a
// unit vector when the system declares none.
func DefaultState(sys ode.System) ode.State {
	if init, ok := sys.(ode.Initializer); ok {
		return init.DefaultState()
	}
	y := make(ode.State, sys.Dim())
	for i := range y {
		y[i] = 1.0
	}
	return y
}
