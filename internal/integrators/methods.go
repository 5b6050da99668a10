package integrators

import (
	"fmt"

	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/tableau"
)

// Convenience constructors for the tableau catalog. Each call returns
// a fresh stepper with its own scratch buffers.

func NewEuler() *RK    { return NewRK(tableau.Euler()) }
func NewMidpoint() *RK { return NewRK(tableau.Midpoint()) }
func NewHeun() *RK     { return NewRK(tableau.Heun()) }
func NewRalston() *RK  { return NewRK(tableau.Ralston()) }
func NewKutta3() *RK   { return NewRK(tableau.Kutta3()) }
func NewRK4() *RK      { return NewRK(tableau.RK4()) }
func NewRK38() *RK     { return NewRK(tableau.RK38()) }
func NewDoPri5() *RK   { return NewRK(tableau.DoPri5()) }

var symplectic = map[string]func() ode.Integrator{
	"verlet":   func() ode.Integrator { return NewVerlet() },
	"leapfrog": func() ode.Integrator { return NewLeapfrog() },
}

// ByName constructs a fresh integrator. Runge-Kutta names come from
// the tableau catalog; "verlet" and "leapfrog" name the symplectic
// steppers for separable second-order systems.
func ByName(name string) (ode.Integrator, error) {
	if fn, ok := symplectic[name]; ok {
		return fn(), nil
	}
	tab, err := tableau.ByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return NewRK(tab), nil
}

// Names lists everything ByName accepts, Runge-Kutta methods first in
// ascending order of accuracy.
func Names() []string {
	names := tableau.Names()
	return append(names, "verlet", "leapfrog")
}
