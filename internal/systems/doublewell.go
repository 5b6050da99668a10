package systems

import (
	"fmt"
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// DoubleWell models a particle in the bistable potential
// V(x) = A(x² - B)², with wells at x = ±sqrt(B).
type DoubleWell struct {
	A, B, Mass, Damping float64
}

func NewDoubleWell() *DoubleWell {
	return &DoubleWell{1.0, 1.0, 1.0, 0.1}
}

func (d *DoubleWell) Dim() int { return 2 }

func (d *DoubleWell) Derive(_ float64, s ode.State) ode.State {
	x, v := s[0], s[1]
	return ode.State{v, (-4*d.A*x*(x*x-d.B) - d.Damping*v) / d.Mass}
}

// DefaultState starts the particle slightly off the right well minimum.
func (d *DoubleWell) DefaultState() ode.State { return ode.State{math.Sqrt(d.B) + 0.1, 0} }

func (d *DoubleWell) Energy(s ode.State) float64 {
	x, v := s[0], s[1]
	return 0.5*d.Mass*v*v + d.A*(x*x-d.B)*(x*x-d.B)
}

func (d *DoubleWell) GetParams() map[string]float64 {
	return map[string]float64{"A": d.A, "B": d.B, "mass": d.Mass, "damping": d.Damping}
}

func (d *DoubleWell) SetParam(n string, v float64) error {
	switch n {
	case "A":
		d.A = v
	case "B":
		d.B = v
	case "mass":
		d.Mass = v
	case "damping":
		d.Damping = v
	default:
		return fmt.Errorf("unknown param: %s", n)
	}
	return nil
}
