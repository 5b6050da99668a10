package systems

import (
	"fmt"
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// Duffing is the periodically forced nonlinear oscillator
//
//	x'' + δx' + αx + βx³ = γ cos(ωt)
//
// State: [x, v]. The forcing term makes it the one catalog system
// whose derivative depends on t directly.
type Duffing struct {
	Alpha, Beta, Delta, Gamma, Omega float64
}

func NewDuffing() *Duffing { return &Duffing{-1.0, 1.0, 0.3, 0.5, 1.2} }

func (d *Duffing) Dim() int { return 2 }

func (d *Duffing) Derive(t float64, s ode.State) ode.State {
	x, v := s[0], s[1]
	return ode.State{v, -d.Delta*v - d.Alpha*x - d.Beta*x*x*x + d.Gamma*math.Cos(d.Omega*t)}
}

func (d *Duffing) DefaultState() ode.State { return ode.State{1.0, 0.0} }

// Energy is the Hamiltonian of the unforced, undamped oscillator. It
// is not conserved while the forcing acts.
func (d *Duffing) Energy(s ode.State) float64 {
	x, v := s[0], s[1]
	return 0.5*v*v + 0.5*d.Alpha*x*x + 0.25*d.Beta*x*x*x*x
}

func (d *Duffing) GetParams() map[string]float64 {
	return map[string]float64{"alpha": d.Alpha, "beta": d.Beta, "delta": d.Delta, "gamma": d.Gamma, "omega": d.Omega}
}

func (d *Duffing) SetParam(n string, v float64) error {
	switch n {
	case "alpha":
		d.Alpha = v
	case "beta":
		d.Beta = v
	case "delta":
		d.Delta = v
	case "gamma":
		d.Gamma = v
	case "omega":
		d.Omega = v
	default:
		return fmt.Errorf("unknown param: %s", n)
	}
	return nil
}
