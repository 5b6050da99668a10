package systems

import (
	"fmt"

	"github.com/odelab/odelab/internal/ode"
)

// VanDerPol is the Van der Pol relaxation oscillator.
// State: [x, v] where v = dx/dt
// Equations:
//
//	dx/dt = v
//	dv/dt = μ(1 - x²)v - x
type VanDerPol struct {
	mu float64 // nonlinearity and damping strength
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{
		mu: 1.0, // classic value for a pronounced limit cycle
	}
}

func (v *VanDerPol) Dim() int { return 2 }

func (v *VanDerPol) Derive(_ float64, y ode.State) ode.State {
	x, vel := y[0], y[1]

	dx := vel
	dv := v.mu*(1-x*x)*vel - x

	return ode.State{dx, dv}
}

func (v *VanDerPol) DefaultState() ode.State {
	return ode.State{2.0, 0.0}
}

func (v *VanDerPol) GetParams() map[string]float64 {
	return map[string]float64{"mu": v.mu}
}

func (v *VanDerPol) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("unknown param: %s", name)
	}
	v.mu = value
	return nil
}
