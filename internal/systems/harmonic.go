package systems

import (
	"fmt"
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// Harmonic is a mass on a linear spring with optional viscous damping.
// State: [x, v].
type Harmonic struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewHarmonic() *Harmonic {
	return &Harmonic{
		Mass:      1.0,
		Stiffness: 1.0,
		Damping:   0.0,
	}
}

func (h *Harmonic) Dim() int { return 2 }

func (h *Harmonic) Derive(_ float64, y ode.State) ode.State {
	x, v := y[0], y[1]
	return ode.State{v, (-h.Stiffness*x - h.Damping*v) / h.Mass}
}

func (h *Harmonic) DefaultState() ode.State { return ode.State{1.0, 0.0} }

// Omega returns the natural angular frequency sqrt(k/m).
func (h *Harmonic) Omega() float64 { return math.Sqrt(h.Stiffness / h.Mass) }

func (h *Harmonic) Energy(y ode.State) float64 {
	x, v := y[0], y[1]
	return 0.5*h.Mass*v*v + 0.5*h.Stiffness*x*x
}

func (h *Harmonic) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":      h.Mass,
		"stiffness": h.Stiffness,
		"damping":   h.Damping,
	}
}

func (h *Harmonic) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		h.Mass = value
	case "stiffness":
		h.Stiffness = value
	case "damping":
		h.Damping = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
