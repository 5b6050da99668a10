package systems

import (
	"fmt"
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// Exponential is the scalar test problem dy/dt = rate*y with exact
// solution y0*exp(rate*t). Positive rates grow, negative rates decay.
type Exponential struct {
	Rate float64
}

func NewExponential() *Exponential { return &Exponential{Rate: 1.0} }

func (e *Exponential) Dim() int { return 1 }

func (e *Exponential) Derive(_ float64, y ode.State) ode.State {
	return ode.State{e.Rate * y[0]}
}

func (e *Exponential) DefaultState() ode.State { return ode.State{1.0} }

// Exact returns the analytic solution at time t for initial value y0.
func (e *Exponential) Exact(y0, t float64) float64 {
	return y0 * math.Exp(e.Rate*t)
}

func (e *Exponential) GetParams() map[string]float64 {
	return map[string]float64{"rate": e.Rate}
}

func (e *Exponential) SetParam(name string, value float64) error {
	if name != "rate" {
		return fmt.Errorf("unknown param: %s", name)
	}
	e.Rate = value
	return nil
}
