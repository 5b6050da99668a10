package integrators

import (
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/tableau"
)

// RK is an explicit Runge-Kutta stepper driven by a Butcher tableau.
// One code path serves every method in the catalog; the coefficients
// decide the order and the per-step cost.
//
// A stepper reuses per-stage scratch buffers between calls, so a
// single value must not be shared across goroutines. Independent
// goroutines should each construct their own.
type RK struct {
	tab *tableau.Tableau
	a   [][]float64
	b   []float64
	c   []float64

	k  []ode.State
	yi ode.State
}

// NewRK wraps an already validated tableau in a stepper.
func NewRK(tab *tableau.Tableau) *RK {
	return &RK{tab: tab, a: tab.A(), b: tab.B(), c: tab.C()}
}

func (r *RK) Name() string { return r.tab.Name() }

func (r *RK) Order() int { return r.tab.Order() }

func (r *RK) ensureScratch(n int) {
	if len(r.yi) == n {
		return
	}
	r.k = make([]ode.State, r.tab.Stages())
	for i := range r.k {
		r.k[i] = make(ode.State, n)
	}
	r.yi = make(ode.State, n)
}

// Step advances y from t to t+dt and returns the new state. The sign
// of dt selects the direction: a negative dt integrates backward. The
// input state is never modified and nothing is validated here; a
// caller feeding NaN gets NaN back.
//
// Stage i evaluates the derivative at t + c[i]*dt on the state
// y + dt * sum_{j<i} a[i][j]*k[j]; zero coefficients are skipped, so
// sparse tableaus pay only for their nonzero entries.
func (r *RK) Step(sys ode.System, y ode.State, t, dt float64) ode.State {
	n := len(y)
	r.ensureScratch(n)

	for i := range r.k {
		copy(r.yi, y)
		for j := 0; j < i; j++ {
			if aij := r.a[i][j]; aij != 0 {
				r.yi.AXPY(dt*aij, r.k[j])
			}
		}
		copy(r.k[i], sys.Derive(t+r.c[i]*dt, r.yi))
	}

	result := y.Clone()
	for i, bi := range r.b {
		if bi != 0 {
			result.AXPY(dt*bi, r.k[i])
		}
	}
	return result
}
