package solve

import (
	"context"
	"sync"

	"github.com/odelab/odelab/internal/ode"
)

// Ensemble integrates many trajectories of one system in parallel,
// one goroutine per initial condition. Every run gets a fresh
// integrator from newInteg because steppers carry scratch buffers and
// cannot be shared.
type Ensemble struct {
	sys      ode.System
	newInteg func() ode.Integrator
}

func NewEnsemble(sys ode.System, newInteg func() ode.Integrator) *Ensemble {
	return &Ensemble{sys: sys, newInteg: newInteg}
}

// Run integrates every start state from t0 to tEnd. Results are
// ordered like starts; any per-run error fails the whole batch.
func (e *Ensemble) Run(ctx context.Context, t0, tEnd float64, starts []ode.State, cfg ode.Config) ([]*ode.Result, error) {
	results := make([]*ode.Result, len(starts))
	errs := make([]error, len(starts))

	var wg sync.WaitGroup
	for i := range starts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s := New(e.sys, e.newInteg())
			if err := s.SetInitialValue(t0, starts[idx]); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Solve(ctx, tEnd, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
