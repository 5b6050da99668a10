package scenario

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/odelab/odelab/internal/config"
	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/solve"
	"github.com/odelab/odelab/internal/systems"
)

// MonteCarlo runs many trials of one configuration from randomly
// perturbed initial states and classifies which stayed bounded. The
// base config's Seed makes the perturbations reproducible; a zero seed
// draws from the clock.
type MonteCarlo struct {
	Trials       int
	Perturbation float64
	Bound        float64 // |y| past which a trial counts as unstable; 0 means 1e6
}

// Trial is the outcome of one perturbed run.
type Trial struct {
	Start  ode.State
	Final  ode.State
	Stable bool
}

func (mc MonteCarlo) Run(ctx context.Context, base *config.Config) ([]Trial, error) {
	if mc.Trials <= 0 {
		return nil, fmt.Errorf("scenario: trials must be positive, got %d", mc.Trials)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	sys, err := systems.ByName(base.System)
	if err != nil {
		return nil, err
	}
	if len(base.Params) > 0 {
		tunable, ok := sys.(ode.Configurable)
		if !ok {
			return nil, fmt.Errorf("scenario: system %s takes no parameters", base.System)
		}
		for k, v := range base.Params {
			if err := tunable.SetParam(k, v); err != nil {
				return nil, err
			}
		}
	}

	x0 := ode.State(base.X0)
	if len(x0) == 0 {
		x0 = systems.DefaultState(sys)
	}

	rng := rand.New(rand.NewSource(base.Seed))
	if base.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	starts := make([]ode.State, mc.Trials)
	for i := range starts {
		y := x0.Clone()
		for j := range y {
			y[j] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}
		starts[i] = y
	}

	// Validation stays off so runaway trials finish and get classified
	// instead of aborting the batch.
	ens := solve.NewEnsemble(sys, func() ode.Integrator {
		integ, _ := integrators.ByName(base.Method)
		return integ
	})
	results, err := ens.Run(ctx, base.T0, base.T0+base.Duration, starts, ode.Config{
		Dt:       base.Dt,
		MaxSteps: base.MaxSteps,
	})
	if err != nil {
		return nil, err
	}

	bound := mc.Bound
	if bound == 0 {
		bound = 1e6
	}

	trials := make([]Trial, mc.Trials)
	for i, res := range results {
		fin := res.States[len(res.States)-1]
		trials[i] = Trial{
			Start:  starts[i],
			Final:  fin,
			Stable: fin.IsValid() && fin.Norm() <= bound,
		}
	}

	return trials, nil
}

// Stats counts stable and unstable trials.
func Stats(trials []Trial) (stable, unstable int) {
	for _, tr := range trials {
		if tr.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return stable, unstable
}
