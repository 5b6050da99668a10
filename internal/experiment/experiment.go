package experiment

import (
	"context"
	"fmt"

	"github.com/odelab/odelab/internal/config"
	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/metrics"
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/solve"
	"github.com/odelab/odelab/internal/systems"
)

// Experiment is a fully assembled run: the system with parameter
// overrides applied, the integrator, and a seeded solver carrying the
// default metric set.
type Experiment struct {
	Config *config.Config
	System ode.System
	Method ode.Integrator
	Solver *solve.Solver
}

// Build assembles an experiment from a run description. Parameter
// overrides are applied before the solver is seeded, and an empty x0
// falls back to the system's canonical initial state.
func Build(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sys, err := systems.ByName(cfg.System)
	if err != nil {
		return nil, err
	}

	if len(cfg.Params) > 0 {
		tunable, ok := sys.(ode.Configurable)
		if !ok {
			return nil, fmt.Errorf("system %s takes no parameters", cfg.System)
		}
		for name, value := range cfg.Params {
			if err := tunable.SetParam(name, value); err != nil {
				return nil, err
			}
		}
	}

	integ, err := integrators.ByName(cfg.Method)
	if err != nil {
		return nil, err
	}

	x0 := ode.State(cfg.X0)
	if len(x0) == 0 {
		x0 = systems.DefaultState(sys)
	}

	s := solve.New(sys, integ)
	for _, m := range metrics.ForSystem(sys) {
		s.AddMetric(m)
	}
	if err := s.SetInitialValue(cfg.T0, x0); err != nil {
		return nil, err
	}

	return &Experiment{
		Config: cfg,
		System: sys,
		Method: integ,
		Solver: s,
	}, nil
}

// SolveConfig converts the run description into solver options.
func (e *Experiment) SolveConfig() ode.Config {
	return ode.Config{
		Dt:            e.Config.Dt,
		MaxSteps:      e.Config.MaxSteps,
		ValidateState: e.Config.ValidateState,
		Seed:          e.Config.Seed,
	}
}

// End returns the requested end time t0 + duration.
func (e *Experiment) End() float64 {
	return e.Config.T0 + e.Config.Duration
}

// Run integrates over the configured span.
func (e *Experiment) Run(ctx context.Context) (*ode.Result, error) {
	return e.Solver.Solve(ctx, e.End(), e.SolveConfig())
}
