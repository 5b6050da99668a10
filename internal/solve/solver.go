package solve

import (
	"context"
	"fmt"
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// Solver drives one system/integrator pair forward or backward in
// time. It owns the current (t, y) pair: SetInitialValue seeds it,
// Step and Solve advance it.
//
// A Solver is not safe for concurrent use; see [Ensemble] for running
// many trajectories in parallel.
type Solver struct {
	sys       ode.System
	integ     ode.Integrator
	metrics   []ode.Metric
	observers []ode.Observer

	t      float64
	y      ode.State
	primed bool
}

func New(sys ode.System, integ ode.Integrator) *Solver {
	return &Solver{
		sys:       sys,
		integ:     integ,
		metrics:   make([]ode.Metric, 0),
		observers: make([]ode.Observer, 0),
	}
}

func (s *Solver) AddMetric(m ode.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o ode.Observer) { s.observers = append(s.observers, o) }

// SetInitialValue seeds the solver at (t0, y0). The state is copied.
func (s *Solver) SetInitialValue(t0 float64, y0 ode.State) error {
	if len(y0) != s.sys.Dim() {
		return fmt.Errorf("%w: state has dim %d, system wants %d", ode.ErrDimensionMismatch, len(y0), s.sys.Dim())
	}
	s.t = t0
	s.y = y0.Clone()
	s.primed = true
	return nil
}

// Time returns the current solver time.
func (s *Solver) Time() float64 { return s.t }

// State returns a copy of the current state.
func (s *Solver) State() ode.State { return s.y.Clone() }

// Step advances exactly one integrator step of signed size dt and
// returns a copy of the new state. Nothing is validated here; runaway
// values flow through untouched. SetInitialValue must have been called.
func (s *Solver) Step(dt float64) ode.State {
	s.y = s.integ.Step(s.sys, s.y, s.t, dt)
	s.t += dt
	return s.y.Clone()
}

// Solve integrates from the current time to tEnd and collects the
// trajectory. The sign of tEnd - Time() picks the direction, and the
// final step is shortened to land exactly on tEnd. On cancellation,
// state validation failure, or a MaxSteps overrun, the partial result
// gathered so far is returned alongside the error.
func (s *Solver) Solve(ctx context.Context, tEnd float64, cfg ode.Config) (*ode.Result, error) {
	if !s.primed {
		return nil, ode.ErrNoInitialValue
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	maxSteps := cfg.MaxSteps
	if maxSteps == 0 {
		maxSteps = ode.DefaultConfig().MaxSteps
	}

	span := math.Abs(tEnd - s.t)
	capacity := int(span/cfg.Dt) + 2
	result := &ode.Result{
		Times:   make([]float64, 0, capacity),
		States:  make([]ode.State, 0, capacity),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	dir := 1.0
	if tEnd < s.t {
		dir = -1.0
	}

	s.observe(result)
	initialEnergy := s.energy()

	for i := 0; dir*(tEnd-s.t) > 0; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy)
			return result, ctx.Err()
		default:
		}

		if i >= maxSteps {
			s.finish(result, initialEnergy)
			return result, fmt.Errorf("%w: %d steps before reaching t=%g", ode.ErrMaxSteps, maxSteps, tEnd)
		}

		h := dir * cfg.Dt
		// The slack absorbs float accumulation so a run never ends on
		// a vanishingly small leftover step.
		last := math.Abs(tEnd-s.t) <= cfg.Dt*(1+1e-9)
		if last {
			h = tEnd - s.t
		}

		s.y = s.integ.Step(s.sys, s.y, s.t, h)
		if last {
			s.t = tEnd
		} else {
			s.t += h
		}
		result.StepsTaken++

		if cfg.ValidateState && !s.y.IsValid() {
			s.finish(result, initialEnergy)
			return result, &ode.SolveError{Step: i, Time: s.t, State: s.y.Clone(), Wrapped: ode.ErrInvalidState}
		}

		s.observe(result)
	}

	s.finish(result, initialEnergy)
	return result, nil
}

// SolveWithCallback integrates like Solve but streams samples to fn
// instead of buffering them. fn sees the initial sample and then one
// sample per step; returning false stops the run early with no error.
func (s *Solver) SolveWithCallback(ctx context.Context, tEnd float64, cfg ode.Config, fn func(t float64, y ode.State) bool) error {
	if !s.primed {
		return ode.ErrNoInitialValue
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	maxSteps := cfg.MaxSteps
	if maxSteps == 0 {
		maxSteps = ode.DefaultConfig().MaxSteps
	}

	dir := 1.0
	if tEnd < s.t {
		dir = -1.0
	}

	if !fn(s.t, s.y.Clone()) {
		return nil
	}

	for i := 0; dir*(tEnd-s.t) > 0; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if i >= maxSteps {
			return fmt.Errorf("%w: %d steps before reaching t=%g", ode.ErrMaxSteps, maxSteps, tEnd)
		}

		h := dir * cfg.Dt
		last := math.Abs(tEnd-s.t) <= cfg.Dt*(1+1e-9)
		if last {
			h = tEnd - s.t
		}

		s.y = s.integ.Step(s.sys, s.y, s.t, h)
		if last {
			s.t = tEnd
		} else {
			s.t += h
		}

		if cfg.ValidateState && !s.y.IsValid() {
			return &ode.SolveError{Step: i, Time: s.t, State: s.y.Clone(), Wrapped: ode.ErrInvalidState}
		}

		if !fn(s.t, s.y.Clone()) {
			return nil
		}
	}

	return nil
}

func (s *Solver) observe(result *ode.Result) {
	for _, m := range s.metrics {
		m.Observe(s.t, s.y)
	}
	for _, o := range s.observers {
		o.OnStep(s.t, s.y)
	}
	result.Times = append(result.Times, s.t)
	result.States = append(result.States, s.y.Clone())
}

func (s *Solver) finish(result *ode.Result, initialEnergy float64) {
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(s.energy()-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Solver) energy() float64 {
	if h, ok := s.sys.(ode.Hamiltonian); ok {
		return h.Energy(s.y)
	}
	return 0
}

func validateConfig(cfg ode.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.MaxSteps < 0 {
		return fmt.Errorf("max steps must be non-negative, got %d", cfg.MaxSteps)
	}
	return nil
}
