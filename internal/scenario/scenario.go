// Package scenario runs scripted simulations: multi-phase runs whose
// parameters change mid-flight, parameter sweeps, and Monte Carlo
// stability trials.
package scenario

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/solve"
	"github.com/odelab/odelab/internal/systems"
)

// Scenario is a scripted run: one system integrated through a sequence
// of phases. State carries over between phases; each phase may retune
// parameters before it starts.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	System      string    `yaml:"system"`
	Method      string    `yaml:"method"`
	Dt          float64   `yaml:"dt"`
	X0          []float64 `yaml:"x0,omitempty"`
	Phases      []Phase   `yaml:"phases"`
}

// Phase is one leg of a scenario.
type Phase struct {
	Name     string             `yaml:"name"`
	Duration float64            `yaml:"duration"`
	Params   map[string]float64 `yaml:"params,omitempty"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if _, err := systems.ByName(sc.System); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if _, err := integrators.ByName(sc.Method); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if sc.Dt <= 0 {
		return fmt.Errorf("scenario: dt must be positive, got %f", sc.Dt)
	}
	if len(sc.Phases) == 0 {
		return fmt.Errorf("scenario: no phases")
	}
	for i, ph := range sc.Phases {
		if ph.Duration <= 0 {
			return fmt.Errorf("scenario: phase %d (%s): duration must be positive, got %f", i+1, ph.Name, ph.Duration)
		}
	}
	return nil
}

// TotalDuration is the sum of all phase durations.
func (sc *Scenario) TotalDuration() float64 {
	total := 0.0
	for _, ph := range sc.Phases {
		total += ph.Duration
	}
	return total
}

// Run executes the scenario from t = 0 and stitches the phases into a
// single result. obs, when non-nil, sees every recorded sample exactly
// once, phase boundaries included. On error the samples gathered so
// far are returned alongside it.
func Run(ctx context.Context, sc *Scenario, obs ode.Observer) (*ode.Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	sys, err := systems.ByName(sc.System)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(sc.Method)
	if err != nil {
		return nil, err
	}

	x0 := ode.State(sc.X0)
	if len(x0) == 0 {
		x0 = systems.DefaultState(sys)
	}

	s := solve.New(sys, integ)
	if err := s.SetInitialValue(0, x0); err != nil {
		return nil, err
	}

	capacity := int(sc.TotalDuration()/sc.Dt) + len(sc.Phases) + 1
	total := &ode.Result{
		Times:   make([]float64, 0, capacity),
		States:  make([]ode.State, 0, capacity),
		Metrics: make(map[string]float64),
	}

	record := func(t float64, y ode.State) bool {
		total.Times = append(total.Times, t)
		total.States = append(total.States, y)
		if obs != nil {
			obs.OnStep(t, y)
		}
		return true
	}

	tEnd := 0.0
	for i, ph := range sc.Phases {
		if len(ph.Params) > 0 {
			tunable, ok := sys.(ode.Configurable)
			if !ok {
				return total, fmt.Errorf("scenario: system %s takes no parameters", sc.System)
			}
			for k, v := range ph.Params {
				if err := tunable.SetParam(k, v); err != nil {
					return total, fmt.Errorf("scenario: phase %d (%s): %w", i+1, ph.Name, err)
				}
			}
		}

		// Each phase re-emits the boundary sample it starts from;
		// skip it everywhere but the very first phase.
		skipFirst := i > 0
		tEnd += ph.Duration
		err := s.SolveWithCallback(ctx, tEnd, ode.Config{Dt: sc.Dt, ValidateState: true}, func(t float64, y ode.State) bool {
			if skipFirst {
				skipFirst = false
				return true
			}
			return record(t, y)
		})
		if err != nil {
			return total, fmt.Errorf("scenario: phase %d (%s): %w", i+1, ph.Name, err)
		}
	}

	total.StepsTaken = len(total.Times) - 1
	if h, ok := sys.(ode.Hamiltonian); ok {
		e0 := h.Energy(total.States[0])
		if e0 != 0 {
			eN := h.Energy(total.States[len(total.States)-1])
			total.EnergyDrift = math.Abs(eN-e0) / math.Abs(e0)
		}
	}

	return total, nil
}
