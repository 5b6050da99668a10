package scenario

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/odelab/odelab/internal/config"
	"github.com/odelab/odelab/internal/ode"
)

const scenarioYAML = `name: stiffening
description: harmonic oscillator that stiffens mid-run
system: harmonic
method: rk4
dt: 0.1
x0: [1.0, 0.0]
phases:
  - name: soft
    duration: 1.0
  - name: stiff
    duration: 1.0
    params:
      stiffness: 4.0
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stiffening.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	sc, err := Load(writeScenario(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if sc.Name != "stiffening" || sc.System != "harmonic" || sc.Method != "rk4" {
		t.Errorf("got name=%s system=%s method=%s", sc.Name, sc.System, sc.Method)
	}
	if len(sc.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(sc.Phases))
	}
	if sc.Phases[1].Params["stiffness"] != 4.0 {
		t.Errorf("expected stiffness 4.0, got %f", sc.Phases[1].Params["stiffness"])
	}
	if sc.TotalDuration() != 2.0 {
		t.Errorf("expected total duration 2.0, got %f", sc.TotalDuration())
	}
}

func TestValidate(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			System: "harmonic",
			Method: "rk4",
			Dt:     0.1,
			Phases: []Phase{{Name: "only", Duration: 1}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"unknown system", func(sc *Scenario) { sc.System = "threebody" }},
		{"unknown method", func(sc *Scenario) { sc.Method = "adams" }},
		{"zero dt", func(sc *Scenario) { sc.Dt = 0 }},
		{"no phases", func(sc *Scenario) { sc.Phases = nil }},
		{"zero phase duration", func(sc *Scenario) { sc.Phases[0].Duration = 0 }},
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base scenario should validate: %v", err)
	}
	for _, tc := range cases {
		sc := base()
		tc.mutate(sc)
		if err := sc.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

type countObserver struct {
	n int
}

func (c *countObserver) OnStep(float64, ode.State) { c.n++ }

func TestRunStitchesPhases(t *testing.T) {
	sc, err := Load(writeScenario(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	obs := &countObserver{}
	res, err := Run(context.Background(), sc, obs)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Ten steps per phase plus the initial sample; the phase boundary
	// is recorded once.
	if len(res.Times) != 21 {
		t.Fatalf("expected 21 samples, got %d", len(res.Times))
	}
	if res.StepsTaken != 20 {
		t.Errorf("expected 20 steps, got %d", res.StepsTaken)
	}
	if obs.n != len(res.Times) {
		t.Errorf("observer saw %d samples, result has %d", obs.n, len(res.Times))
	}

	if res.Times[0] != 0 || res.Times[len(res.Times)-1] != 2.0 {
		t.Errorf("time range [%f, %f], want [0, 2]", res.Times[0], res.Times[len(res.Times)-1])
	}
	for i := 1; i < len(res.Times); i++ {
		if res.Times[i] <= res.Times[i-1] {
			t.Fatalf("times not strictly increasing at %d: %f then %f", i, res.Times[i-1], res.Times[i])
		}
	}
}

func TestRunParamsChangeDynamics(t *testing.T) {
	sc, err := Load(writeScenario(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	retuned, err := Run(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	sc.Phases[1].Params = nil
	plain, err := Run(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	a := retuned.States[len(retuned.States)-1]
	b := plain.States[len(plain.States)-1]
	if a.Sub(b).Norm() < 0.01 {
		t.Errorf("stiffness change had no effect: %v vs %v", a, b)
	}
}

func TestRunUnknownParam(t *testing.T) {
	sc := &Scenario{
		System: "harmonic",
		Method: "rk4",
		Dt:     0.1,
		Phases: []Phase{{Name: "bad", Duration: 1, Params: map[string]float64{"viscosity": 1}}},
	}

	if _, err := Run(context.Background(), sc, nil); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestSweep(t *testing.T) {
	base := config.Default()
	base.System = "vanderpol"
	base.Duration = 5
	base.X0 = []float64{0.1, 0}

	points, err := Sweep{Param: "mu", From: 0.5, To: 2.0, Steps: 4}.Run(context.Background(), base)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if math.Abs(points[1].Value-1.0) > 1e-12 {
		t.Errorf("expected second value 1.0, got %f", points[1].Value)
	}
	for _, p := range points {
		if !p.Final.IsValid() {
			t.Errorf("mu=%f: invalid final state", p.Value)
		}
		if _, ok := p.Metrics["amplitude"]; !ok {
			t.Errorf("mu=%f: missing amplitude metric", p.Value)
		}
	}
}

func TestSweepErrors(t *testing.T) {
	base := config.Default()
	base.Duration = 1

	if _, err := (Sweep{Param: "mu", From: 0, To: 1, Steps: 1}).Run(context.Background(), base); err == nil {
		t.Error("expected error for a single sweep step")
	}
	if _, err := (Sweep{Param: "viscosity", From: 0, To: 1, Steps: 3}).Run(context.Background(), base); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestMonteCarloReproducible(t *testing.T) {
	base := config.Default()
	base.Duration = 1
	base.Seed = 7
	base.X0 = []float64{1, 0}

	mc := MonteCarlo{Trials: 8, Perturbation: 0.1}
	first, err := mc.Run(context.Background(), base)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	second, err := mc.Run(context.Background(), base)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}

	if len(first) != 8 {
		t.Fatalf("expected 8 trials, got %d", len(first))
	}
	for i := range first {
		for j := range first[i].Start {
			if first[i].Start[j] != second[i].Start[j] {
				t.Fatalf("trial %d: seeds did not reproduce starts", i)
			}
		}
	}

	stable, unstable := Stats(first)
	if stable != 8 || unstable != 0 {
		t.Errorf("harmonic trials should all be stable, got %d/%d", stable, unstable)
	}
}

func TestMonteCarloUnstable(t *testing.T) {
	base := config.Default()
	base.System = "exponential"
	base.Duration = 1
	base.Seed = 3
	base.X0 = []float64{1}
	base.Params = map[string]float64{"rate": 20}

	trials, err := MonteCarlo{Trials: 4, Perturbation: 0.05}.Run(context.Background(), base)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}

	stable, unstable := Stats(trials)
	if stable != 0 || unstable != 4 {
		t.Errorf("rate-20 growth should blow past the bound, got %d/%d", stable, unstable)
	}
}

func TestMonteCarloTrialCount(t *testing.T) {
	if _, err := (MonteCarlo{Trials: 0}).Run(context.Background(), config.Default()); err == nil {
		t.Error("expected error for zero trials")
	}
}
