package integrators

import (
	"math"
	"testing"

	"github.com/odelab/odelab/internal/ode"
)

type exponentialGrowth struct{}

func (exponentialGrowth) Dim() int { return 1 }
func (exponentialGrowth) Derive(t float64, y ode.State) ode.State {
	return ode.State{y[0]}
}

type harmonicOscillator struct{}

func (harmonicOscillator) Dim() int { return 2 }
func (harmonicOscillator) Derive(t float64, y ode.State) ode.State {
	return ode.State{y[1], -y[0]}
}
func (harmonicOscillator) Energy(y ode.State) float64 {
	return 0.5 * (y[0]*y[0] + y[1]*y[1])
}

func TestMidpoint_SingleStep(t *testing.T) {
	integ := NewMidpoint()
	got := integ.Step(exponentialGrowth{}, ode.State{1}, 0, 1)

	// k1 = f(0, 1) = 1, k2 = f(0.5, 1.5) = 1.5, update = 0*k1 + 1*k2.
	if got[0] != 2.5 {
		t.Errorf("midpoint step on y'=y from y=1 with dt=1: got %v, want 2.5", got[0])
	}
}

func TestStep_InputUnchanged(t *testing.T) {
	integ := NewRK4()
	y := ode.State{1, 0}
	orig := y.Clone()

	integ.Step(harmonicOscillator{}, y, 0, 0.1)

	if y[0] != orig[0] || y[1] != orig[1] {
		t.Errorf("input state mutated: %v, was %v", y, orig)
	}
}

func TestStep_NoValidation(t *testing.T) {
	integ := NewMidpoint()
	got := integ.Step(exponentialGrowth{}, ode.State{math.NaN()}, 0, 0.1)

	if !math.IsNaN(got[0]) {
		t.Errorf("NaN input should flow through unchecked, got %v", got[0])
	}
}

func TestCatalogAccuracy(t *testing.T) {
	cases := []struct {
		name string
		tol  float64
	}{
		{"euler", 5e-3},
		{"midpoint", 1e-5},
		{"heun", 1e-5},
		{"ralston", 1e-5},
		{"kutta3", 1e-8},
		{"rk4", 1e-11},
		{"rk38", 1e-11},
		{"dopri5", 1e-12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			integ, err := ByName(tc.name)
			if err != nil {
				t.Fatalf("ByName(%q): %v", tc.name, err)
			}

			y := ode.State{1}
			dt := 1e-3
			for i := 0; i < 1000; i++ {
				y = integ.Step(exponentialGrowth{}, y, float64(i)*dt, dt)
			}

			diff := math.Abs(y[0] - math.E)
			if diff > tc.tol {
				t.Errorf("y(1) = %.15f, want e within %g (off by %.3e)", y[0], tc.tol, diff)
			}
			t.Logf("error vs e: %.3e", diff)
		})
	}
}

func TestRK4_Harmonic(t *testing.T) {
	integ := NewRK4()
	sys := harmonicOscillator{}

	y := ode.State{1, 0}
	dt := 0.001
	steps := 1000
	for i := 0; i < steps; i++ {
		y = integ.Step(sys, y, float64(i)*dt, dt)
	}

	tEnd := float64(steps) * dt
	if math.Abs(y[0]-math.Cos(tEnd)) > 1e-9 {
		t.Errorf("position: got %v, want %v", y[0], math.Cos(tEnd))
	}
	if math.Abs(y[1]+math.Sin(tEnd)) > 1e-9 {
		t.Errorf("velocity: got %v, want %v", y[1], -math.Sin(tEnd))
	}
}

func TestStep_Backward(t *testing.T) {
	integ := NewRK4()
	sys := harmonicOscillator{}

	y := ode.State{1, 0}
	dt := 0.01
	for i := 0; i < 100; i++ {
		y = integ.Step(sys, y, float64(i)*dt, dt)
	}
	for i := 100; i > 0; i-- {
		y = integ.Step(sys, y, float64(i)*dt, -dt)
	}

	if math.Abs(y[0]-1) > 1e-8 || math.Abs(y[1]) > 1e-8 {
		t.Errorf("forward then backward did not return to start: %v", y)
	}
}

func TestStep_Deterministic(t *testing.T) {
	a := NewDoPri5()
	b := NewDoPri5()
	sys := harmonicOscillator{}

	ya := ode.State{1, 0}
	yb := ode.State{1, 0}
	for i := 0; i < 500; i++ {
		now := float64(i) * 0.01
		ya = a.Step(sys, ya, now, 0.01)
		yb = b.Step(sys, yb, now, 0.01)
	}

	if ya[0] != yb[0] || ya[1] != yb[1] {
		t.Errorf("identical inputs diverged: %v vs %v", ya, yb)
	}
}

func TestStep_DimensionChange(t *testing.T) {
	integ := NewRK4()

	one := integ.Step(exponentialGrowth{}, ode.State{1}, 0, 0.1)
	two := integ.Step(harmonicOscillator{}, ode.State{1, 0}, 0, 0.1)

	if len(one) != 1 || len(two) != 2 {
		t.Errorf("scratch resize failed: got dims %d and %d", len(one), len(two))
	}
}

func TestOrderOfConvergence(t *testing.T) {
	// Halving dt must shrink the global error by roughly 2^order.
	for _, name := range []string{"euler", "midpoint", "kutta3", "rk4"} {
		t.Run(name, func(t *testing.T) {
			integ, err := ByName(name)
			if err != nil {
				t.Fatal(err)
			}

			errAt := func(dt float64) float64 {
				y := ode.State{1, 0}
				steps := int(math.Round(1.0 / dt))
				for i := 0; i < steps; i++ {
					y = integ.Step(harmonicOscillator{}, y, float64(i)*dt, dt)
				}
				return math.Abs(y[0] - math.Cos(float64(steps)*dt))
			}

			measured := math.Log2(errAt(0.01) / errAt(0.005))
			want := float64(integ.Order())
			if math.Abs(measured-want) > 0.5 {
				t.Errorf("measured order %.2f, want ~%.0f", measured, want)
			}
			t.Logf("measured order: %.3f", measured)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		integ, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if integ.Name() != name {
			t.Errorf("ByName(%q).Name() = %q", name, integ.Name())
		}
		if integ.Order() < 1 {
			t.Errorf("%s: order %d", name, integ.Order())
		}
	}

	if _, err := ByName("adams"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
