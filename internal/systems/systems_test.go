package systems

import (
	"math"
	"testing"

	"github.com/odelab/odelab/internal/ode"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDerivatives(t *testing.T) {
	cases := []struct {
		name string
		sys  ode.System
		t    float64
		y    ode.State
		want ode.State
	}{
		{"exponential", NewExponential(), 0, ode.State{2}, ode.State{2}},
		{"harmonic rest at peak", NewHarmonic(), 0, ode.State{1, 0}, ode.State{0, -1}},
		{"pendulum at bottom", NewPendulum(), 0, ode.State{0, 1}, ode.State{1, 0}},
		{"pendulum horizontal", NewPendulum(), 0, ode.State{math.Pi / 2, 0}, ode.State{0, -9.81}},
		{"vanderpol on cycle", NewVanDerPol(), 0, ode.State{2, 0}, ode.State{0, -2}},
		{"lorenz symmetric point", NewLorenz(), 0, ode.State{1, 1, 1}, ode.State{0, 26, 1 - 8.0/3.0}},
		{"rossler", NewRossler(), 0, ode.State{1, 1, 1}, ode.State{-2, 1.2, -4.5}},
		{"duffing at t=0", NewDuffing(), 0, ode.State{1, 0}, ode.State{0, 0.5}},
		{"doublewell at minimum", NewDoubleWell(), 0, ode.State{1, 0}, ode.State{0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.sys.Derive(tc.t, tc.y)
			if len(got) != len(tc.want) {
				t.Fatalf("dim %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if !almostEqual(got[i], tc.want[i], 1e-12) {
					t.Errorf("component %d: got %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestEnergy(t *testing.T) {
	h := NewHarmonic()
	if e := h.Energy(ode.State{1, 0}); !almostEqual(e, 0.5, 1e-12) {
		t.Errorf("harmonic potential energy: got %v, want 0.5", e)
	}
	if e := h.Energy(ode.State{0, 1}); !almostEqual(e, 0.5, 1e-12) {
		t.Errorf("harmonic kinetic energy: got %v, want 0.5", e)
	}

	p := NewPendulum()
	if e := p.Energy(ode.State{0, 0}); e != 0 {
		t.Errorf("pendulum at rest: got %v, want 0", e)
	}

	w := NewDoubleWell()
	if e := w.Energy(ode.State{1, 0}); e != 0 {
		t.Errorf("doublewell at minimum: got %v, want 0", e)
	}
}

func TestDuffingTimeDependence(t *testing.T) {
	d := NewDuffing()
	y := ode.State{1, 0}

	at0 := d.Derive(0, y)
	atHalfPeriod := d.Derive(math.Pi/d.Omega, y)

	if at0[1] == atHalfPeriod[1] {
		t.Error("forcing should change the derivative over half a period")
	}
}

func TestExponentialExact(t *testing.T) {
	e := NewExponential()
	if got := e.Exact(2, 1); !almostEqual(got, 2*math.E, 1e-12) {
		t.Errorf("Exact(2, 1) = %v, want 2e", got)
	}

	e.Rate = -0.5
	if got := e.Exact(1, 2); !almostEqual(got, math.Exp(-1), 1e-12) {
		t.Errorf("Exact(1, 2) with rate -0.5 = %v, want 1/e", got)
	}
}

func TestHarmonicOmega(t *testing.T) {
	h := NewHarmonic()
	h.Stiffness = 4.0
	if got := h.Omega(); !almostEqual(got, 2.0, 1e-12) {
		t.Errorf("Omega() = %v, want 2", got)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		sys, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if sys.Dim() < 1 {
			t.Errorf("%s: dim %d", name, sys.Dim())
		}
		y0 := DefaultState(sys)
		if len(y0) != sys.Dim() {
			t.Errorf("%s: default state has dim %d, system dim %d", name, len(y0), sys.Dim())
		}
		if !y0.IsValid() {
			t.Errorf("%s: default state %v invalid", name, y0)
		}
	}

	if _, err := ByName("threebody"); err == nil {
		t.Error("expected error for unknown system")
	}
}

func TestSetParamRoundtrip(t *testing.T) {
	for _, name := range Names() {
		sys, err := ByName(name)
		if err != nil {
			t.Fatal(err)
		}
		cfg, ok := sys.(ode.Configurable)
		if !ok {
			t.Errorf("%s does not expose parameters", name)
			continue
		}

		before := cfg.GetParams()
		for param, val := range before {
			if err := cfg.SetParam(param, val+1); err != nil {
				t.Errorf("%s: SetParam(%q): %v", name, param, err)
			}
		}
		after := cfg.GetParams()
		for param, val := range before {
			if after[param] != val+1 {
				t.Errorf("%s: param %q = %v after set, want %v", name, param, after[param], val+1)
			}
		}

		if err := cfg.SetParam("no-such-param", 1); err == nil {
			t.Errorf("%s: expected error for unknown param", name)
		}
	}
}
