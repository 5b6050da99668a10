package metrics

import (
	"math"
	"testing"

	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/systems"
)

func TestEnergyMean(t *testing.T) {
	sys := systems.NewHarmonic()
	m := NewEnergy(sys)

	m.Observe(0, ode.State{1, 0})
	m.Observe(0.1, ode.State{0, 1})

	// Both samples carry energy 0.5.
	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("mean energy %v, want 0.5", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnergyWithoutHamiltonian(t *testing.T) {
	m := NewEnergy(systems.NewVanDerPol())

	m.Observe(0, ode.State{2, 0})
	if m.Value() != 0 {
		t.Errorf("system without energy should report 0, got %v", m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	sys := systems.NewHarmonic()
	m := NewEnergyDrift(sys)

	m.Observe(0, ode.State{1, 0})   // energy 0.5
	m.Observe(1, ode.State{1, 0.1}) // energy 0.505
	m.Observe(2, ode.State{1, 0})   // back to 0.5

	want := 0.005 / 0.5
	if got := m.Value(); math.Abs(got-want) > 1e-12 {
		t.Errorf("max drift %v, want %v", got, want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10)

	m.Observe(0, ode.State{1, 1})
	m.Observe(1, ode.State{11, 0})
	m.Observe(2, ode.State{2, -3})
	m.Observe(3, ode.State{0, -20})

	if got := m.Value(); got != 0.5 {
		t.Errorf("stability %v, want 0.5", got)
	}
}

func TestStabilityEmpty(t *testing.T) {
	m := NewStability(10)
	if m.Value() != 1.0 {
		t.Errorf("no samples should score 1.0, got %v", m.Value())
	}
}

func TestAmplitude(t *testing.T) {
	m := NewAmplitude(0)

	m.Observe(0, ode.State{0.5, 9})
	m.Observe(1, ode.State{-2.5, 0})
	m.Observe(2, ode.State{1.0, 0})

	if got := m.Value(); got != 2.5 {
		t.Errorf("amplitude %v, want 2.5", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestAmplitudeOutOfRange(t *testing.T) {
	m := NewAmplitude(5)
	m.Observe(0, ode.State{1, 2})
	if m.Value() != 0 {
		t.Errorf("out-of-range component should be ignored, got %v", m.Value())
	}
}

func TestForSystem(t *testing.T) {
	conservative := ForSystem(systems.NewHarmonic())
	if len(conservative) != 4 {
		t.Errorf("harmonic should get 4 metrics, got %d", len(conservative))
	}

	driven := ForSystem(systems.NewVanDerPol())
	if len(driven) != 2 {
		t.Errorf("vanderpol should get 2 metrics, got %d", len(driven))
	}

	names := make(map[string]bool)
	for _, m := range conservative {
		names[m.Name()] = true
	}
	for _, want := range []string{"amplitude", "stability", "energy", "energy_drift"} {
		if !names[want] {
			t.Errorf("missing metric %q", want)
		}
	}
}
