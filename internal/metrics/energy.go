package metrics

import (
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// Energy reports the mean total energy over a run. Systems without a
// Hamiltonian always report zero.
type Energy struct {
	name    string
	sys     ode.Hamiltonian
	sum     float64
	samples int
}

func NewEnergy(sys ode.System) *Energy {
	h, _ := sys.(ode.Hamiltonian)
	return &Energy{name: "energy", sys: h}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(_ float64, y ode.State) {
	if e.sys == nil {
		return
	}
	e.sum += e.sys.Energy(y)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Energy) Reset() {
	e.sum = 0
	e.samples = 0
}

// EnergyDrift tracks the worst relative deviation from the energy of
// the first observed sample.
type EnergyDrift struct {
	name     string
	sys      ode.Hamiltonian
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(sys ode.System) *EnergyDrift {
	h, _ := sys.(ode.Hamiltonian)
	return &EnergyDrift{name: "energy_drift", sys: h}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(_ float64, y ode.State) {
	if e.sys == nil {
		return
	}

	energy := e.sys.Energy(y)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
