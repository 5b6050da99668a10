package metrics

import "github.com/odelab/odelab/internal/ode"

// ForSystem assembles the default metric set for a system: amplitude
// and a runaway detector always, energy tracking when the system has
// a Hamiltonian.
func ForSystem(sys ode.System) []ode.Metric {
	ms := []ode.Metric{
		NewAmplitude(0),
		NewStability(1e3),
	}
	if _, ok := sys.(ode.Hamiltonian); ok {
		ms = append(ms, NewEnergy(sys), NewEnergyDrift(sys))
	}
	return ms
}
