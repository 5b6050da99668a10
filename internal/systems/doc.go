// Package systems provides the catalog of differential equation systems.
//
// Each system implements [ode.System], defining the right-hand side of
// dy/dt = f(t, y):
//
//   - [Exponential]: scalar growth or decay, the standard accuracy probe
//   - [Harmonic]: damped spring-mass oscillator
//   - [Pendulum]: planar pendulum, optionally damped
//   - [VanDerPol]: relaxation oscillator with a limit cycle
//   - [Lorenz]: butterfly attractor
//   - [Duffing]: periodically forced bistable oscillator
//   - [Rossler]: band attractor
//   - [DoubleWell]: particle in a bistable potential
//
// Most systems also implement [ode.Configurable] for runtime parameter
// adjustment, [ode.Initializer] for a canonical starting point, and
// [ode.Hamiltonian] where a conserved energy exists.
//
// # Energy Conservation
//
// For conservative systems, use [ode.Hamiltonian] to monitor drift:
//
//	sys := systems.NewPendulum()
//	if h, ok := sys.(ode.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package systems
