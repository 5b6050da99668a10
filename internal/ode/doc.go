// Package ode provides the core primitives for solving ordinary
// differential equation initial value problems.
//
// The package defines the contracts shared by every other package:
//
//   - [State]: vector representing the dependent variable y
//   - [System]: interface for the right-hand side dy/dt = f(t, y)
//   - [Integrator]: single-step numerical scheme
//   - [Metric], [Observer]: trajectory instrumentation
//   - [Config], [Result]: run parameters and output
//
// # Example
//
//	sys := systems.NewHarmonic()
//	integ := integrators.NewRK4()
//	s := solve.New(sys, integ)
//	s.SetInitialValue(0, ode.State{1, 0})
//	result, _ := s.Solve(ctx, 10.0, ode.DefaultConfig())
//
// # Thread Safety
//
// Solver sessions are NOT thread-safe. Independent sessions on
// independent states may run concurrently; immutable values such as
// tableaux may be shared freely between them.
package ode
