package ode

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// AXPY performs s += alpha*x in place. Both slices must have the same
// length; steppers use it to accumulate weighted stage sums without
// allocating.
func (s State) AXPY(alpha float64, x State) {
	for i := range s {
		s[i] += alpha * x[i]
	}
}

// System is the right-hand side of dy/dt = f(t, y). Derive must not
// mutate y; it is called once per stage per step.
type System interface {
	Derive(t float64, y State) State
	Dim() int
}

// Hamiltonian is implemented by systems with a conserved energy.
type Hamiltonian interface {
	Energy(y State) float64
}

// Integrator advances a state by one step of signed size dt. A
// negative dt steps backward in time. Step performs no validation and
// has no failure mode of its own.
type Integrator interface {
	Step(sys System, y State, t, dt float64) State
	Name() string
	Order() int
}

type Observer interface {
	OnStep(t float64, y State)
}

type Metric interface {
	Name() string
	Observe(t float64, y State)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Initializer is implemented by systems with a canonical starting state.
type Initializer interface {
	DefaultState() State
}

type Config struct {
	Dt            float64
	MaxSteps      int
	ValidateState bool
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		MaxSteps:      1_000_000,
		ValidateState: true,
	}
}

type Result struct {
	Times       []float64
	States      []State
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}
