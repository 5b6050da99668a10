package integrators

import "github.com/odelab/odelab/internal/ode"

// Verlet is a velocity Verlet stepper for separable second-order
// systems. The state must be laid out as [q..., v...] with positions
// in the first half and velocities in the second, and the derivative
// must return [v..., a...]. Symplectic, order 2, with bounded energy
// error on conservative systems.
type Verlet struct {
	scratch ode.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Order() int { return 2 }

func (v *Verlet) Step(sys ode.System, y ode.State, t, dt float64) ode.State {
	n := len(y)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(ode.State, n)
	}

	result := make(ode.State, n)
	dy := sys.Derive(t, y)
	dt2 := dt * dt

	for i := 0; i < half; i++ {
		result[i] = y[i] + y[half+i]*dt + 0.5*dy[half+i]*dt2
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = y[half+i]
	}

	dyNew := sys.Derive(t+dt, v.scratch)

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = y[half+i] + (dy[half+i]+dyNew[half+i])*halfDt
	}

	return result
}

// Leapfrog is the kick-drift-kick variant. Same state layout and
// stability character as Verlet.
type Leapfrog struct {
	scratch ode.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Order() int { return 2 }

func (l *Leapfrog) Step(sys ode.System, y ode.State, t, dt float64) ode.State {
	n := len(y)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(ode.State, n)
	}

	result := make(ode.State, n)
	dy := sys.Derive(t, y)
	halfDt := dt * 0.5

	for i := 0; i < half; i++ {
		l.scratch[half+i] = y[half+i] + dy[half+i]*halfDt
	}

	for i := 0; i < half; i++ {
		result[i] = y[i] + l.scratch[half+i]*dt
		l.scratch[i] = result[i]
	}

	dyNew := sys.Derive(t+dt, l.scratch)

	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + dyNew[half+i]*halfDt
	}

	return result
}
