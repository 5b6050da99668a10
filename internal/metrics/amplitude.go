package metrics

import (
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// Amplitude tracks the largest absolute excursion of one state
// component.
type Amplitude struct {
	name      string
	component int
	peak      float64
}

func NewAmplitude(component int) *Amplitude {
	return &Amplitude{name: "amplitude", component: component}
}

func (a *Amplitude) Name() string { return a.name }

func (a *Amplitude) Observe(_ float64, y ode.State) {
	if a.component >= len(y) {
		return
	}
	if v := math.Abs(y[a.component]); v > a.peak {
		a.peak = v
	}
}

func (a *Amplitude) Value() float64 { return a.peak }

func (a *Amplitude) Reset() { a.peak = 0 }
