package analysis

import (
	"context"
	"fmt"

	"github.com/odelab/odelab/internal/ode"
)

// BifurcationPoint holds the distinct post-transient branch values of
// one state component at a single parameter setting.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationScan sweeps a system parameter and records the local
// maxima a state component settles into once transients die out. For a
// period-k orbit the maxima collapse onto k values; period doubling
// shows up as the count doubling, chaos as a smear.
type BifurcationScan struct {
	Param     string
	From, To  float64
	Steps     int
	Component int
	Transient float64 // settle time before recording starts
	Record    float64 // recording window
}

// Run executes the scan. The system must implement ode.Configurable;
// the swept parameter is restored afterwards.
func (b BifurcationScan) Run(ctx context.Context, sys ode.System, integ ode.Integrator, y0 ode.State, dt float64) ([]BifurcationPoint, error) {
	tunable, ok := sys.(ode.Configurable)
	if !ok {
		return nil, fmt.Errorf("analysis: system has no tunable parameters")
	}
	if b.Steps < 2 {
		return nil, fmt.Errorf("analysis: need at least two parameter steps")
	}
	if b.Component < 0 || b.Component >= len(y0) {
		return nil, fmt.Errorf("analysis: component %d out of range for dim %d", b.Component, len(y0))
	}
	if dt <= 0 {
		return nil, fmt.Errorf("analysis: step size must be positive, got %g", dt)
	}

	orig, ok := tunable.GetParams()[b.Param]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown param: %s", b.Param)
	}
	defer tunable.SetParam(b.Param, orig)

	points := make([]BifurcationPoint, 0, b.Steps)
	stride := (b.To - b.From) / float64(b.Steps-1)

	for i := 0; i < b.Steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		param := b.From + float64(i)*stride
		if err := tunable.SetParam(b.Param, param); err != nil {
			return nil, err
		}

		y := y0.Clone()
		t := 0.0
		for ; t < b.Transient; t += dt {
			y = integ.Step(sys, y, t, dt)
		}

		// Values closer than 1e-3 count as one branch.
		seen := make(map[int]bool)
		values := make([]float64, 0, 16)
		prev, curr := y[b.Component], y[b.Component]

		for ; t < b.Transient+b.Record; t += dt {
			y = integ.Step(sys, y, t, dt)
			next := y[b.Component]
			if curr > prev && curr >= next {
				key := int(curr * 1000)
				if !seen[key] {
					seen[key] = true
					values = append(values, curr)
				}
			}
			prev, curr = curr, next
		}

		points = append(points, BifurcationPoint{Param: param, Values: values})
	}

	return points, nil
}
