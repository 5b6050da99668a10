package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odelab/odelab/internal/config"
	"github.com/odelab/odelab/internal/experiment"
	"github.com/odelab/odelab/internal/ode"
)

// Sweep varies one system parameter across a range, running the base
// configuration once per value.
type Sweep struct {
	Param    string
	From, To float64
	Steps    int
}

// SweepPoint is the outcome of a single sweep value.
type SweepPoint struct {
	Value   float64
	Final   ode.State
	Metrics map[string]float64
}

// Run executes the sweep against a base configuration. Each value gets
// a fresh system and solver, so sweep points are independent.
func (sw Sweep) Run(ctx context.Context, base *config.Config) ([]SweepPoint, error) {
	if sw.Steps < 2 {
		return nil, fmt.Errorf("scenario: sweep needs at least two steps")
	}

	points := make([]SweepPoint, 0, sw.Steps)
	stride := (sw.To - sw.From) / float64(sw.Steps-1)

	for i := 0; i < sw.Steps; i++ {
		select {
		case <-ctx.Done():
			return points, ctx.Err()
		default:
		}

		value := sw.From + float64(i)*stride

		cfg := base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[sw.Param] = value

		exp, err := experiment.Build(cfg)
		if err != nil {
			return points, fmt.Errorf("scenario: %s=%.4f: %w", sw.Param, value, err)
		}

		res, err := exp.Run(ctx)
		if err != nil {
			return points, fmt.Errorf("scenario: %s=%.4f: %w", sw.Param, value, err)
		}

		points = append(points, SweepPoint{
			Value:   value,
			Final:   res.States[len(res.States)-1],
			Metrics: res.Metrics,
		})
		slog.Debug("sweep point done", "param", sw.Param, "value", value, "point", i+1, "of", sw.Steps)
	}

	return points, nil
}
