package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/odelab/odelab/internal/ode"
)

// Separation kept between the main and shadow trajectories.
const lyapunovD0 = 1e-8

// Lyapunov estimates the largest Lyapunov exponent by stepping a
// shadow trajectory seeded a distance d0 away and renormalizing the
// pair back to that distance after every step. The accumulated
// log(separation/d0) per unit time converges to the exponent.
// Positive values indicate chaos.
func Lyapunov(ctx context.Context, sys ode.System, integ ode.Integrator, y0 ode.State, dt, horizon float64) (float64, error) {
	if len(y0) == 0 {
		return 0, errors.New("analysis: empty initial state")
	}
	if dt <= 0 || horizon <= 0 {
		return 0, errors.New("analysis: dt and horizon must be positive")
	}

	y := y0.Clone()
	shadow := y0.Clone()
	shadow[0] += lyapunovD0

	steps := int(horizon / dt)
	sumLog := 0.0
	count := 0
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		y = integ.Step(sys, y, t, dt)
		shadow = integ.Step(sys, shadow, t, dt)
		t += dt

		sep := shadow.Sub(y).Norm()
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, fmt.Errorf("%w: separation not finite at t=%.4f", ode.ErrInvalidState, t)
		}
		if sep == 0 {
			// Trajectories merged numerically; reseed the shadow.
			shadow = y.Clone()
			shadow[0] += lyapunovD0
			continue
		}

		sumLog += math.Log(sep / lyapunovD0)
		count++

		scale := lyapunovD0 / sep
		for j := range shadow {
			shadow[j] = y[j] + (shadow[j]-y[j])*scale
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}
