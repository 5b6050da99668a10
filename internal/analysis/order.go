package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/solve"
)

// Order is a least-squares fit of log(error) against log(dt). For a
// method of order p the slope approaches p as the steps shrink.
type Order struct {
	Dts    []float64
	Errors []float64
	Slope  float64
	R2     float64
}

// ConvergenceOrder measures a method's observed order on a system by
// solving the same interval at several step sizes and comparing final
// states against a reference computed at a twenty-fold finer step.
func ConvergenceOrder(ctx context.Context, sys ode.System, integ ode.Integrator, y0 ode.State, t0, t1 float64, dts []float64) (*Order, error) {
	if len(dts) < 2 {
		return nil, errors.New("analysis: need at least two step sizes")
	}
	if t1 == t0 {
		return nil, errors.New("analysis: zero interval")
	}
	minDt := dts[0]
	for _, dt := range dts {
		if dt <= 0 {
			return nil, fmt.Errorf("analysis: step size must be positive, got %g", dt)
		}
		if dt < minDt {
			minDt = dt
		}
	}

	ref, err := finalState(ctx, sys, integ, y0, t0, t1, minDt/20)
	if err != nil {
		return nil, err
	}

	ord := &Order{
		Dts:    append([]float64(nil), dts...),
		Errors: make([]float64, len(dts)),
	}
	logDt := make([]float64, len(dts))
	logErr := make([]float64, len(dts))

	for i, dt := range dts {
		fin, err := finalState(ctx, sys, integ, y0, t0, t1, dt)
		if err != nil {
			return nil, err
		}
		e := fin.Sub(ref).Norm()
		if e == 0 {
			// A zero error would blow up the log fit.
			e = 1e-16
		}
		ord.Errors[i] = e
		logDt[i] = math.Log(dt)
		logErr[i] = math.Log(e)
	}

	alpha, beta := stat.LinearRegression(logDt, logErr, nil, false)
	ord.Slope = beta
	ord.R2 = stat.RSquared(logDt, logErr, nil, alpha, beta)
	return ord, nil
}

func finalState(ctx context.Context, sys ode.System, integ ode.Integrator, y0 ode.State, t0, t1, dt float64) (ode.State, error) {
	s := solve.New(sys, integ)
	if err := s.SetInitialValue(t0, y0); err != nil {
		return nil, err
	}
	res, err := s.Solve(ctx, t1, ode.Config{Dt: dt, ValidateState: true})
	if err != nil {
		return nil, err
	}
	return res.States[len(res.States)-1], nil
}
