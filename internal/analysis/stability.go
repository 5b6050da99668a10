package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/odelab/odelab/internal/ode"
)

// Spectrum holds the eigenvalues of the dynamics Jacobian at a point.
type Spectrum struct {
	Eigenvalues []complex128
	Abscissa    float64 // largest real part
}

const marginalTol = 1e-9

// Classify names the local behavior: "stable" when every eigenvalue
// has negative real part, "unstable" when any is positive, otherwise
// "marginal".
func (s *Spectrum) Classify() string {
	switch {
	case s.Abscissa < -marginalTol:
		return "stable"
	case s.Abscissa > marginalTol:
		return "unstable"
	default:
		return "marginal"
	}
}

// LinearStability linearizes the system at (t, y) with a central
// finite-difference Jacobian and returns its eigenvalue spectrum.
func LinearStability(sys ode.System, t float64, y ode.State) (*Spectrum, error) {
	n := len(y)
	if n == 0 {
		return nil, errors.New("analysis: empty state")
	}
	if n != sys.Dim() {
		return nil, fmt.Errorf("%w: state has dim %d, system wants %d", ode.ErrDimensionMismatch, n, sys.Dim())
	}

	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, func(dst, x []float64) {
		copy(dst, sys.Derive(t, ode.State(x)))
	}, y, &fd.JacobianSettings{Formula: fd.Central})

	var eig mat.Eigen
	if ok := eig.Factorize(jac, mat.EigenNone); !ok {
		return nil, errors.New("analysis: eigenvalue decomposition failed")
	}

	sp := &Spectrum{
		Eigenvalues: eig.Values(nil),
		Abscissa:    math.Inf(-1),
	}
	for _, v := range sp.Eigenvalues {
		if real(v) > sp.Abscissa {
			sp.Abscissa = real(v)
		}
	}
	return sp, nil
}
