package tableau

import "fmt"

// Catalog of classical explicit methods. Each constructor builds its
// tableau through the validating path, so the literals are checked the
// same way user-supplied coefficients are.

// Euler returns the first-order forward Euler method.
func Euler() *Tableau {
	return mustTableau("euler", 1, 1,
		[][]float64{{0}},
		[]float64{1},
		[]float64{0})
}

// Midpoint returns the second-order explicit midpoint method: one
// half-step probe, then a full step using the midpoint slope.
func Midpoint() *Tableau {
	return mustTableau("midpoint", 2, 2,
		[][]float64{
			{0, 0},
			{0.5, 0},
		},
		[]float64{0, 1},
		[]float64{0, 0.5})
}

// Heun returns Heun's second-order method (improved Euler), a
// predictor-corrector built on the trapezoidal rule.
func Heun() *Tableau {
	return mustTableau("heun", 2, 2,
		[][]float64{
			{0, 0},
			{1, 0},
		},
		[]float64{0.5, 0.5},
		[]float64{0, 1})
}

// Ralston returns Ralston's second-order method, which minimizes the
// local truncation error bound among two-stage schemes.
//
// Reference: A. Ralston, "Runge-Kutta methods with minimum error
// bounds", Math. Comp., 16 (1962) 431-437.
func Ralston() *Tableau {
	return mustTableau("ralston", 2, 2,
		[][]float64{
			{0, 0},
			{2.0 / 3.0, 0},
		},
		[]float64{0.25, 0.75},
		[]float64{0, 2.0 / 3.0})
}

// Kutta3 returns Kutta's third-order method.
func Kutta3() *Tableau {
	return mustTableau("kutta3", 3, 3,
		[][]float64{
			{0, 0, 0},
			{0.5, 0, 0},
			{-1, 2, 0},
		},
		[]float64{1.0 / 6.0, 2.0 / 3.0, 1.0 / 6.0},
		[]float64{0, 0.5, 1})
}

// RK4 returns the classical fourth-order Runge-Kutta method.
func RK4() *Tableau {
	return mustTableau("rk4", 4, 4,
		[][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.5, 0, 0},
			{0, 0, 1, 0},
		},
		[]float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
		[]float64{0, 0.5, 0.5, 1})
}

// RK38 returns the fourth-order 3/8 rule, the lesser-known variant
// from Kutta's 1901 paper. Slightly better error constants than the
// classical method at the cost of one extra nonzero coefficient.
func RK38() *Tableau {
	return mustTableau("rk38", 4, 4,
		[][]float64{
			{0, 0, 0, 0},
			{1.0 / 3.0, 0, 0, 0},
			{-1.0 / 3.0, 1, 0, 0},
			{1, -1, 1, 0},
		},
		[]float64{1.0 / 8.0, 3.0 / 8.0, 3.0 / 8.0, 1.0 / 8.0},
		[]float64{0, 1.0 / 3.0, 2.0 / 3.0, 1})
}

// DoPri5 returns the fifth-order weights of the Dormand-Prince 5(4)
// pair, used here as a fixed-step method: the embedded fourth-order
// error-estimate row is not carried.
//
// Reference: J.R. Dormand & P.J. Prince, "A family of embedded
// Runge-Kutta formulae", J. Comp. Appl. Math., 6 (1980) 19-26.
func DoPri5() *Tableau {
	return mustTableau("dopri5", 5, 7,
		[][]float64{
			{0, 0, 0, 0, 0, 0, 0},
			{1.0 / 5.0, 0, 0, 0, 0, 0, 0},
			{3.0 / 40.0, 9.0 / 40.0, 0, 0, 0, 0, 0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0, 0, 0, 0, 0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0, 0, 0, 0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0, 0, 0},
			{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		},
		[]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		[]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1})
}

var catalog = map[string]func() *Tableau{
	"euler":    Euler,
	"midpoint": Midpoint,
	"heun":     Heun,
	"ralston":  Ralston,
	"kutta3":   Kutta3,
	"rk4":      RK4,
	"rk38":     RK38,
	"dopri5":   DoPri5,
}

// Names lists the catalog in ascending order of accuracy.
func Names() []string {
	return []string{"euler", "midpoint", "heun", "ralston", "kutta3", "rk4", "rk38", "dopri5"}
}

// ByName returns the catalog tableau with the given name.
func ByName(name string) (*Tableau, error) {
	ctor, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("tableau: unknown method %q", name)
	}
	return ctor(), nil
}

func mustTableau(name string, order, stages int, a [][]float64, b, c []float64) *Tableau {
	t, err := New(name, order, stages, a, b, c)
	if err != nil {
		panic(err)
	}
	return t
}
