package tableau

import "fmt"

// Tableau is a validated, immutable set of explicit Runge-Kutta
// coefficients for a fixed stage count.
type Tableau struct {
	name   string
	order  int
	stages int
	a      [][]float64
	b      []float64
	c      []float64
}

// New validates the coefficient data and builds a Tableau. The stage
// count S is declared by the caller, never inferred: b and c must have
// exactly S entries and a must supply at least S rows of exactly S
// columns each. Rows beyond the first S are ignored. Checks run in a
// fixed order (weights, nodes, matrix shape, triangularity) and the
// first failure is returned; nothing is retained from a failed call.
//
// The triangularity scan walks row by row, left to right, and rejects
// the first nonzero entry at or above the diagonal. Diagonal entries
// must be zero: the step evaluation sums strictly earlier stages only,
// so a nonzero diagonal coefficient would be silently dropped rather
// than honored.
//
// All three inputs are copied; the caller keeps no alias into the
// returned Tableau.
func New(name string, order, stages int, a [][]float64, b, c []float64) (*Tableau, error) {
	if stages < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrStageCount, stages)
	}
	if len(b) != stages {
		return nil, fmt.Errorf("%w: got %d weights, want %d", ErrWeightsDim, len(b), stages)
	}
	if len(c) != stages {
		return nil, fmt.Errorf("%w: got %d nodes, want %d", ErrNodesDim, len(c), stages)
	}
	if len(a) < stages {
		return nil, fmt.Errorf("%w: got %d matrix rows, want %d", ErrMatrixDim, len(a), stages)
	}

	matrix := make([][]float64, stages)
	for i := 0; i < stages; i++ {
		if len(a[i]) != stages {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMatrixDim, i, len(a[i]), stages)
		}
		matrix[i] = append([]float64(nil), a[i]...)
	}

	for i := 0; i < stages; i++ {
		for j := i; j < stages; j++ {
			if matrix[i][j] != 0 {
				return nil, fmt.Errorf("%w: a[%d][%d] = %g", ErrNonLowerTriangular, i, j, matrix[i][j])
			}
		}
	}

	return &Tableau{
		name:   name,
		order:  order,
		stages: stages,
		a:      matrix,
		b:      append([]float64(nil), b...),
		c:      append([]float64(nil), c...),
	}, nil
}

func (t *Tableau) Name() string { return t.name }
func (t *Tableau) Order() int   { return t.order }
func (t *Tableau) Stages() int  { return t.stages }

// Coeff returns the matrix entry a[i][j].
func (t *Tableau) Coeff(i, j int) float64 { return t.a[i][j] }

// Weight returns the combination weight b[i].
func (t *Tableau) Weight(i int) float64 { return t.b[i] }

// Node returns the fractional time offset c[i].
func (t *Tableau) Node(i int) float64 { return t.c[i] }

// A returns a copy of the coefficient matrix.
func (t *Tableau) A() [][]float64 {
	m := make([][]float64, t.stages)
	for i, row := range t.a {
		m[i] = append([]float64(nil), row...)
	}
	return m
}

// B returns a copy of the weights.
func (t *Tableau) B() []float64 { return append([]float64(nil), t.b...) }

// C returns a copy of the nodes.
func (t *Tableau) C() []float64 { return append([]float64(nil), t.c...) }
