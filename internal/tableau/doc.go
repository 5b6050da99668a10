// Package tableau provides Butcher tableaux for explicit Runge-Kutta
// methods.
//
// A tableau holds the coefficient matrix a, the weights b and the
// nodes c that fully parameterize an S-stage method:
//
//	k_i   = f(t + c_i*h, y + h * Σ_{j<i} a_ij * k_j)
//	y_new = y + h * Σ_i b_i * k_i
//
// Construction validates the coefficient data once: the weights and
// nodes must have exactly S entries, the matrix exactly S rows of S
// columns, and every entry on or above the diagonal must be zero so
// each stage depends only on earlier stages. A tableau that passes
// validation is immutable and may be shared freely between concurrent
// solving sessions.
//
// The package also carries a catalog of classical methods ([Euler],
// [Midpoint], [RK4], [DoPri5], ...) constructed through the same
// validating path.
package tableau
