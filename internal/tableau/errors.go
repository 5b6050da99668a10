package tableau

import "errors"

// Construction errors. Each identifies the structural property the
// coefficient data violated; callers match with errors.Is.
var (
	// ErrStageCount indicates a declared stage count below one.
	ErrStageCount = errors.New("tableau: stage count must be at least one")

	// ErrWeightsDim indicates a weights vector whose length is not the stage count.
	ErrWeightsDim = errors.New("tableau: weights dimension mismatch")

	// ErrNodesDim indicates a nodes vector whose length is not the stage count.
	ErrNodesDim = errors.New("tableau: nodes dimension mismatch")

	// ErrMatrixDim indicates a matrix with fewer than S rows, or a row
	// without exactly S columns.
	ErrMatrixDim = errors.New("tableau: matrix dimension mismatch")

	// ErrNonLowerTriangular indicates a nonzero coefficient on or above
	// the diagonal, which would make the scheme implicit.
	ErrNonLowerTriangular = errors.New("tableau: matrix is not strictly lower triangular")
)
