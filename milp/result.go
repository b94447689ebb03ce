package milp

import (
	"q.log/lpsolve/simplex"
)

// Result is the outcome of Solve. Solution and Duals are set only when
// Status.HasSolution().
type Result struct {
	Status simplex.Status

	Objective float64
	// Solution holds the objective at index 0, the row activities at
	// 1..rows and the column values at rows+1..rows+columns.
	Solution []float64
	// Duals holds one dual value per row at 1..rows.
	Duals []float64
	// Basis is the final basis of the LP that produced Solution. It can be
	// passed back as Options.StartBasis.
	Basis *simplex.Basis

	Iterations   int
	Nodes        int
	MaxDepth     int
	Pruned       int
	Reinversions int

	rows int
}

// Value returns the value of column col (1-based).
func (r *Result) Value(col int) float64 { return r.Solution[r.rows+col] }

// Values returns the column values, index 0 unused.
func (r *Result) Values() []float64 {
	if r.Solution == nil {
		return nil
	}
	v := make([]float64, len(r.Solution)-r.rows)
	copy(v[1:], r.Solution[r.rows+1:])
	return v
}

// Activity returns the activity of row (1-based).
func (r *Result) Activity(row int) float64 { return r.Solution[row] }

// Dual returns the dual value of row (1-based).
func (r *Result) Dual(row int) float64 { return r.Duals[row] }
