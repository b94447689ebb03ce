package simplex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"q.log/lpsolve/model"
)

// row describes one constraint of a test model.
type row struct {
	coefs []float64
	t     model.ConstraintType
	rhs   float64
}

func buildModel(t *testing.T, maximize bool, obj []float64, rows ...row) *model.Model {
	t.Helper()
	m, err := model.NewModel(len(rows), len(obj))
	require.NoError(t, err)
	for j, c := range obj {
		require.NoError(t, m.SetObjective(j+1, c))
	}
	for i, r := range rows {
		for j, a := range r.coefs {
			require.NoError(t, m.SetMat(i+1, j+1, a))
		}
		require.NoError(t, m.SetConstraintType(i+1, r.t))
		require.NoError(t, m.SetRHS(i+1, r.rhs))
	}
	if maximize {
		m.SetMaximize()
	}
	return m
}

func newEngine(t *testing.T, m *model.Model, opts Options) *Engine {
	t.Helper()
	e, err := New(m, opts, nil)
	require.NoError(t, err)
	return e
}

func solve(t *testing.T, e *Engine, m *model.Model) Status {
	t.Helper()
	st, err := e.Solve(ModelBounds(m))
	require.NoError(t, err)
	require.NoError(t, e.Basis().Validate(m.Rows(), m.Columns()))
	return st
}

// wyndor is max 3x + 5y s.t. x <= 4, 2y <= 12, 3x + 2y <= 18, optimum 36 at (2, 6).
func wyndor(t *testing.T) *model.Model {
	return buildModel(t, true, []float64{3, 5},
		row{[]float64{1, 0}, model.LE, 4},
		row{[]float64{0, 2}, model.LE, 12},
		row{[]float64{3, 2}, model.LE, 18},
	)
}

// rangedEquality is max 2a - 5b + c + 3d s.t. 5 <= 5a + b - c - d <= 9,
// a + 4b - 3c = -3, 3a - 3b - 3c - 2d <= 5, a, c in [0,2], b = 0, d = 1.
// The LP optimum is 26/3 at (2, 0, 5/3, 1); c <= 1 makes it infeasible.
func rangedEquality(t *testing.T) *model.Model {
	m := buildModel(t, true, []float64{2, -5, 1, 3},
		row{[]float64{5, 1, -1, -1}, model.LE, 9},
		row{[]float64{1, 4, -3, 0}, model.EQ, -3},
		row{[]float64{3, -3, -3, -2}, model.LE, 5},
	)
	require.NoError(t, m.SetRange(1, 5, 9))
	require.NoError(t, m.SetBounds(1, 0, 2))
	require.NoError(t, m.SetBounds(2, 0, 0))
	require.NoError(t, m.SetBounds(3, 0, 2))
	require.NoError(t, m.SetBounds(4, 1, 1))
	return m
}
