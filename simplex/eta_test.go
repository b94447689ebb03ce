package simplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"q.log/lpsolve/model"
)

func denseLP(t *testing.T) *model.Model {
	return buildModel(t, true, []float64{3, 2, 4, 1},
		row{[]float64{1, 1, 2, 0}, model.LE, 4},
		row{[]float64{2, 0, 3, 1}, model.LE, 5},
		row{[]float64{2, 1, 3, 1}, model.LE, 7},
		row{[]float64{0, 1, 0, 1}, model.GE, 1},
	)
}

// basisMatrix returns the constraint columns of the basic variables in
// row order, in the engine's internal orientation.
func basisMatrix(e *Engine) *mat.Dense {
	b := mat.NewDense(e.rows, e.rows, nil)
	for i := 1; i <= e.rows; i++ {
		v := e.bas[i]
		if v <= e.rows {
			b.Set(v-1, i-1, 1)
			continue
		}
		for _, el := range e.m.Col(v - e.rows) {
			if el.Row > 0 {
				b.Set(el.Row-1, i-1, el.Value)
			}
		}
	}
	return b
}

func TestFtranMatchesDenseSolve(t *testing.T) {
	m := denseLP(t)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	require.NotZero(t, e.eta.size())

	b := basisMatrix(e)
	for j := 1; j <= m.Columns(); j++ {
		a := mat.NewVecDense(e.rows, nil)
		for _, el := range m.Col(j) {
			if el.Row > 0 {
				a.SetVec(el.Row-1, el.Value)
			}
		}
		var want mat.VecDense
		require.NoError(t, want.SolveVec(b, a))

		e.setpivcol(true, e.rows+j, e.pcol)
		for i := 1; i <= e.rows; i++ {
			assert.InDelta(t, want.AtVec(i-1), e.pcol[i], 1e-7, "column %d row %d", j, i)
		}
	}
}

func TestBtranMatchesDenseSolve(t *testing.T) {
	m := denseLP(t)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))

	b := basisMatrix(e)
	for r := 1; r <= e.rows; r++ {
		v := make([]float64, e.rows+1)
		v[r] = 1
		e.eta.btran(v, e.opts.EpsEl)

		var bt mat.Dense
		bt.CloneFrom(b.T())
		var want mat.VecDense
		unit := mat.NewVecDense(e.rows, nil)
		unit.SetVec(r-1, 1)
		require.NoError(t, want.SolveVec(&bt, unit))
		for i := 1; i <= e.rows; i++ {
			assert.InDelta(t, want.AtVec(i-1), v[i], 1e-7, "row %d entry %d", r, i)
		}
	}
}

func TestReducedCostsSurviveReinversion(t *testing.T) {
	m := denseLP(t)
	opts := DefaultOptions()
	opts.MaxPivots = 1000
	e := newEngine(t, m, opts)
	require.Equal(t, StatusOptimal, solve(t, e, m))

	maintained := e.ReducedCosts()
	values := basicValues(e)
	e.invert()
	assert.InDeltaSlice(t, maintained, e.ReducedCosts(), 1e-6)
	assert.InDeltaSlice(t, values, basicValues(e), 1e-6)
}

// basicValues maps the basic solution onto the flat index space.
func basicValues(e *Engine) []float64 {
	v := make([]float64, e.sum+1)
	v[0] = e.rhs[0]
	for i := 1; i <= e.rows; i++ {
		v[e.bas[i]] = e.rhs[i]
	}
	return v
}

func TestEtaFileGrowth(t *testing.T) {
	f := newEtaFile(1)
	pcol := []float64{0, 2, 4}
	for k := 0; k < 100; k++ {
		f.stage(1, pcol)
		f.commit()
	}
	assert.Equal(t, 100, f.size())
	assert.Equal(t, 200, f.nonZeros())

	f.stage(2, pcol)
	rows, values := f.staged()
	assert.Equal(t, []int{1, 2}, rows)
	assert.Equal(t, []float64{2, 4}, values)
	f.reset()
	assert.Zero(t, f.size())
}
