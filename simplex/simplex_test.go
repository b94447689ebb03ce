package simplex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/lpsolve/model"
)

func TestSolveMaximize(t *testing.T) {
	m := buildModel(t, true, []float64{2, 3},
		row{[]float64{1, 1}, model.LE, 4},
		row{[]float64{1, 0}, model.LE, 3},
	)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 12, e.Objective(), 1e-9)
	assert.InDeltaSlice(t, []float64{0, 4}, e.Values(), 1e-9)
	assert.InDeltaSlice(t, []float64{0, 3, 0}, e.Duals(), 1e-9)
}

func TestSolveDualValues(t *testing.T) {
	m := wyndor(t)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 36, e.Objective(), 1e-9)
	assert.InDeltaSlice(t, []float64{2, 6}, e.Values(), 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0, 1.5, 1}, e.Duals(), 1e-9)
	assert.InDeltaSlice(t, []float64{0, 2, 12, 18}, e.RowActivities(), 1e-9)
}

func TestSolveMinimizeGreaterEqual(t *testing.T) {
	m := buildModel(t, false, []float64{1, 1},
		row{[]float64{1, 1}, model.GE, 2},
		row{[]float64{1, -1}, model.LE, 1},
	)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 2, e.Objective(), 1e-9)
	act := e.RowActivities()
	assert.InDelta(t, 2, act[1], 1e-9)
	assert.True(t, m.IsFeasible(append([]float64{0}, e.Values()...)))
}

func TestSolveEquality(t *testing.T) {
	m := buildModel(t, false, []float64{1}, row{[]float64{1}, model.EQ, 7})
	require.NoError(t, m.SetBounds(1, 0, 10))
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 7, e.Values()[0], 1e-9)
}

func TestSolveInfeasibleEquality(t *testing.T) {
	m := buildModel(t, false, []float64{1}, row{[]float64{1}, model.EQ, 5})
	require.NoError(t, m.SetUpper(1, 3))
	e := newEngine(t, m, DefaultOptions())
	assert.Equal(t, StatusInfeasible, solve(t, e, m))
}

func TestSolveInfeasibleRows(t *testing.T) {
	m := buildModel(t, false, []float64{1, 1},
		row{[]float64{1, 1}, model.GE, 5},
		row{[]float64{1, 1}, model.LE, 3},
	)
	e := newEngine(t, m, DefaultOptions())
	assert.Equal(t, StatusInfeasible, solve(t, e, m))
}

func TestSolveUnbounded(t *testing.T) {
	m := buildModel(t, true, []float64{1, 1}, row{[]float64{0, 1}, model.LE, 5})
	e := newEngine(t, m, DefaultOptions())
	assert.Equal(t, StatusUnbounded, solve(t, e, m))
}

func TestSolveBoundFlip(t *testing.T) {
	// x hits its own upper bound before any row limits it.
	m := buildModel(t, true, []float64{1, 1}, row{[]float64{1, 1}, model.LE, 10})
	require.NoError(t, m.SetUpper(1, 2))
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 10, e.Objective(), 1e-9)
	assert.InDelta(t, 2+e.Values()[1], 10, 1e-9)
}

func TestSolveLowerBoundShift(t *testing.T) {
	m := buildModel(t, false, []float64{1, 2}, row{[]float64{1, 1}, model.GE, 4})
	require.NoError(t, m.SetLower(1, 1.5))
	require.NoError(t, m.SetBounds(2, 0.5, 10))
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDeltaSlice(t, []float64{3.5, 0.5}, e.Values(), 1e-9)
	assert.InDelta(t, 4.5, e.Objective(), 1e-9)
}

func TestSolveRange(t *testing.T) {
	m := buildModel(t, true, []float64{1, -1}, row{[]float64{1, 1}, model.LE, 0})
	require.NoError(t, m.SetRange(1, 1, 3))
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 3, e.Objective(), 1e-9)

	m.SetMinimize()
	e = newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, -3, e.Objective(), 1e-9)
	assert.InDelta(t, 3, e.RowActivities()[1], 1e-9)
}

func TestSolveObjectiveConstant(t *testing.T) {
	m := wyndor(t)
	m.SetObjectiveConstant(4)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 40, e.Objective(), 1e-9)
}

func TestSolveWarmStart(t *testing.T) {
	m := wyndor(t)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))
	first := append([]float64(nil), e.Solution()...)
	b := e.Basis()

	e = newEngine(t, m, DefaultOptions())
	require.NoError(t, e.SetBasis(b))
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.Zero(t, e.Iterations())
	assert.InDeltaSlice(t, first, e.Solution(), 1e-9)
	assert.Equal(t, b, e.Basis())
}

func TestSolveNodeBounds(t *testing.T) {
	m := wyndor(t)
	e := newEngine(t, m, DefaultOptions())
	require.Equal(t, StatusOptimal, solve(t, e, m))

	b := ModelBounds(m)
	b.Upper[m.Rows()+2] = 5
	st, err := e.Solve(b)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, st)
	assert.InDeltaSlice(t, []float64{8.0 / 3, 5}, e.Values(), 1e-9)

	b.Lower[m.Rows()+1] = 5
	st, err = e.Solve(b)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, st)
}

func TestSolveAntiDegen(t *testing.T) {
	m := wyndor(t)
	opts := DefaultOptions()
	opts.AntiDegen = true
	opts.Seed = 7
	e := newEngine(t, m, opts)
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 36, e.Objective(), 1e-9)
}

func TestSolveIterationLimit(t *testing.T) {
	m := wyndor(t)
	opts := DefaultOptions()
	opts.MaxIterations = 1
	sc := NewSolverContext(context.Background())
	e, err := New(m, opts, sc)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, solve(t, e, m))
	assert.Equal(t, 1, sc.Failures)
}

func TestUnstableRetriesOnceThenFails(t *testing.T) {
	m := wyndor(t)
	sc := NewSolverContext(context.Background())
	e, err := New(m, DefaultOptions(), sc)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, solve(t, e, m))

	e.status = StatusRunning
	e.justInverted = false
	assert.True(t, e.unstable("zero pivot in row %d", 1))
	assert.Equal(t, StatusRunning, e.status)
	assert.Equal(t, 1, sc.Reinversions)

	e.justInverted = true
	assert.False(t, e.unstable("zero pivot in row %d", 1))
	assert.Equal(t, StatusFailure, e.status)
	assert.Equal(t, 1, sc.Reinversions)
}

func TestSolveWarmChildInfeasible(t *testing.T) {
	m := rangedEquality(t)
	sc := NewSolverContext(context.Background())
	e, err := New(m, DefaultOptions(), sc)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 26.0/3, e.Objective(), 1e-9)
	assert.InDeltaSlice(t, []float64{2, 0, 5.0 / 3, 1}, e.Values(), 1e-9)

	child := ModelBounds(m)
	child.Upper[m.Rows()+3] = 1
	st, err := e.Solve(child)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, st)
	require.NoError(t, e.Basis().Validate(m.Rows(), m.Columns()))

	e.ResetBasis()
	st, err = e.Solve(child)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, st)
	assert.Zero(t, sc.Failures)

	child = ModelBounds(m)
	child.Lower[m.Rows()+3] = 2
	st, err = e.Solve(child)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, st)
	assert.Zero(t, sc.Failures)
}

func TestSolveAntiDegenSeeds(t *testing.T) {
	m := rangedEquality(t)
	child := ModelBounds(m)
	child.Upper[m.Rows()+3] = 1
	for seed := uint64(1); seed <= 40; seed++ {
		opts := DefaultOptions()
		opts.AntiDegen = true
		opts.Seed = seed
		sc := NewSolverContext(context.Background())
		e, err := New(m, opts, sc)
		require.NoError(t, err)
		require.Equal(t, StatusOptimal, solve(t, e, m), "seed %d", seed)
		assert.InDelta(t, 26.0/3, e.Objective(), 1e-6, "seed %d", seed)

		st, err := e.Solve(child)
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, st, "seed %d", seed)
		assert.Zero(t, sc.Failures, "seed %d", seed)
	}
}

func TestSolveAborted(t *testing.T) {
	m := wyndor(t)
	sc := NewSolverContext(context.Background())
	sc.Abort()
	e, err := New(m, DefaultOptions(), sc)
	require.NoError(t, err)
	assert.Equal(t, StatusBreak, solve(t, e, m))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, err = New(m, DefaultOptions(), NewSolverContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, StatusBreak, solve(t, e, m))
}

func TestSolveFrequentReinversion(t *testing.T) {
	m := wyndor(t)
	opts := DefaultOptions()
	opts.MaxPivots = 1
	e := newEngine(t, m, opts)
	require.Equal(t, StatusOptimal, solve(t, e, m))
	assert.InDelta(t, 36, e.Objective(), 1e-9)
}

func TestSolveRejectsBadInput(t *testing.T) {
	m := wyndor(t)
	e := newEngine(t, m, DefaultOptions())

	_, err := e.Solve(Bounds{Lower: make([]float64, 2), Upper: make([]float64, 2)})
	assert.ErrorIs(t, err, ErrBadBounds)

	b := ModelBounds(m)
	b.Lower[4] = 3
	b.Upper[4] = 2
	_, err = e.Solve(b)
	assert.ErrorIs(t, err, ErrBadBounds)

	bad := SlackBasis(m.Rows(), m.Columns())
	bad.Bas[1] = 2
	assert.ErrorIs(t, e.SetBasis(bad), ErrBadBasis)

	opts := DefaultOptions()
	opts.MaxPivots = 0
	_, err = New(m, opts, nil)
	assert.ErrorIs(t, err, ErrBadOptions)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OPTIMAL", StatusOptimal.String())
	assert.Equal(t, "INFEASIBLE", StatusInfeasible.String())
	assert.Equal(t, "Status(42)", Status(42).String())
	assert.True(t, StatusSuboptimal.HasSolution())
	assert.False(t, StatusBreak.HasSolution())
}
