package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleModel is max 2x + 3y s.t. c1: x + y <= 4, c2: 1 <= x <= 3, y <= 5,
// y integer.
func exampleModel(t *testing.T) *Model {
	m, err := NewModel(2, 2)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(1, 2))
	require.NoError(t, m.SetObjective(2, 3))
	require.NoError(t, m.SetMat(1, 1, 1))
	require.NoError(t, m.SetMat(1, 2, 1))
	require.NoError(t, m.SetMat(2, 1, 1))
	require.NoError(t, m.SetRHS(1, 4))
	require.NoError(t, m.SetRange(2, 1, 3))
	require.NoError(t, m.SetUpper(2, 5))
	require.NoError(t, m.SetInt(2, true))
	require.NoError(t, m.SetRowName(1, "c1"))
	require.NoError(t, m.SetRowName(2, "c2"))
	require.NoError(t, m.SetColName(1, "x"))
	require.NoError(t, m.SetColName(2, "y"))
	m.SetMaximize()
	return m
}

func TestDense(t *testing.T) {
	m := exampleModel(t)
	a := m.Dense()
	r, c := a.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1.0, a.At(0, 1))
	assert.Equal(t, 0.0, a.At(1, 1))
	assert.Equal(t, 3.0, m.Objective().AtVec(1))
	assert.Contains(t, m.Format(), "A = ")
}

func TestIsFeasible(t *testing.T) {
	m := exampleModel(t)
	assert.True(t, m.IsFeasible([]float64{0, 1, 3}))
	assert.False(t, m.IsFeasible([]float64{0, 0, 3}), "row range violated")
	assert.False(t, m.IsFeasible([]float64{0, 2, 6}), "upper bound violated")
	assert.True(t, m.IsFeasible([]float64{0, 1, 3 + 1e-9}), "within tolerance")
	assert.False(t, m.IsFeasible([]float64{0, 2, 3}), "row 1 violated")
	assert.False(t, m.IsFeasible([]float64{1, 2}))
}

func TestEvaluate(t *testing.T) {
	m := exampleModel(t)
	m.SetObjectiveConstant(1)
	v, err := m.Evaluate([]float64{0, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)

	_, err = m.Evaluate([]float64{1})
	assert.ErrorIs(t, err, ErrBadDimensions)
}

func TestWriteLP(t *testing.T) {
	m := exampleModel(t)
	var buf bytes.Buffer
	require.NoError(t, m.WriteLP(&buf))
	want := "max: +2 x +3 y;\n" +
		"c1: +x +y <= 4;\n" +
		"c2: 1 <= +x <= 3;\n" +
		"y <= 5;\n" +
		"\nint y;\n"
	assert.Equal(t, want, buf.String())
}
