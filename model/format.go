package model

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// Dense returns the constraint matrix (rows 1..Rows) as entered by the user.
func (m *Model) Dense() *mat.Dense {
	if m.rows == 0 || m.columns == 0 {
		return &mat.Dense{}
	}
	a := mat.NewDense(m.rows, m.columns, nil)
	for j := 1; j <= m.columns; j++ {
		for _, e := range m.Col(j) {
			if e.Row != 0 {
				a.Set(e.Row-1, j-1, m.real(e.Row, e.Value))
			}
		}
	}
	return a
}

// Objective returns the objective coefficients as entered by the user.
func (m *Model) Objective() *mat.VecDense {
	if m.columns == 0 {
		return &mat.VecDense{}
	}
	c := mat.NewVecDense(m.columns, nil)
	for j := 1; j <= m.columns; j++ {
		for _, e := range m.Col(j) {
			if e.Row == 0 {
				c.SetVec(j-1, m.real(0, e.Value))
			}
		}
	}
	return c
}

// Format renders the objective, matrix and right hand sides for small models.
func (m *Model) Format() string {
	if m.columns == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "c = %v\n", mat.Formatted(m.Objective().T(), mat.Prefix("    "), mat.Squeeze()))
	fmt.Fprintf(&sb, "A = %v\n", mat.Formatted(m.Dense(), mat.Prefix("    "), mat.Squeeze()))
	b := make([]float64, m.rows)
	for i := 1; i <= m.rows; i++ {
		b[i-1] = m.real(i, m.origRH[i])
	}
	if m.rows > 0 {
		fmt.Fprintf(&sb, "b = %v\n", mat.Formatted(mat.NewVecDense(m.rows, b).T(), mat.Prefix("    "), mat.Squeeze()))
	}
	return sb.String()
}

// IsFeasible reports whether values (indexed by column, index 0 unused)
// satisfies all bounds and constraints. Constraints are checked with a
// tolerance of 1e-3.
func (m *Model) IsFeasible(values []float64) bool {
	const tol = 1e-3
	if len(values) != m.columns+1 {
		return false
	}
	for j := 1; j <= m.columns; j++ {
		v := m.rows + j
		if values[j] < m.origLower[v]-tol || values[j] > m.origUpper[v]+tol {
			return false
		}
	}
	if m.rows == 0 || m.columns == 0 {
		return true
	}
	var act mat.VecDense
	act.MulVec(m.Dense(), mat.NewVecDense(m.columns, values[1:]))
	for i := 1; i <= m.rows; i++ {
		lo, hi, _ := m.Range(i)
		a := act.AtVec(i - 1)
		if a < lo-tol || a > hi+tol {
			return false
		}
	}
	return true
}

// Evaluate returns the objective value of values (indexed by column, index
// 0 unused), including the objective constant.
func (m *Model) Evaluate(values []float64) (float64, error) {
	if len(values) != m.columns+1 {
		return 0, errors.Wrapf(ErrBadDimensions, "evaluate: %d values for %d columns", len(values)-1, m.columns)
	}
	c, _ := m.Row(0)
	return floats.Dot(c[1:], values[1:]) + m.objConst, nil
}

// Validate logs columns that appear in no constraint.
func (m *Model) Validate() {
	for j := 1; j <= m.columns; j++ {
		used := false
		for _, e := range m.Col(j) {
			if e.Row != 0 {
				used = true
				break
			}
		}
		if !used {
			klog.Warningf("variable %s not used in any constraint", m.ColName(j))
		}
	}
}

// WriteLP writes the model in lp_solve's LP text format.
func (m *Model) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if m.maximize {
		bw.WriteString("max:")
	} else {
		bw.WriteString("min:")
	}
	obj, _ := m.Row(0)
	m.writeTerms(bw, obj)
	if m.objConst != 0 {
		fmt.Fprintf(bw, " %+g", m.objConst)
	}
	bw.WriteString(";\n")

	for i := 1; i <= m.rows; i++ {
		row, _ := m.Row(i)
		lo, hi, _ := m.Range(i)
		fmt.Fprintf(bw, "%s:", m.RowName(i))
		if !math.IsInf(lo, -1) && !math.IsInf(hi, 1) && lo != hi {
			fmt.Fprintf(bw, " %g <=", lo)
			m.writeTerms(bw, row)
			fmt.Fprintf(bw, " <= %g;\n", hi)
			continue
		}
		m.writeTerms(bw, row)
		t, _ := m.ConstraintType(i)
		rhs, _ := m.RHS(i)
		fmt.Fprintf(bw, " %s %g;\n", t, rhs)
	}

	for j := 1; j <= m.columns; j++ {
		lo, hi, _ := m.Bounds(j)
		if lo != 0 {
			fmt.Fprintf(bw, "%s >= %g;\n", m.ColName(j), lo)
		}
		if !math.IsInf(hi, 1) {
			fmt.Fprintf(bw, "%s <= %g;\n", m.ColName(j), hi)
		}
	}

	var ints []string
	for j := 1; j <= m.columns; j++ {
		if m.IsInt(j) {
			ints = append(ints, m.ColName(j))
		}
	}
	if len(ints) > 0 {
		fmt.Fprintf(bw, "\nint %s;\n", strings.Join(ints, ","))
	}
	return bw.Flush()
}

func (m *Model) writeTerms(w io.Writer, row []float64) {
	for j := 1; j <= m.columns; j++ {
		switch v := row[j]; v {
		case 0:
			continue
		case 1:
			fmt.Fprintf(w, " +%s", m.ColName(j))
		case -1:
			fmt.Fprintf(w, " -%s", m.ColName(j))
		default:
			fmt.Fprintf(w, " %+g %s", v, m.ColName(j))
		}
	}
}
