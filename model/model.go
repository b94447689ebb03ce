package model

import (
	"fmt"
	"math"
	"slices"

	"github.com/pkg/errors"
)

// DefaultInfinity is the value the model stores for an infinite bound.
// Anything at or above it is treated as unbounded.
const DefaultInfinity = 1e24

type ConstraintType int

const (
	LE ConstraintType = iota + 1
	GE
	EQ
)

func (t ConstraintType) String() string {
	switch t {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	}
	return fmt.Sprintf("ConstraintType(%d)", int(t))
}

// Entry is one stored nonzero of a column.
type Entry struct {
	Row   int
	Value float64
}

// Model is a linear program in lp_solve layout. Rows and columns share one
// flat index space: 1..Rows() are the rows (their slack variables) and
// Rows()+1..Sum() are the structural columns. Row 0 is the objective.
//
// Constraint rows are stored so that every row reads "slack = rhs - a'x,
// 0 <= slack <= upper": a >= row is sign flipped, an equality has upper 0
// and a range has a finite upper. The objective is stored in minimisation
// orientation. The model is never modified by a solve.
type Model struct {
	rows    int
	columns int

	// column j occupies mat[colEnd[j-1]:colEnd[j]]
	mat    []Entry
	colEnd []int

	// row-wise index of mat (rows 1..rows): row i lists colNo[rowEnd[i-1]:rowEnd[i]]
	rowEnd      []int
	colNo       []int
	rowEndValid bool

	origRH    []float64
	origUpper []float64
	origLower []float64
	mustBeInt []bool
	chSign    []bool

	maximize bool
	objConst float64

	rowNames []string
	colNames []string

	infinity float64
	version  uint64
}

// NewModel returns an empty rows x columns model: all coefficients zero,
// minimisation, all rows <=, columns in [0, +inf), no integer columns.
func NewModel(numRows, numCols int) (*Model, error) {
	if numRows < 0 || numCols < 0 {
		return nil, errors.Wrapf(ErrBadDimensions, "new model %dx%d", numRows, numCols)
	}
	m := &Model{
		rows:     numRows,
		columns:  numCols,
		colEnd:   make([]int, numCols+1),
		origRH:   make([]float64, numRows+1),
		chSign:   make([]bool, numRows+1),
		rowNames: make([]string, numRows+1),
		colNames: make([]string, numCols+1),
		infinity: DefaultInfinity,
	}
	sum := numRows + numCols
	m.origUpper = make([]float64, sum+1)
	m.origLower = make([]float64, sum+1)
	m.mustBeInt = make([]bool, sum+1)
	for i := range m.origUpper {
		m.origUpper[i] = m.infinity
	}
	return m, nil
}

func (m *Model) Rows() int            { return m.rows }
func (m *Model) Columns() int         { return m.columns }
func (m *Model) Sum() int             { return m.rows + m.columns }
func (m *Model) Infinity() float64    { return m.infinity }
func (m *Model) IsMaximize() bool     { return m.maximize }
func (m *Model) NonZeros() int        { return len(m.mat) }
func (m *Model) Version() uint64      { return m.version }
func (m *Model) ObjConstant() float64 { return m.objConst }

func (m *Model) touch() {
	m.version++
	m.rowEndValid = false
}

func (m *Model) checkRow(row int, objective bool) error {
	lo := 1
	if objective {
		lo = 0
	}
	if row < lo || row > m.rows {
		return errors.Wrapf(ErrRowOutOfRange, "row %d not in [%d,%d]", row, lo, m.rows)
	}
	return nil
}

func (m *Model) checkCol(col int) error {
	if col < 1 || col > m.columns {
		return errors.Wrapf(ErrColumnOutOfRange, "column %d not in [1,%d]", col, m.columns)
	}
	return nil
}

func (m *Model) clampUpper(v float64) float64 {
	if v >= m.infinity {
		return m.infinity
	}
	return v
}

// SetMat sets element (row, col) of the matrix; row 0 is the objective.
// Setting an existing element to zero removes it.
func (m *Model) SetMat(row, col int, value float64) error {
	if err := m.checkRow(row, true); err != nil {
		return errors.Wrap(err, "set matrix entry")
	}
	if err := m.checkCol(col); err != nil {
		return errors.Wrap(err, "set matrix entry")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.Wrapf(ErrNaN, "set matrix entry (%d,%d)", row, col)
	}
	if m.chSign[row] {
		value = -value
	}

	elmnr := m.colEnd[col-1]
	for elmnr < m.colEnd[col] && m.mat[elmnr].Row != row {
		elmnr++
	}
	switch {
	case elmnr < m.colEnd[col] && value != 0:
		m.mat[elmnr].Value = value
	case elmnr < m.colEnd[col]:
		m.mat = slices.Delete(m.mat, elmnr, elmnr+1)
		for j := col; j <= m.columns; j++ {
			m.colEnd[j]--
		}
	case value != 0:
		m.mat = slices.Insert(m.mat, elmnr, Entry{Row: row, Value: value})
		for j := col; j <= m.columns; j++ {
			m.colEnd[j]++
		}
	}
	m.touch()
	return nil
}

func (m *Model) SetObjective(col int, value float64) error {
	return m.SetMat(0, col, value)
}

// SetObjectiveConstant sets a constant term added to the objective value.
func (m *Model) SetObjectiveConstant(value float64) {
	m.objConst = value
	m.touch()
}

func (m *Model) SetRHS(row int, value float64) error {
	if err := m.checkRow(row, false); err != nil {
		return errors.Wrap(err, "set rhs")
	}
	if math.IsNaN(value) {
		return errors.Wrapf(ErrNaN, "set rhs of row %d", row)
	}
	if m.chSign[row] {
		value = -value
	}
	m.origRH[row] = value
	m.touch()
	return nil
}

func (m *Model) flipRow(row int) {
	for i := range m.mat {
		if m.mat[i].Row == row {
			m.mat[i].Value = -m.mat[i].Value
		}
	}
	m.chSign[row] = !m.chSign[row]
	m.origRH[row] = -m.origRH[row]
}

func (m *Model) SetConstraintType(row int, t ConstraintType) error {
	if err := m.checkRow(row, false); err != nil {
		return errors.Wrap(err, "set constraint type")
	}
	switch t {
	case EQ:
		m.origUpper[row] = 0
		if m.chSign[row] {
			m.flipRow(row)
		}
	case LE:
		m.origUpper[row] = m.infinity
		if m.chSign[row] {
			m.flipRow(row)
		}
	case GE:
		m.origUpper[row] = m.infinity
		if !m.chSign[row] {
			m.flipRow(row)
		}
	default:
		return errors.Wrapf(ErrBadConstraintType, "row %d: %d", row, int(t))
	}
	m.touch()
	return nil
}

// SetRange turns row into lo <= a'x <= hi. Either side may be infinite.
func (m *Model) SetRange(row int, lo, hi float64) error {
	if err := m.checkRow(row, false); err != nil {
		return errors.Wrap(err, "set range")
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return errors.Wrapf(ErrNaN, "set range of row %d", row)
	}
	loInf := lo <= -m.infinity
	hiInf := hi >= m.infinity
	if lo > hi || (loInf && hiInf) {
		return errors.Wrapf(ErrBadBounds, "row %d range [%g,%g]", row, lo, hi)
	}
	var err error
	switch {
	case lo == hi:
		err = m.setRow(row, EQ, hi)
	case loInf:
		err = m.setRow(row, LE, hi)
	case hiInf:
		err = m.setRow(row, GE, lo)
	default:
		if err = m.setRow(row, LE, hi); err == nil {
			m.origUpper[row] = hi - lo
		}
	}
	return err
}

func (m *Model) setRow(row int, t ConstraintType, rhs float64) error {
	if err := m.SetConstraintType(row, t); err != nil {
		return err
	}
	return m.SetRHS(row, rhs)
}

// SetBounds sets lower <= x_col <= upper. The lower bound must be finite;
// upper may be math.Inf(1).
func (m *Model) SetBounds(col int, lower, upper float64) error {
	if err := m.checkCol(col); err != nil {
		return errors.Wrap(err, "set bounds")
	}
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return errors.Wrapf(ErrNaN, "set bounds of column %d", col)
	}
	if lower <= -m.infinity {
		return errors.Wrapf(ErrInfiniteLower, "column %d", col)
	}
	if upper < lower {
		return errors.Wrapf(ErrBadBounds, "column %d: [%g,%g]", col, lower, upper)
	}
	m.origLower[m.rows+col] = lower
	m.origUpper[m.rows+col] = m.clampUpper(upper)
	m.touch()
	return nil
}

func (m *Model) SetUpper(col int, value float64) error {
	if err := m.checkCol(col); err != nil {
		return errors.Wrap(err, "set upper bound")
	}
	return m.SetBounds(col, m.origLower[m.rows+col], value)
}

func (m *Model) SetLower(col int, value float64) error {
	if err := m.checkCol(col); err != nil {
		return errors.Wrap(err, "set lower bound")
	}
	return m.SetBounds(col, value, m.origUpper[m.rows+col])
}

func (m *Model) SetInt(col int, mustBeInt bool) error {
	if err := m.checkCol(col); err != nil {
		return errors.Wrap(err, "set int")
	}
	m.mustBeInt[m.rows+col] = mustBeInt
	m.touch()
	return nil
}

func (m *Model) SetMaximize() { m.setSense(true) }
func (m *Model) SetMinimize() { m.setSense(false) }

func (m *Model) setSense(maximize bool) {
	if m.maximize != maximize {
		for i := range m.mat {
			if m.mat[i].Row == 0 {
				m.mat[i].Value = -m.mat[i].Value
			}
		}
	}
	m.maximize = maximize
	m.chSign[0] = maximize
	m.touch()
}

// MatElm returns element (row, col) as the user entered it.
func (m *Model) MatElm(row, col int) (float64, error) {
	if err := m.checkRow(row, true); err != nil {
		return 0, err
	}
	if err := m.checkCol(col); err != nil {
		return 0, err
	}
	for _, e := range m.Col(col) {
		if e.Row == row {
			return m.real(row, e.Value), nil
		}
	}
	return 0, nil
}

func (m *Model) real(row int, v float64) float64 {
	if m.chSign[row] && v != 0 {
		return -v
	}
	return v
}

// Row returns row as a dense vector indexed by column (index 0 unused).
func (m *Model) Row(row int) ([]float64, error) {
	if err := m.checkRow(row, true); err != nil {
		return nil, err
	}
	out := make([]float64, m.columns+1)
	for j := 1; j <= m.columns; j++ {
		for _, e := range m.Col(j) {
			if e.Row == row {
				out[j] = m.real(row, e.Value)
			}
		}
	}
	return out, nil
}

// Column returns col as a dense vector indexed by row; index 0 is the
// objective coefficient.
func (m *Model) Column(col int) ([]float64, error) {
	if err := m.checkCol(col); err != nil {
		return nil, err
	}
	out := make([]float64, m.rows+1)
	for _, e := range m.Col(col) {
		out[e.Row] = m.real(e.Row, e.Value)
	}
	return out, nil
}

func (m *Model) ConstraintType(row int) (ConstraintType, error) {
	if err := m.checkRow(row, false); err != nil {
		return 0, err
	}
	switch {
	case m.origUpper[row] == 0:
		return EQ, nil
	case m.chSign[row]:
		return GE, nil
	}
	return LE, nil
}

func (m *Model) RHS(row int) (float64, error) {
	if err := m.checkRow(row, false); err != nil {
		return 0, err
	}
	return m.real(row, m.origRH[row]), nil
}

// Range returns the row activity limits lo <= a'x <= hi.
func (m *Model) Range(row int) (lo, hi float64, err error) {
	rhs, err := m.RHS(row)
	if err != nil {
		return 0, 0, err
	}
	up := m.origUpper[row]
	if m.chSign[row] {
		lo, hi = rhs, math.Inf(1)
		if up < m.infinity {
			hi = rhs + up
		}
		return lo, hi, nil
	}
	lo, hi = math.Inf(-1), rhs
	if up < m.infinity {
		lo = rhs - up
	}
	return lo, hi, nil
}

// Bounds returns the bounds of col; an infinite upper bound is math.Inf(1).
func (m *Model) Bounds(col int) (lower, upper float64, err error) {
	if err := m.checkCol(col); err != nil {
		return 0, 0, err
	}
	lower, upper = m.origLower[m.rows+col], m.origUpper[m.rows+col]
	if upper >= m.infinity {
		upper = math.Inf(1)
	}
	return lower, upper, nil
}

func (m *Model) IsInt(col int) bool {
	if col < 1 || col > m.columns {
		return false
	}
	return m.mustBeInt[m.rows+col]
}

func (m *Model) SetRowName(row int, name string) error {
	if err := m.checkRow(row, true); err != nil {
		return err
	}
	m.rowNames[row] = name
	return nil
}

func (m *Model) SetColName(col int, name string) error {
	if err := m.checkCol(col); err != nil {
		return err
	}
	m.colNames[col] = name
	return nil
}

func (m *Model) RowName(row int) string {
	if row >= 0 && row <= m.rows && m.rowNames[row] != "" {
		return m.rowNames[row]
	}
	return fmt.Sprintf("R%d", row)
}

func (m *Model) ColName(col int) string {
	if col >= 1 && col <= m.columns && m.colNames[col] != "" {
		return m.colNames[col]
	}
	return fmt.Sprintf("C%d", col)
}

// AddConstraint appends a row. coefs is indexed by column (index 0 ignored).
func (m *Model) AddConstraint(coefs []float64, t ConstraintType, rhs float64) error {
	if len(coefs) != m.columns+1 {
		return errors.Wrapf(ErrBadDimensions, "add constraint: %d coefficients for %d columns", len(coefs)-1, m.columns)
	}
	if t != LE && t != GE && t != EQ {
		return errors.Wrapf(ErrBadConstraintType, "add constraint: %d", int(t))
	}
	for _, v := range coefs[1:] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrap(ErrNaN, "add constraint")
		}
	}
	row := m.rows + 1
	mat := make([]Entry, 0, len(m.mat)+m.columns)
	start := 0
	for j := 1; j <= m.columns; j++ {
		mat = append(mat, m.mat[start:m.colEnd[j]]...)
		start = m.colEnd[j]
		if coefs[j] != 0 {
			mat = append(mat, Entry{Row: row, Value: coefs[j]})
		}
		m.colEnd[j] = len(mat)
	}
	m.mat = mat
	m.rows = row
	m.origRH = append(m.origRH, 0)
	m.chSign = append(m.chSign, false)
	m.rowNames = append(m.rowNames, "")
	m.origUpper = slices.Insert(m.origUpper, row, m.infinity)
	m.origLower = slices.Insert(m.origLower, row, 0)
	m.mustBeInt = slices.Insert(m.mustBeInt, row, false)
	m.touch()
	return m.setRow(row, t, rhs)
}

// AddColumn appends a column. col is indexed by row; col[0] is the
// objective coefficient.
func (m *Model) AddColumn(col []float64) error {
	if len(col) != m.rows+1 {
		return errors.Wrapf(ErrBadDimensions, "add column: %d values for %d rows", len(col)-1, m.rows)
	}
	for i, v := range col {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrap(ErrNaN, "add column")
		}
		if v != 0 {
			m.mat = append(m.mat, Entry{Row: i, Value: m.real(i, v)})
		}
	}
	m.columns++
	m.colEnd = append(m.colEnd, len(m.mat))
	m.colNames = append(m.colNames, "")
	m.origUpper = append(m.origUpper, m.infinity)
	m.origLower = append(m.origLower, 0)
	m.mustBeInt = append(m.mustBeInt, false)
	m.touch()
	return nil
}

func (m *Model) DelConstraint(row int) error {
	if err := m.checkRow(row, false); err != nil {
		return errors.Wrap(err, "delete constraint")
	}
	mat := m.mat[:0]
	start := 0
	for j := 1; j <= m.columns; j++ {
		for _, e := range m.mat[start:m.colEnd[j]] {
			switch {
			case e.Row == row:
				continue
			case e.Row > row:
				e.Row--
			}
			mat = append(mat, e)
		}
		start = m.colEnd[j]
		m.colEnd[j] = len(mat)
	}
	m.mat = mat
	m.origRH = slices.Delete(m.origRH, row, row+1)
	m.chSign = slices.Delete(m.chSign, row, row+1)
	m.rowNames = slices.Delete(m.rowNames, row, row+1)
	m.origUpper = slices.Delete(m.origUpper, row, row+1)
	m.origLower = slices.Delete(m.origLower, row, row+1)
	m.mustBeInt = slices.Delete(m.mustBeInt, row, row+1)
	m.rows--
	m.touch()
	return nil
}

func (m *Model) DelColumn(col int) error {
	if err := m.checkCol(col); err != nil {
		return errors.Wrap(err, "delete column")
	}
	lo, hi := m.colEnd[col-1], m.colEnd[col]
	m.mat = slices.Delete(m.mat, lo, hi)
	for j := col + 1; j <= m.columns; j++ {
		m.colEnd[j] -= hi - lo
	}
	m.colEnd = slices.Delete(m.colEnd, col, col+1)
	m.colNames = slices.Delete(m.colNames, col, col+1)
	v := m.rows + col
	m.origUpper = slices.Delete(m.origUpper, v, v+1)
	m.origLower = slices.Delete(m.origLower, v, v+1)
	m.mustBeInt = slices.Delete(m.mustBeInt, v, v+1)
	m.columns--
	m.touch()
	return nil
}

// ColumnInLP reports whether a column with exactly these values (indexed
// by row, objective at 0) is already present. Bounds and types are ignored.
func (m *Model) ColumnInLP(col []float64) bool {
	if len(col) != m.rows+1 {
		return false
	}
	const eps = 1e-8
	nz := 0
	for _, v := range col {
		if math.Abs(v) > eps {
			nz++
		}
	}
	for j := 1; j <= m.columns; j++ {
		entries := m.Col(j)
		if len(entries) != nz {
			continue
		}
		same := true
		for _, e := range entries {
			if math.Abs(m.real(e.Row, e.Value)-col[e.Row]) > eps {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// Col returns the stored nonzeros of col in the solver's orientation (sign
// flipped rows, minimisation objective). The slice must not be modified.
func (m *Model) Col(col int) []Entry {
	return m.mat[m.colEnd[col-1]:m.colEnd[col]]
}

// RowColumns returns the columns with a nonzero in constraint row (1..Rows).
// The slice must not be modified.
func (m *Model) RowColumns(row int) []int {
	if !m.rowEndValid {
		m.buildRowIndex()
	}
	return m.colNo[m.rowEnd[row-1]:m.rowEnd[row]]
}

func (m *Model) buildRowIndex() {
	count := make([]int, m.rows+1)
	for _, e := range m.mat {
		if e.Row != 0 {
			count[e.Row]++
		}
	}
	m.rowEnd = make([]int, m.rows+1)
	for i := 1; i <= m.rows; i++ {
		m.rowEnd[i] = m.rowEnd[i-1] + count[i]
	}
	m.colNo = make([]int, m.rowEnd[m.rows])
	fill := make([]int, m.rows+1)
	for j := 1; j <= m.columns; j++ {
		for _, e := range m.Col(j) {
			if e.Row != 0 {
				m.colNo[m.rowEnd[e.Row-1]+fill[e.Row]] = j
				fill[e.Row]++
			}
		}
	}
	m.rowEndValid = true
}

// RHSVector returns a fresh copy of the stored right hand sides. Entry 0
// carries the negated objective constant.
func (m *Model) RHSVector() []float64 {
	rh := slices.Clone(m.origRH)
	k := m.objConst
	if m.maximize {
		k = -k
	}
	rh[0] = -k
	return rh
}

// UpperBounds and LowerBounds return fresh copies of the bounds over the
// flat index space.
func (m *Model) UpperBounds() []float64 { return slices.Clone(m.origUpper) }
func (m *Model) LowerBounds() []float64 { return slices.Clone(m.origLower) }

// MustBeInt reports whether flat variable v is an integer column.
func (m *Model) MustBeInt(v int) bool { return m.mustBeInt[v] }

// ChangedSign reports whether row i (0 = objective) is stored negated.
func (m *Model) ChangedSign(i int) bool { return m.chSign[i] }

// HasInt reports whether any column must be integer.
func (m *Model) HasInt() bool {
	return slices.Contains(m.mustBeInt, true)
}

// RowUpper returns the stored upper bound of row (1..Rows) in internal
// orientation: 0 for an equality, the range width for a ranged row and the
// model infinity otherwise.
func (m *Model) RowUpper(row int) float64 { return m.origUpper[row] }
