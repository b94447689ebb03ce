package simplex

import "k8s.io/klog/v2"

// invert rebuilds the eta file for the current basis from scratch and
// recomputes the basic solution. Row singletons are pivoted first, column
// singletons last, and the remaining basic columns in between. A basic
// column that finds no free row with a nonzero pivot is dropped from the
// basis; its row keeps the slack.
func (e *Engine) invert() {
	rows, columns := e.rows, e.columns
	e.inversions++

	frow := make([]bool, rows+1)
	fcol := make([]bool, columns+1)
	rownum := make([]int, rows+1)
	colnum := make([]int, columns+1)
	for i := 1; i <= rows; i++ {
		frow[i] = true
	}
	for i := 1; i <= rows; i++ {
		if v := e.bas[i]; v > rows {
			fcol[v-rows] = true
		} else {
			frow[v] = false
		}
	}
	// basic variables are measured from their lower bound, and nothing
	// rests at an infinite upper bound
	for v := 1; v <= e.sum; v++ {
		if e.basis[v] || e.upbo[v] >= e.infinity {
			e.lower[v] = true
		}
	}
	for i := 1; i <= rows; i++ {
		if !frow[i] {
			continue
		}
		for _, j := range e.m.RowColumns(i) {
			if fcol[j] {
				colnum[j]++
				rownum[i]++
			}
		}
	}

	for i := 1; i <= rows; i++ {
		e.bas[i] = i
		e.basis[i] = true
	}
	for v := rows + 1; v <= e.sum; v++ {
		e.basis[v] = false
	}
	copy(e.rhs, e.rh)
	for j := 1; j <= columns; j++ {
		v := rows + j
		if e.lower[v] {
			continue
		}
		theta := e.upbo[v]
		for _, el := range e.m.Col(j) {
			e.rhs[el.Row] -= theta * el.Value
		}
	}
	for i := 1; i <= rows; i++ {
		if !e.lower[i] {
			e.rhs[i] -= e.upbo[i]
		}
	}
	e.eta.reset()
	e.numInv = 0

	for v, row := 0, 0; v < rows; {
		row++
		if row > rows {
			row = 1
		}
		v++
		if rownum[row] != 1 || !frow[row] {
			continue
		}
		v = 0
		var col int
		for _, j := range e.m.RowColumns(row) {
			if fcol[j] {
				col = j
				break
			}
		}
		fcol[col] = false
		colnum[col] = 0
		for _, el := range e.m.Col(col) {
			if frow[el.Row] {
				rownum[el.Row]--
			}
		}
		frow[row] = false
		e.pivotColumn(col, row)
	}

	type singleton struct{ col, row int }
	var singles []singleton
	for v, col := 0, 0; v < columns; {
		col++
		if col > columns {
			col = 1
		}
		v++
		if colnum[col] != 1 || !fcol[col] {
			continue
		}
		v = 0
		var row int
		for _, el := range e.m.Col(col) {
			if frow[el.Row] {
				row = el.Row
				break
			}
		}
		frow[row] = false
		rownum[row] = 0
		for _, j := range e.m.RowColumns(row) {
			if fcol[j] {
				colnum[j]--
			}
		}
		fcol[col] = false
		singles = append(singles, singleton{col, row})
	}

	for j := 1; j <= columns; j++ {
		if !fcol[j] {
			continue
		}
		fcol[j] = false
		e.setpivcol(true, rows+j, e.pcol)
		row := 0
		for i := 1; i <= rows; i++ {
			if frow[i] && e.pcol[i] != 0 {
				row = i
				break
			}
		}
		if row == 0 {
			klog.Warningf("singular basis: column %d dropped from the basis", j)
			continue
		}
		frow[row] = false
		e.eta.stage(row, e.pcol)
		e.rhsmincol(e.rhs[row]/e.pcol[row], row, rows+j)
		e.eta.commit()
	}

	for k := len(singles) - 1; k >= 0; k-- {
		e.pivotColumn(singles[k].col, singles[k].row)
	}

	for i := range e.rhs {
		e.rhs[i] = round(e.rhs[i], e.opts.EpsB)
	}
	e.justInverted = true
	klog.V(3).Infof("inverted basis: %d eta columns, %d nonzeros", e.eta.size(), e.eta.nonZeros())
}

// pivotColumn pivots the untransformed column col into row. It is valid
// only while the rows already pivoted have no entry in col.
func (e *Engine) pivotColumn(col, row int) {
	clear(e.pcol)
	for _, el := range e.m.Col(col) {
		e.pcol[el.Row] = el.Value
	}
	e.pcol[0] -= e.extrad
	e.eta.stage(row, e.pcol)
	e.rhsmincol(e.rhs[row]/e.pcol[row], row, e.rows+col)
	e.eta.commit()
}

// rhsmincol updates the basic solution for varin entering row at level
// theta, using the staged eta column.
func (e *Engine) rhsmincol(theta float64, row, varin int) {
	rowNr, value := e.eta.staged()
	for k, r := range rowNr {
		e.rhs[r] = round(e.rhs[r]-theta*value[k], e.opts.EpsB)
	}
	e.rhs[row] = theta
	varout := e.bas[row]
	e.bas[row] = varin
	e.basis[varout] = false
	e.basis[varin] = true
}
