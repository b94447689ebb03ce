package simplex

import "math"

// colprim picks the entering column for a primal iteration: the nonbasic
// variable with the most negative reduced cost in its direction of travel.
// With minit set the reduced costs of the previous iteration are reused.
// It returns 0 when the basis is optimal.
func (e *Engine) colprim(minit bool) int {
	if !minit {
		clear(e.drow)
		e.drow[0] = 1
		e.eta.btran(e.drow, e.opts.EpsEl)
		for j := 1; j <= e.columns; j++ {
			v := e.rows + j
			if e.basis[v] || e.upbo[v] <= 0 {
				continue
			}
			var f float64
			for _, el := range e.m.Col(j) {
				f += e.drow[el.Row] * el.Value
			}
			e.drow[v] = f
		}
		for v := 1; v <= e.sum; v++ {
			e.drow[v] = round(e.drow[v], e.opts.EpsD)
		}
	}
	best, colNr := -e.opts.EpsD, 0
	for v := 1; v <= e.sum; v++ {
		if e.basis[v] || e.upbo[v] <= 0 {
			continue
		}
		f := e.drow[v]
		if !e.lower[v] {
			f = -f
		}
		if f < best {
			best, colNr = f, v
		}
	}
	return colNr
}

// rowprim runs the ratio test on pcol and returns the leaving row and the
// step length. Pivots smaller than PivotReject are ignored unless no other
// row qualifies. Row 0 means no basic variable limits the step.
func (e *Engine) rowprim() (int, float64) {
	rowNr, theta := 0, e.infinity
	for pass := 0; pass < 2 && rowNr == 0; pass++ {
		for i := 1; i <= e.rows; i++ {
			f := e.pcol[i]
			if f == 0 || (pass == 0 && math.Abs(f) < e.opts.PivotReject) {
				continue
			}
			quot := 2 * e.infinity
			if f > 0 {
				quot = e.rhs[i] / f
			} else if up := e.upbo[e.bas[i]]; up < e.infinity {
				quot = (e.rhs[i] - up) / f
			}
			quot = round(quot, e.opts.EpsEl)
			if quot < theta {
				rowNr, theta = i, quot
			}
		}
	}
	return rowNr, theta
}

// rowdual picks the leaving row for a dual iteration: an equality row with
// a nonzero basic value if there is one, else the row whose basic variable
// violates its bounds the most. It returns 0 when the basis is primal
// feasible.
func (e *Engine) rowdual() int {
	rowNr, worst := 0, -e.opts.EpsB
	for i := 1; i <= e.rows; i++ {
		up := e.upbo[e.bas[i]]
		if up == 0 && e.rhs[i] != 0 {
			return i
		}
		g := min(e.rhs[i], up-e.rhs[i])
		if g < worst {
			rowNr, worst = i, g
		}
	}
	return rowNr
}

// coldual picks the entering column for a dual iteration on rowNr: among
// the nonbasic variables that can move the basic variable of rowNr towards
// feasibility, the one with the smallest reduced cost ratio, ties going to
// the larger pivot. It returns 0 when none exists, which proves the LP
// infeasible.
func (e *Engine) coldual(rowNr int, minit bool) int {
	if !minit {
		clear(e.prow[:e.rows+1])
		clear(e.drow[:e.rows+1])
		e.drow[0] = 1
		e.prow[rowNr] = 1
		e.eta.btran(e.prow, e.opts.EpsEl)
		e.eta.btran(e.drow, e.opts.EpsD)
		for j := 1; j <= e.columns; j++ {
			v := e.rows + j
			if e.basis[v] {
				continue
			}
			d := -e.extrad * e.drow[0]
			var f float64
			for _, el := range e.m.Col(j) {
				d += e.drow[el.Row] * el.Value
				f += e.prow[el.Row] * el.Value
			}
			e.prow[v] = round(f, e.opts.EpsEl)
			e.drow[v] = round(d, e.opts.EpsD)
		}
	}

	g := 1.0
	if e.rhs[rowNr] > e.upbo[e.bas[rowNr]] {
		g = -1
	}
	colNr, pivot, theta := 0, 0.0, e.infinity
	for v := 1; v <= e.sum; v++ {
		if e.basis[v] || e.upbo[v] <= 0 {
			continue
		}
		d := e.prow[v] * g
		if !e.lower[v] {
			d = -d
		}
		if d >= 0 {
			continue
		}
		quot := -e.drow[v] / d
		if !e.lower[v] {
			quot = e.drow[v] / d
		}
		if quot < theta || (quot == theta && math.Abs(d) > math.Abs(pivot)) {
			colNr, pivot, theta = v, d, quot
		}
	}
	return colNr
}
