package simplex

import "slices"

// constructSolution fills the solution vector from the optimal basis, in
// the user's orientation.
func (e *Engine) constructSolution() {
	sol := e.solution
	clear(sol)
	sol[0] = -e.rh0
	for v := e.rows + 1; v <= e.sum; v++ {
		sol[v] = e.lowbo[v]
	}
	for i := 1; i <= e.rows; i++ {
		if v := e.bas[i]; v > e.rows {
			sol[v] += e.rhs[i]
		}
	}
	for v := e.rows + 1; v <= e.sum; v++ {
		if !e.basis[v] && !e.lower[v] {
			sol[v] += e.upbo[v]
		}
	}
	for j := 1; j <= e.columns; j++ {
		f := sol[e.rows+j]
		if f == 0 {
			continue
		}
		for _, el := range e.m.Col(j) {
			sol[el.Row] += f * el.Value
		}
	}
	for i := 0; i <= e.rows; i++ {
		if sol[i] > -e.opts.EpsB && sol[i] < e.opts.EpsB {
			sol[i] = 0
		} else if e.m.ChangedSign(i) {
			sol[i] = -sol[i]
		}
	}
}

// Duals returns the dual value of every row (index 0 unused) for the
// current basis: the change of the objective per unit increase of the
// row's right hand side. Rows whose slack is basic have dual 0.
func (e *Engine) Duals() []float64 {
	duals := make([]float64, e.rows+1)
	duals[0] = 1
	e.eta.btran(duals, e.opts.EpsEl)
	duals[0] = 0
	for i := 1; i <= e.rows; i++ {
		switch {
		case e.basis[i]:
			duals[i] = 0
		case e.m.ChangedSign(0) == e.m.ChangedSign(i) && duals[i] != 0:
			duals[i] = -duals[i]
		}
	}
	return duals
}

// ReducedCosts returns the reduced cost of every nonbasic variable in the
// internal minimisation orientation, over the flat index space. Basic
// variables have reduced cost 0.
func (e *Engine) ReducedCosts() []float64 {
	d := make([]float64, e.sum+1)
	d[0] = 1
	e.eta.btran(d, e.opts.EpsEl)
	for j := 1; j <= e.columns; j++ {
		v := e.rows + j
		if e.basis[v] || e.upbo[v] <= 0 {
			continue
		}
		var f float64
		for _, el := range e.m.Col(j) {
			f += d[el.Row] * el.Value
		}
		d[v] = f
	}
	d[0] = 0
	for v := 1; v <= e.sum; v++ {
		if e.basis[v] {
			d[v] = 0
		}
		d[v] = round(d[v], e.opts.EpsD)
	}
	return d
}

// Objective returns the objective value of the last optimal solution.
func (e *Engine) Objective() float64 { return e.solution[0] }

// RowActivities returns a copy of the row activities (index 0 unused).
func (e *Engine) RowActivities() []float64 {
	act := slices.Clone(e.solution[:e.rows+1])
	act[0] = 0
	return act
}
