package simplex

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"q.log/lpsolve/model"
)

// Engine solves the LP relaxation of a model with the revised simplex
// method, keeping the basis inverse as an eta file. One engine is reused
// for every node of a branch-and-bound search; the basis of the previous
// solve is the starting point of the next one unless replaced with SetBasis.
type Engine struct {
	m    *model.Model
	opts Options
	sc   *SolverContext
	rng  *rand.Rand

	rows, columns, sum int
	infinity           float64

	rh    []float64
	rhs   []float64
	upbo  []float64
	lowbo []float64
	rh0   float64

	bas   []int
	basis []bool
	lower []bool

	eta          etaFile
	numInv       int
	justInverted bool
	extrad       float64

	pcol []float64
	drow []float64
	prow []float64

	status     Status
	iter       int
	totalIter  int
	inversions int
	solution   []float64
}

func New(m *model.Model, opts Options, sc *SolverContext) (*Engine, error) {
	if m == nil {
		return nil, errors.New("simplex: nil model")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sc == nil {
		sc = NewSolverContext(context.Background())
	}
	rows, columns := m.Rows(), m.Columns()
	sum := rows + columns
	e := &Engine{
		m:        m,
		opts:     opts,
		sc:       sc,
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5851f42d4c957f2d)),
		rows:     rows,
		columns:  columns,
		sum:      sum,
		infinity: m.Infinity(),
		rh:       make([]float64, rows+1),
		rhs:      make([]float64, rows+1),
		upbo:     make([]float64, sum+1),
		lowbo:    make([]float64, sum+1),
		eta:      newEtaFile(rows),
		pcol:     make([]float64, rows+1),
		drow:     make([]float64, sum+1),
		prow:     make([]float64, sum+1),
		solution: make([]float64, sum+1),
		status:   StatusRunning,
	}
	e.ResetBasis()
	return e, nil
}

func (e *Engine) Status() Status { return e.status }

// Iterations returns the iterations of the last Solve.
func (e *Engine) Iterations() int { return e.iter }

// TotalIterations returns the iterations of every Solve of the engine.
func (e *Engine) TotalIterations() int { return e.totalIter }

// ResetBasis installs the slack basis.
func (e *Engine) ResetBasis() {
	b := SlackBasis(e.rows, e.columns)
	e.bas, e.basis, e.lower = b.Bas, b.IsBasic, b.AtLower
}

// Basis returns a copy of the current basis.
func (e *Engine) Basis() Basis {
	return Basis{Bas: e.bas, IsBasic: e.basis, AtLower: e.lower}.Clone()
}

// SetBasis installs a copy of b as the starting basis of the next Solve.
func (e *Engine) SetBasis(b Basis) error {
	if err := b.Validate(e.rows, e.columns); err != nil {
		return err
	}
	b = b.Clone()
	e.bas, e.basis, e.lower = b.Bas, b.IsBasic, b.AtLower
	return nil
}

// Solve solves the LP with the column bounds b, starting from the current
// basis.
func (e *Engine) Solve(b Bounds) (Status, error) {
	if err := b.validate(e.sum); err != nil {
		return StatusFailure, err
	}
	e.iter = 0
	copy(e.lowbo, b.Lower)
	copy(e.upbo, b.Upper)
	if e.opts.AntiDegen {
		start := e.Basis()
		e.perturb()
		e.prepare()
		e.solveLP()
		if e.status == StatusOptimal {
			klog.V(3).Infof("perturbed LP optimal after %d iterations, resolving", e.iter)
			copy(e.lowbo, b.Lower)
			copy(e.upbo, b.Upper)
			e.prepare()
			e.solveLP()
		}
		if e.status == StatusFailure {
			// the perturbed optimum can sit just outside the true bounds
			klog.V(3).Infof("perturbed solve failed, resolving unperturbed from the starting basis")
			e.bas, e.basis, e.lower = start.Bas, start.IsBasic, start.AtLower
			copy(e.lowbo, b.Lower)
			copy(e.upbo, b.Upper)
			e.prepare()
			e.solveLP()
		}
	} else {
		e.prepare()
		e.solveLP()
	}
	e.totalIter += e.iter
	if e.status == StatusOptimal {
		e.constructSolution()
	}
	if e.status == StatusFailure {
		e.sc.Failures++
	}
	return e.status, nil
}

// perturb randomly widens the column bounds so that no vertex is degenerate.
func (e *Engine) perturb() {
	for v := e.rows + 1; v <= e.sum; v++ {
		e.lowbo[v] -= e.rng.Float64() * e.opts.EpsB
		if e.upbo[v] < e.infinity {
			e.upbo[v] += e.rng.Float64() * e.opts.EpsB
		}
	}
}

// prepare loads the right hand sides, shifts finite lower bounds to zero
// and inverts the current basis.
func (e *Engine) prepare() {
	rh := e.m.RHSVector()
	e.rh0 = rh[0]
	copy(e.rh, rh)
	for i := 1; i <= e.rows; i++ {
		e.lowbo[i] = 0
		e.upbo[i] = e.m.RowUpper(i)
	}
	for j := 1; j <= e.columns; j++ {
		v := e.rows + j
		low := e.lowbo[v]
		if low == 0 {
			continue
		}
		if e.upbo[v] < e.infinity {
			e.upbo[v] -= low
		}
		for _, el := range e.m.Col(j) {
			e.rh[el.Row] -= low * el.Value
		}
	}
	e.extrad = 0
	e.invert()
}

// primalFeasible uses the same test as rowdual, so the dual phase and the
// switch back to it never disagree.
func (e *Engine) primalFeasible() bool { return e.rowdual() == 0 }

// dualShift returns the most negative reduced cost over all columns, or 0.
// Subtracting it from the structural costs makes the basis dual feasible.
func (e *Engine) dualShift() float64 {
	clear(e.drow)
	e.drow[0] = 1
	e.eta.btran(e.drow, e.opts.EpsEl)
	var shift float64
	for j := 1; j <= e.columns; j++ {
		var d float64
		for _, el := range e.m.Col(j) {
			d += e.drow[el.Row] * el.Value
		}
		shift = min(shift, d)
	}
	return shift
}

func (e *Engine) solveLP() {
	e.status = StatusRunning
	primal := e.primalFeasible()
	if primal {
		e.extrad = 0
	} else {
		e.extrad = e.dualShift()
	}
	klog.V(3).Infof("start LP: primal=%t extrad=%g", primal, e.extrad)

	var (
		minit  bool
		rowNr  int
		colNr  int
		theta  float64
		doIter bool
	)
	for e.status == StatusRunning {
		if e.sc.Aborted() {
			e.status = StatusBreak
			break
		}
		if e.opts.MaxIterations > 0 && e.iter >= e.opts.MaxIterations {
			klog.Warningf("iteration limit %d reached", e.opts.MaxIterations)
			e.status = StatusFailure
			break
		}
		doIter = false
		doInvert := false

		if primal {
			colNr = e.colprim(minit)
			if colNr == 0 {
				e.status = StatusOptimal
				break
			}
			e.setpivcol(e.lower[colNr], colNr, e.pcol)
			rowNr, theta = e.rowprim()
			switch {
			case rowNr == 0 && e.upbo[colNr] >= e.infinity:
				e.status = StatusUnbounded
			case theta < -e.opts.EpsB:
				doInvert = e.unstable("negative step %g in row %d", theta, rowNr)
			default:
				if theta < 0 {
					theta = 0
				}
				if rowNr > 0 {
					e.eta.stage(rowNr, e.pcol)
				}
				doIter = true
			}
		} else {
			if !minit {
				rowNr = e.rowdual()
			}
			if rowNr == 0 {
				klog.V(3).Infof("basis primal feasible after %d iterations, switching to primal", e.iter)
				primal = true
				e.extrad = 0
				doInvert = true
			} else if colNr = e.coldual(rowNr, minit); colNr == 0 {
				e.status = StatusInfeasible
			} else {
				e.setpivcol(e.lower[colNr], colNr, e.pcol)
				if math.Abs(e.pcol[rowNr]) < e.opts.PivotReject {
					doInvert = e.unstable("zero pivot in row %d column %d", rowNr, colNr)
				} else {
					e.eta.stage(rowNr, e.pcol)
					out := e.bas[rowNr]
					if f := e.rhs[rowNr] - e.upbo[out]; f > 0 {
						theta = f / e.pcol[rowNr]
						// same test as iteration: a basis change, not a bound flip
						if theta <= e.upbo[colNr]+e.opts.EpsB {
							e.lower[out] = !e.lower[out]
						}
					} else {
						theta = e.rhs[rowNr] / e.pcol[rowNr]
					}
					doIter = true
				}
			}
		}

		if doIter {
			minit = e.iteration(rowNr, colNr, theta, primal)
		}
		if e.numInv >= e.opts.MaxPivots {
			doInvert = true
		}
		if doInvert && e.status == StatusRunning {
			e.invert()
			minit = false
			if primal && !e.primalFeasible() {
				klog.V(3).Infof("basis infeasible after inversion, back to dual")
				primal = false
				e.extrad = e.dualShift()
			}
		}
	}
	klog.V(3).Infof("LP done: %s after %d iterations, %d inversions", e.status, e.iter, e.inversions)
}

// unstable handles a numerically impossible pivot. A fresh inverse gets one
// retry; trouble right after an inversion fails the LP.
func (e *Engine) unstable(format string, args ...any) bool {
	if e.justInverted {
		klog.Warningf("numerical failure: "+format, args...)
		e.status = StatusFailure
		return false
	}
	klog.V(3).Infof("numerical trouble, reinverting: "+format, args...)
	e.sc.Reinversions++
	return true
}

// setpivcol loads column varin into pcol, negated when varin sits at its
// upper bound, and transforms it with the current inverse.
func (e *Engine) setpivcol(atLower bool, varin int, pcol []float64) {
	sign := 1.0
	if !atLower {
		sign = -1
	}
	clear(pcol)
	if varin > e.rows {
		for _, el := range e.m.Col(varin - e.rows) {
			pcol[el.Row] = sign * el.Value
		}
		pcol[0] -= sign * e.extrad
	} else {
		pcol[varin] = sign
	}
	e.eta.ftran(pcol, e.opts.EpsEl)
}

// iteration moves column varin by theta. The move is a bound flip when the
// column reaches its own upper bound first (or rowNr is 0); otherwise varin
// replaces the basic variable of rowNr and the staged eta column is
// committed. It reports whether the move was a bound flip.
func (e *Engine) iteration(rowNr, varin int, theta float64, primal bool) bool {
	e.iter++
	up := e.upbo[varin]
	minit := rowNr == 0 || theta > up+e.opts.EpsB
	if minit {
		theta = up
		e.lower[varin] = !e.lower[varin]
	}
	for i, p := range e.pcol {
		if p != 0 {
			e.rhs[i] = round(e.rhs[i]-theta*p, e.opts.EpsB)
		}
	}
	if minit {
		if klog.V(4).Enabled() {
			klog.Infof("iter %d: bound flip of %d", e.iter, varin)
		}
		return true
	}

	pivot := e.pcol[rowNr]
	e.rhs[rowNr] = theta
	varout := e.bas[rowNr]
	e.bas[rowNr] = varin
	e.basis[varout] = false
	e.basis[varin] = true
	if primal && pivot < 0 {
		e.lower[varout] = false
	}
	if !e.lower[varin] && up < e.infinity {
		e.lower[varin] = true
		e.rhs[rowNr] = up - e.rhs[rowNr]
		e.eta.negateStaged()
	}
	e.eta.commit()
	e.numInv++
	e.justInverted = false
	if klog.V(4).Enabled() {
		klog.Infof("iter %d: %d enters, %d leaves row %d, theta %g, obj %g",
			e.iter, varin, varout, rowNr, theta, e.rhs[0])
	}
	return false
}

// Solution returns the last optimal solution: index 0 is the objective,
// 1..rows the row activities and rows+1..sum the column values. The slice
// is owned by the engine.
func (e *Engine) Solution() []float64 { return e.solution }

// Values returns a copy of the column values of the last optimal solution.
func (e *Engine) Values() []float64 {
	return slices.Clone(e.solution[e.rows+1:])
}
