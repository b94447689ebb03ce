// Package milp solves mixed integer linear programs by depth-first (or
// best-first) branch and bound over LP relaxations solved with the simplex
// engine.
package milp

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"q.log/lpsolve/model"
	"q.log/lpsolve/simplex"
)

type solver struct {
	m    *model.Model
	opts Options
	sc   *simplex.SolverContext
	eng  *simplex.Engine
	rng  *rand.Rand
	q    queue
	seq  int

	maximize bool
	best     float64
	found    bool
	res      *Result
}

// Solve solves m. The model is not modified. The search stops early when
// ctx is cancelled.
func Solve(ctx context.Context, m *model.Model, opts Options) (*Result, error) {
	return SolveWithContext(simplex.NewSolverContext(ctx), m, opts)
}

// SolveWithContext solves m under sc, which lets another goroutine stop the
// search with sc.Abort.
func SolveWithContext(sc *simplex.SolverContext, m *model.Model, opts Options) (*Result, error) {
	if m == nil {
		return nil, errors.New("milp: nil model")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	eng, err := simplex.New(m, opts.Options, sc)
	if err != nil {
		return nil, err
	}
	if opts.StartBasis != nil {
		if err := eng.SetBasis(*opts.StartBasis); err != nil {
			return nil, errors.Wrap(err, "start basis")
		}
	}
	s := &solver{
		m:        m,
		opts:     opts,
		sc:       sc,
		eng:      eng,
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed+1)),
		q:        newQueue(opts.Order, m.IsMaximize()),
		maximize: m.IsMaximize(),
		res:      &Result{rows: m.Rows()},
	}
	s.best = opts.ObjBound
	switch {
	case s.maximize && math.IsInf(opts.ObjBound, 1):
		s.best = math.Inf(-1)
	case !s.maximize && math.IsInf(opts.ObjBound, -1):
		s.best = math.Inf(1)
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.res, nil
}

// worse reports whether objective a is no better than b.
func (s *solver) worse(a, b float64) bool {
	if s.maximize {
		return a <= b
	}
	return a >= b
}

func (s *solver) better(a, b float64) bool {
	if s.maximize {
		return a > b
	}
	return a < b
}

func (s *solver) run() error {
	bound := math.Inf(1)
	if s.maximize {
		bound = math.Inf(-1)
	}
	s.q.push(&node{
		bounds: simplex.ModelBounds(s.m),
		basis:  s.eng.Basis(),
		depth:  1,
		bound:  bound,
	})

	var (
		rootStatus = simplex.StatusRunning
		failed     bool
		broken     bool
	)
	for s.q.len() > 0 {
		if s.sc.Aborted() {
			broken = true
			break
		}
		n := s.q.pop()
		if n.depth > 1 && s.worse(n.bound, s.best) {
			s.res.Pruned++
			klog.V(2).Infof("node at depth %d pruned by bound %g", n.depth, n.bound)
			continue
		}
		s.res.Nodes++
		s.res.MaxDepth = max(s.res.MaxDepth, n.depth)

		if err := s.eng.SetBasis(n.basis); err != nil {
			return errors.Wrapf(err, "node at depth %d", n.depth)
		}
		st, err := s.eng.Solve(n.bounds)
		if err != nil {
			return errors.Wrapf(err, "node at depth %d", n.depth)
		}
		if n.depth == 1 {
			rootStatus = st
		}
		klog.V(2).Infof("node %d depth %d: %s after %d iterations", s.res.Nodes, n.depth, st, s.eng.Iterations())

		switch st {
		case simplex.StatusOptimal:
		case simplex.StatusBreak:
			broken = true
		case simplex.StatusFailure:
			failed = true
			continue
		default:
			continue
		}
		if broken {
			break
		}

		sol := s.eng.Solution()
		if s.worse(sol[0], s.best) {
			s.res.Pruned++
			klog.V(2).Infof("node depth %d: relaxation %g cannot improve on %g", n.depth, sol[0], s.best)
			continue
		}
		v := s.branchColumn(sol, n.bounds)
		if v == 0 {
			s.improve(sol)
			continue
		}
		kids := s.children(n, s.eng.Basis(), v, sol[v], sol[0])
		klog.V(2).Infof("node depth %d: branching on %s = %g", n.depth, s.m.ColName(v-s.m.Rows()), sol[v])
		if s.opts.Order == DepthFirst {
			slices.Reverse(kids)
		}
		for _, c := range kids {
			s.q.push(c)
		}
	}

	r := s.res
	r.Iterations = s.eng.TotalIterations()
	r.Reinversions = s.sc.Reinversions
	switch {
	case s.found && broken:
		r.Status = simplex.StatusSuboptimal
	case s.found:
		r.Status = simplex.StatusOptimal
	case broken:
		r.Status = simplex.StatusBreak
	case rootStatus == simplex.StatusUnbounded, rootStatus == simplex.StatusFailure:
		r.Status = rootStatus
	case failed:
		r.Status = simplex.StatusFailure
	default:
		r.Status = simplex.StatusInfeasible
	}
	klog.V(1).Infof("solve finished: %s, objective %g, %d nodes, %d iterations", r.Status, r.Objective, r.Nodes, r.Iterations)
	return nil
}

// improve records sol as the incumbent if it beats the current one.
func (s *solver) improve(sol []float64) {
	if s.found && !s.better(sol[0], s.best) {
		return
	}
	s.found = true
	s.best = sol[0]
	r := s.res
	r.Objective = sol[0]
	r.Solution = slices.Clone(sol)
	r.Duals = s.eng.Duals()
	b := s.eng.Basis()
	r.Basis = &b
	klog.V(1).Infof("improved solution %g at node %d", sol[0], r.Nodes)

	if s.opts.BreakAtFirst && s.better(s.best, s.opts.BreakValue) {
		klog.V(1).Infof("solution %g beats break value %g, stopping", s.best, s.opts.BreakValue)
		s.sc.Abort()
	}
}
