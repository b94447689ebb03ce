package milp

import (
	"math"

	"k8s.io/klog/v2"

	"q.log/lpsolve/simplex"
)

func isInt(v, eps float64) bool {
	f := v - math.Floor(v)
	return f < eps || f > 1-eps
}

// branchColumn returns the flat index of the integer column to branch on,
// or 0 when sol is integer feasible. Fixed columns are never branched on.
func (s *solver) branchColumn(sol []float64, b simplex.Bounds) int {
	var candidates []int
	for v := s.m.Rows() + 1; v <= s.m.Sum(); v++ {
		if !s.m.MustBeInt(v) || isInt(sol[v], s.opts.Epsilon) {
			continue
		}
		if b.Lower[v] == b.Upper[v] {
			klog.Warningf("fixed integer column %s has non-integer value %g", s.m.ColName(v-s.m.Rows()), sol[v])
			continue
		}
		if s.opts.Rule == FirstFractional {
			return v
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return 0
	}
	return candidates[s.rng.IntN(len(candidates))]
}

// children splits node n on column v with relaxation value x. The child
// to explore first comes first; a child whose bounds cross is not created.
func (s *solver) children(n *node, basis simplex.Basis, v int, x, bound float64) []*node {
	floor := math.Ceil(x) - 1
	ceil := floor + 1

	var down, up *node
	if floor >= n.bounds.Lower[v] {
		down = s.child(n, basis, bound)
		down.bounds.Upper[v] = floor
	}
	if ceil <= n.bounds.Upper[v] {
		up = s.child(n, basis, bound)
		up.bounds.Lower[v] = ceil
	}

	first, second := down, up
	if !s.opts.FloorFirst {
		first, second = up, down
	}
	var out []*node
	for _, c := range []*node{first, second} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (s *solver) child(n *node, basis simplex.Basis, bound float64) *node {
	s.seq++
	return &node{
		bounds: n.bounds.Clone(),
		basis:  basis.Clone(),
		depth:  n.depth + 1,
		bound:  bound,
		seq:    s.seq,
	}
}
