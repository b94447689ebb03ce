package milp

import (
	"container/heap"

	"q.log/lpsolve/simplex"
)

// node is an open subproblem: the column bounds of the branch and the basis
// its parent finished with.
type node struct {
	bounds simplex.Bounds
	basis  simplex.Basis
	depth  int
	// bound is the objective of the parent relaxation, in the user's
	// orientation; no integer solution below this node does better.
	bound float64
	seq   int
}

type queue interface {
	push(n *node)
	pop() *node
	len() int
}

func newQueue(order SearchOrder, maximize bool) queue {
	if order == BestFirst {
		return &bestFirst{maximize: maximize}
	}
	return &stack{}
}

type stack []*node

func (s *stack) push(n *node) { *s = append(*s, n) }

func (s *stack) pop() *node {
	old := *s
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*s = old[:len(old)-1]
	return n
}

func (s *stack) len() int { return len(*s) }

// bestFirst orders nodes by parent bound, then depth, then creation order.
type bestFirst struct {
	nodes    []*node
	maximize bool
}

func (b *bestFirst) push(n *node) { heap.Push(b, n) }
func (b *bestFirst) pop() *node   { return heap.Pop(b).(*node) }
func (b *bestFirst) len() int     { return len(b.nodes) }

func (b *bestFirst) Len() int      { return len(b.nodes) }
func (b *bestFirst) Swap(i, j int) { b.nodes[i], b.nodes[j] = b.nodes[j], b.nodes[i] }
func (b *bestFirst) Push(x any)    { b.nodes = append(b.nodes, x.(*node)) }

func (b *bestFirst) Pop() any {
	old := b.nodes
	n := old[len(old)-1]
	old[len(old)-1] = nil
	b.nodes = old[:len(old)-1]
	return n
}

func (b *bestFirst) Less(i, j int) bool {
	x, y := b.nodes[i], b.nodes[j]
	if x.bound != y.bound {
		if b.maximize {
			return x.bound > y.bound
		}
		return x.bound < y.bound
	}
	if x.depth != y.depth {
		return x.depth > y.depth
	}
	return x.seq < y.seq
}
