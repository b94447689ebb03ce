package milp

import (
	"math"

	"github.com/pkg/errors"

	"q.log/lpsolve/simplex"
)

// BranchRule selects the non-integer column a node branches on.
type BranchRule int

const (
	// FirstFractional branches on the lowest-numbered non-integer column.
	FirstFractional BranchRule = iota
	// RandomFractional branches on a uniformly chosen non-integer column.
	RandomFractional
)

func (r BranchRule) String() string {
	if r == RandomFractional {
		return "random"
	}
	return "first"
}

// SearchOrder selects which open node is solved next.
type SearchOrder int

const (
	DepthFirst SearchOrder = iota
	// BestFirst solves the open node whose parent relaxation is best.
	BestFirst
)

func (o SearchOrder) String() string {
	if o == BestFirst {
		return "best"
	}
	return "depth"
}

type Options struct {
	simplex.Options

	// Epsilon is the integrality tolerance.
	Epsilon    float64
	Rule       BranchRule
	FloorFirst bool
	Order      SearchOrder

	// BreakAtFirst stops the search at the first integer solution better
	// than BreakValue.
	BreakAtFirst bool
	BreakValue   float64
	// ObjBound is a known bound on the objective; nodes that cannot beat it
	// are pruned. Either infinity means none.
	ObjBound float64

	// StartBasis is the basis the root LP starts from. Nil means the slack
	// basis.
	StartBasis *simplex.Basis
}

func DefaultOptions() Options {
	return Options{
		Options:    simplex.DefaultOptions(),
		Epsilon:    1e-3,
		FloorFirst: true,
		ObjBound:   math.Inf(1),
	}
}

func (o Options) Validate() error {
	if err := o.Options.Validate(); err != nil {
		return err
	}
	if o.Epsilon <= 0 || o.Epsilon >= 0.5 {
		return errors.Wrapf(simplex.ErrBadOptions, "integrality tolerance %g", o.Epsilon)
	}
	if o.Rule != FirstFractional && o.Rule != RandomFractional {
		return errors.Wrapf(simplex.ErrBadOptions, "branch rule %d", int(o.Rule))
	}
	if o.Order != DepthFirst && o.Order != BestFirst {
		return errors.Wrapf(simplex.ErrBadOptions, "search order %d", int(o.Order))
	}
	return nil
}
