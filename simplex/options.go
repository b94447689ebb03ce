package simplex

import "github.com/pkg/errors"

var ErrBadOptions = errors.New("simplex: invalid options")

// Options holds the numerical tolerances and limits of the engine. The
// defaults are the usual revised simplex tolerances.
type Options struct {
	// EpsB rounds right hand side values to zero and decides feasibility.
	EpsB float64
	// EpsEl rounds transformed vector elements to zero.
	EpsEl float64
	// EpsD rounds reduced costs to zero.
	EpsD float64
	// PivotReject is the smallest pivot accepted on the first ratio test pass.
	PivotReject float64
	// MaxPivots is the number of basis changes between re-inversions.
	MaxPivots int
	// MaxIterations ends a single LP with StatusFailure. Zero means no limit.
	MaxIterations int
	// AntiDegen randomly perturbs the column bounds, solves, and re-solves
	// the unperturbed problem from the basis found.
	AntiDegen bool
	Seed      uint64
}

func DefaultOptions() Options {
	return Options{
		EpsB:        5.01e-7,
		EpsEl:       1e-8,
		EpsD:        1e-6,
		PivotReject: 1e-11,
		MaxPivots:   50,
	}
}

func (o Options) Validate() error {
	switch {
	case o.EpsB <= 0, o.EpsEl <= 0, o.EpsD <= 0:
		return errors.Wrapf(ErrBadOptions, "tolerances must be positive (epsb=%g epsel=%g epsd=%g)", o.EpsB, o.EpsEl, o.EpsD)
	case o.PivotReject < 0:
		return errors.Wrapf(ErrBadOptions, "pivot reject %g", o.PivotReject)
	case o.MaxPivots <= 0:
		return errors.Wrapf(ErrBadOptions, "max pivots %d", o.MaxPivots)
	case o.MaxIterations < 0:
		return errors.Wrapf(ErrBadOptions, "max iterations %d", o.MaxIterations)
	}
	return nil
}
