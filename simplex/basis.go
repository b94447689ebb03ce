package simplex

import (
	"slices"

	"github.com/pkg/errors"

	"q.log/lpsolve/model"
)

var (
	ErrBadBasis  = errors.New("simplex: invalid basis")
	ErrBadBounds = errors.New("simplex: invalid bounds")
)

// Basis is a snapshot of the basic/nonbasic partition over the flat index
// space. Bas[i] (1..rows) is the variable basic in row i; IsBasic and
// AtLower have one entry per variable (index 0 unused). A nonbasic variable
// sits at its lower bound when AtLower is set, otherwise at its upper bound.
type Basis struct {
	Bas     []int
	IsBasic []bool
	AtLower []bool
}

// SlackBasis returns the basis where every row's slack is basic and every
// variable is at its lower bound.
func SlackBasis(rows, columns int) Basis {
	b := Basis{
		Bas:     make([]int, rows+1),
		IsBasic: make([]bool, rows+columns+1),
		AtLower: make([]bool, rows+columns+1),
	}
	for i := 1; i <= rows; i++ {
		b.Bas[i] = i
		b.IsBasic[i] = true
	}
	for i := range b.AtLower {
		b.AtLower[i] = true
	}
	return b
}

func (b Basis) Clone() Basis {
	return Basis{
		Bas:     slices.Clone(b.Bas),
		IsBasic: slices.Clone(b.IsBasic),
		AtLower: slices.Clone(b.AtLower),
	}
}

// Validate checks that b is a basis for a model with the given number of
// rows and columns: exactly one distinct basic variable per row, and the
// basic flags agree with Bas.
func (b Basis) Validate(rows, columns int) error {
	sum := rows + columns
	if len(b.Bas) != rows+1 || len(b.IsBasic) != sum+1 || len(b.AtLower) != sum+1 {
		return errors.Wrapf(ErrBadBasis, "sizes %d/%d/%d for %d rows and %d columns",
			len(b.Bas), len(b.IsBasic), len(b.AtLower), rows, columns)
	}
	seen := make([]bool, sum+1)
	for i := 1; i <= rows; i++ {
		v := b.Bas[i]
		if v < 1 || v > sum {
			return errors.Wrapf(ErrBadBasis, "row %d: basic variable %d out of range", i, v)
		}
		if seen[v] {
			return errors.Wrapf(ErrBadBasis, "variable %d basic in more than one row", v)
		}
		if !b.IsBasic[v] {
			return errors.Wrapf(ErrBadBasis, "variable %d in row %d not flagged basic", v, i)
		}
		seen[v] = true
	}
	for v := 1; v <= sum; v++ {
		if b.IsBasic[v] && !seen[v] {
			return errors.Wrapf(ErrBadBasis, "variable %d flagged basic but not in any row", v)
		}
	}
	return nil
}

// Bounds are the column bounds of one LP over the flat index space. Row
// entries are ignored: a row's range always comes from the model.
type Bounds struct {
	Lower []float64
	Upper []float64
}

func ModelBounds(m *model.Model) Bounds {
	return Bounds{Lower: m.LowerBounds(), Upper: m.UpperBounds()}
}

func (b Bounds) Clone() Bounds {
	return Bounds{Lower: slices.Clone(b.Lower), Upper: slices.Clone(b.Upper)}
}

func (b Bounds) validate(sum int) error {
	if len(b.Lower) != sum+1 || len(b.Upper) != sum+1 {
		return errors.Wrapf(ErrBadBounds, "sizes %d/%d, want %d", len(b.Lower), len(b.Upper), sum+1)
	}
	for v := 1; v <= sum; v++ {
		if b.Lower[v] > b.Upper[v] {
			return errors.Wrapf(ErrBadBounds, "variable %d: lower %g > upper %g", v, b.Lower[v], b.Upper[v])
		}
	}
	return nil
}
