package instance

import (
	"math"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"q.log/lpsolve/model"
)

// Reader reads an MPS file into a model.
type Reader struct {
	filename string
	// Fixed selects the fixed column MPS layout instead of free MPS.
	Fixed bool
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// ReadModel parses the file with glpk and builds the equivalent model.
// Free rows other than the objective are dropped. Columns without a finite
// lower bound are rejected.
func (r *Reader) ReadModel() (*model.Model, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()

	format := glpk.MPS_FILE
	if r.Fixed {
		format = glpk.MPS_DECK
	}
	if err := lp.ReadMPS(format, nil, r.filename); err != nil {
		return nil, errors.Wrapf(err, "read mps %s", r.filename)
	}

	// glpk row index -> model row, 0 for dropped free rows
	rowMap := make([]int, lp.NumRows()+1)
	rows := 0
	for i := 1; i <= lp.NumRows(); i++ {
		if lp.RowLB(i) == -math.MaxFloat64 && lp.RowUB(i) == math.MaxFloat64 {
			klog.V(1).Infof("dropping free row %s", lp.RowName(i))
			continue
		}
		rows++
		rowMap[i] = rows
	}

	m, err := model.NewModel(rows, lp.NumCols())
	if err != nil {
		return nil, err
	}
	if lp.ObjDir() == glpk.MAX {
		m.SetMaximize()
	}
	m.SetObjectiveConstant(lp.ObjCoef(0))

	for c := 1; c <= lp.NumCols(); c++ {
		if err := m.SetObjective(c, lp.ObjCoef(c)); err != nil {
			return nil, err
		}
		if name := lp.ColName(c); name != "" {
			if err := m.SetColName(c, name); err != nil {
				return nil, err
			}
		}
		lower, upper := lp.ColLB(c), lp.ColUB(c)
		if lower == -math.MaxFloat64 {
			return nil, errors.Wrapf(model.ErrInfiniteLower, "column %s", lp.ColName(c))
		}
		if upper == math.MaxFloat64 {
			upper = math.Inf(1)
		}
		if err := m.SetBounds(c, lower, upper); err != nil {
			return nil, errors.Wrapf(err, "column %s", lp.ColName(c))
		}
		if kind := lp.ColKind(c); kind == glpk.IV || kind == glpk.BV {
			if err := m.SetInt(c, true); err != nil {
				return nil, err
			}
		}
	}

	for i := 1; i <= lp.NumRows(); i++ {
		row := rowMap[i]
		if row == 0 {
			continue
		}
		idxs, vals := lp.MatRow(i)
		for k, c := range idxs {
			if c == 0 {
				continue
			}
			if err := m.SetMat(row, int(c), vals[k]); err != nil {
				return nil, err
			}
		}
		lo, hi := lp.RowLB(i), lp.RowUB(i)
		if lo == -math.MaxFloat64 {
			lo = math.Inf(-1)
		}
		if hi == math.MaxFloat64 {
			hi = math.Inf(1)
		}
		if err := m.SetRange(row, lo, hi); err != nil {
			return nil, errors.Wrapf(err, "row %s", lp.RowName(i))
		}
		if name := lp.RowName(i); name != "" {
			if err := m.SetRowName(row, name); err != nil {
				return nil, err
			}
		}
	}
	m.Validate()
	klog.V(1).Infof("read %s: %d rows, %d columns, %d nonzeros", r.filename, m.Rows(), m.Columns(), m.NonZeros())
	return m, nil
}
