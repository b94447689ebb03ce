package simplex

// etaFile is the basis inverse in product form. Column k (1-based) holds
// value[colEnd[k-1]:colEnd[k]]; its last entry is the pivot. A column is
// first staged at the tail of the file and becomes part of the inverse
// when committed.
type etaFile struct {
	value  []float64
	rowNr  []int
	colEnd []int
}

func newEtaFile(rows int) etaFile {
	return etaFile{
		value:  make([]float64, 0, 4*(rows+1)),
		rowNr:  make([]int, 0, 4*(rows+1)),
		colEnd: []int{0},
	}
}

func (f *etaFile) size() int { return len(f.colEnd) - 1 }

// nonZeros is the number of stored entries of the committed columns.
func (f *etaFile) nonZeros() int { return f.colEnd[len(f.colEnd)-1] }

func (f *etaFile) reset() {
	f.value = f.value[:0]
	f.rowNr = f.rowNr[:0]
	f.colEnd = f.colEnd[:1]
}

// stage stores the nonzeros of pcol as the pending column with the entry
// of row last. A previously staged column is discarded.
func (f *etaFile) stage(row int, pcol []float64) {
	end := f.nonZeros()
	f.value = f.value[:end]
	f.rowNr = f.rowNr[:end]
	for i, v := range pcol {
		if v != 0 && i != row {
			f.value = append(f.value, v)
			f.rowNr = append(f.rowNr, i)
		}
	}
	f.value = append(f.value, pcol[row])
	f.rowNr = append(f.rowNr, row)
}

func (f *etaFile) staged() (rows []int, values []float64) {
	end := f.nonZeros()
	return f.rowNr[end:], f.value[end:]
}

func (f *etaFile) negateStaged() {
	for i := f.nonZeros(); i < len(f.value); i++ {
		f.value[i] = -f.value[i]
	}
}

// commit turns the staged column into an elementary transformation: the
// pivot becomes its reciprocal and the other entries are divided by the
// negated pivot.
func (f *etaFile) commit() {
	start, last := f.nonZeros(), len(f.value)-1
	theta := 1 / f.value[last]
	f.value[last] = theta
	for i := start; i < last; i++ {
		f.value[i] *= -theta
	}
	f.colEnd = append(f.colEnd, len(f.value))
}

// ftran applies the inverse to column vector pcol in place.
func (f *etaFile) ftran(pcol []float64, eps float64) {
	for k := 1; k < len(f.colEnd); k++ {
		last := f.colEnd[k] - 1
		r := f.rowNr[last]
		theta := pcol[r]
		if theta == 0 {
			continue
		}
		for j := f.colEnd[k-1]; j < last; j++ {
			pcol[f.rowNr[j]] += theta * f.value[j]
		}
		pcol[r] *= f.value[last]
	}
	for i := range pcol {
		pcol[i] = round(pcol[i], eps)
	}
}

// btran applies the inverse to row vector v in place. Only v[0:rows+1] is
// touched.
func (f *etaFile) btran(v []float64, eps float64) {
	for k := len(f.colEnd) - 1; k >= 1; k-- {
		var sum float64
		for j := f.colEnd[k-1]; j < f.colEnd[k]; j++ {
			sum += v[f.rowNr[j]] * f.value[j]
		}
		v[f.rowNr[f.colEnd[k]-1]] = round(sum, eps)
	}
}

func round(v, eps float64) float64 {
	if v < eps && v > -eps {
		return 0
	}
	return v
}
