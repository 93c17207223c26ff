package rlnc

import "github.com/shardvault/pcc/pkg/field"

// Decoder performs online Gaussian elimination over a stream of
// (coefficient vector, payload) pairs for a single chunkset, tracking
// the rank of the accumulated coefficient vectors. It recovers the
// original source symbols once its rank reaches the number of unknowns
// (CHUNKS_PER_CHUNKSET).
//
// Rows are indexed by pivot column rather than insertion order: each
// stored row has a leading 1 at its own pivot column. A newly
// submitted vector is reduced column by column against the pivot rows
// already present until it either reaches a nonzero column that has no
// pivot yet (it is independent and is stored there) or is reduced to
// zero (it is redundant), which is the standard
// technique used by RLNC decoders to detect linear dependence
// incrementally rather than re-running elimination from scratch on
// every insertion.
type Decoder struct {
	numUnknowns int
	symbolLen   int

	pivotCoeffs  []field.Elem // pivotCoeffs[c] is the coefficient row pivoted at column c, or nil
	pivotPayload [][]uint64   // corresponding payload row

	rank int
}

// NewDecoder creates a Decoder for a chunkset with the given number of
// unknowns (source chunks) and symbols per payload.
func NewDecoder(numUnknowns, symbolLen int) *Decoder {
	return &Decoder{
		numUnknowns:  numUnknowns,
		symbolLen:    symbolLen,
		pivotCoeffs:  make([]field.Elem, numUnknowns*numUnknowns),
		pivotPayload: make([][]uint64, numUnknowns),
	}
}

func (d *Decoder) row(c int) []field.Elem {
	return d.pivotCoeffs[c*d.numUnknowns : (c+1)*d.numUnknowns]
}

func (d *Decoder) hasPivot(c int) bool {
	return d.pivotPayload[c] != nil
}

// Rank returns the number of linearly independent vectors absorbed so
// far.
func (d *Decoder) Rank() int {
	return d.rank
}

// Ready reports whether the decoder has absorbed enough independent
// vectors to recover the original symbols.
func (d *Decoder) Ready() bool {
	return d.rank >= d.numUnknowns
}

// Add submits one (coefficient vector, payload) pair. It returns true
// if the vector was linearly independent of everything seen so far
// (and therefore increased the rank), or false if it was redundant
// (linearly dependent, and thus dropped without affecting decoder
// state).
func (d *Decoder) Add(coeffs []field.Elem, payload []uint64) bool {
	coeffs = append([]field.Elem(nil), coeffs...)
	payload = append([]uint64(nil), payload...)

	for c := 0; c < d.numUnknowns; c++ {
		if coeffs[c].IsZero() {
			continue
		}
		if !d.hasPivot(c) {
			// Normalize so the pivot entry is 1, then store.
			inv, ok := field.Inverse(coeffs[c])
			if !ok {
				continue
			}
			scaleRow(coeffs, inv)
			scalePayload(payload, inv)
			copy(d.row(c), coeffs)
			d.pivotPayload[c] = payload
			d.rank++
			return true
		}

		// Eliminate using the existing pivot row at column c.
		factor := coeffs[c]
		subtractScaled(coeffs, d.row(c), factor)
		subtractScaledPayload(payload, d.pivotPayload[c], factor)
	}

	// Every column was eliminated to zero: this vector was in the
	// span of what we already have.
	return false
}

// Recover returns the original unknowns once Ready reports true. It
// fully back-substitutes the stored rows so that pivotPayload[c] holds
// exactly the c-th source symbol vector.
func (d *Decoder) Recover() ([][]uint64, bool) {
	if !d.Ready() {
		return nil, false
	}

	// Back-substitute: eliminate column c from every other row now
	// that all numUnknowns pivots are known.
	for c := 0; c < d.numUnknowns; c++ {
		for r := 0; r < d.numUnknowns; r++ {
			if r == c {
				continue
			}
			row := d.row(r)
			factor := row[c]
			if factor.IsZero() {
				continue
			}
			subtractScaled(row, d.row(c), factor)
			subtractScaledPayload(d.pivotPayload[r], d.pivotPayload[c], factor)
		}
	}

	out := make([][]uint64, d.numUnknowns)
	copy(out, d.pivotPayload)
	return out, true
}

func scaleRow(row []field.Elem, scale field.Elem) {
	for i := range row {
		row[i] = field.Mul(row[i], scale)
	}
}

func scalePayload(payload []uint64, scale field.Elem) {
	for i := range payload {
		payload[i] = field.Mul(field.FromUint64(payload[i]), scale).Uint64()
	}
}

// subtractScaled computes row -= factor*pivotRow in place.
func subtractScaled(row, pivotRow []field.Elem, factor field.Elem) {
	for i := range row {
		row[i] = field.Sub(row[i], field.Mul(factor, pivotRow[i]))
	}
}

func subtractScaledPayload(payload, pivotPayload []uint64, factor field.Elem) {
	for i := range payload {
		p := field.FromUint64(payload[i])
		piv := field.FromUint64(pivotPayload[i])
		payload[i] = field.Sub(p, field.Mul(factor, piv)).Uint64()
	}
}
