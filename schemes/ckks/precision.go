package ckks

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/montanaflynn/stats"

	"github.com/linhe/linhe/core/rlwe"
)

// PrecisionStats is a struct storing statistic about the precision of decoded
// Approximate values against reference values.
type PrecisionStats struct {
	MINLog2Prec Stats
	MAXLog2Prec Stats
	AVGLog2Prec Stats
	MEDLog2Prec Stats
	STDLog2Prec Stats

	MINLog2Err Stats
	MAXLog2Err Stats
	AVGLog2Err Stats
	MEDLog2Err Stats
	STDLog2Err Stats
}

// Stats is a struct storing the real, imaginary and L2 norm (modulus)
// about the precision of a complex value.
type Stats struct {
	Real, Imag, L2 float64
}

func (prec PrecisionStats) String() string {
	return fmt.Sprintf(`
┌─────────┬───────┬───────┬───────┐
│    Log2 │ REAL  │ IMAG  │ L2    │
├─────────┼───────┼───────┼───────┤
│MIN Prec │ %5.2f │ %5.2f │ %5.2f │
│MAX Prec │ %5.2f │ %5.2f │ %5.2f │
│AVG Prec │ %5.2f │ %5.2f │ %5.2f │
│MED Prec │ %5.2f │ %5.2f │ %5.2f │
│STD Prec │ %5.2f │ %5.2f │ %5.2f │
├─────────┼───────┼───────┼───────┤
│MIN Err  │ %5.2f │ %5.2f │ %5.2f │
│MAX Err  │ %5.2f │ %5.2f │ %5.2f │
│AVG Err  │ %5.2f │ %5.2f │ %5.2f │
│MED Err  │ %5.2f │ %5.2f │ %5.2f │
│STD Err  │ %5.2f │ %5.2f │ %5.2f │
└─────────┴───────┴───────┴───────┘
`,
		prec.MINLog2Prec.Real, prec.MINLog2Prec.Imag, prec.MINLog2Prec.L2,
		prec.MAXLog2Prec.Real, prec.MAXLog2Prec.Imag, prec.MAXLog2Prec.L2,
		prec.AVGLog2Prec.Real, prec.AVGLog2Prec.Imag, prec.AVGLog2Prec.L2,
		prec.MEDLog2Prec.Real, prec.MEDLog2Prec.Imag, prec.MEDLog2Prec.L2,
		prec.STDLog2Prec.Real, prec.STDLog2Prec.Imag, prec.STDLog2Prec.L2,
		prec.MINLog2Err.Real, prec.MINLog2Err.Imag, prec.MINLog2Err.L2,
		prec.MAXLog2Err.Real, prec.MAXLog2Err.Imag, prec.MAXLog2Err.L2,
		prec.AVGLog2Err.Real, prec.AVGLog2Err.Imag, prec.AVGLog2Err.L2,
		prec.MEDLog2Err.Real, prec.MEDLog2Err.Imag, prec.MEDLog2Err.L2,
		prec.STDLog2Err.Real, prec.STDLog2Err.Imag, prec.STDLog2Err.L2)
}

// minLog2Err is the smallest error accounted for, so that exact values
// report a finite precision.
const minLog2Err = -64

// GetPrecisionStats generates a [PrecisionStats] struct from the reference values
// and the decoded values. want and have must be both []float64 or both []complex128,
// of the same non-zero length.
func GetPrecisionStats(want, have any) (prec PrecisionStats, err error) {

	var w, h []complex128
	switch want := want.(type) {
	case []float64:
		hv, ok := have.([]float64)
		if !ok {
			return prec, fmt.Errorf("cannot GetPrecisionStats: %w: have.(type) must be []float64 but is %T", rlwe.ErrInvalidEncoding, have)
		}
		w, h = toComplex(want), toComplex(hv)
	case []complex128:
		hv, ok := have.([]complex128)
		if !ok {
			return prec, fmt.Errorf("cannot GetPrecisionStats: %w: have.(type) must be []complex128 but is %T", rlwe.ErrInvalidEncoding, have)
		}
		w, h = want, hv
	default:
		return prec, fmt.Errorf("cannot GetPrecisionStats: %w: want.(type) must be []float64 or []complex128 but is %T", rlwe.ErrInvalidEncoding, want)
	}

	if len(w) == 0 {
		return prec, fmt.Errorf("cannot GetPrecisionStats: %w", rlwe.ErrEmptyInput)
	}

	if len(w) != len(h) {
		return prec, fmt.Errorf("cannot GetPrecisionStats: %w: len(want)=%d != len(have)=%d", rlwe.ErrInvalidEncoding, len(w), len(h))
	}

	errReal := make(stats.Float64Data, len(w))
	errImag := make(stats.Float64Data, len(w))
	errL2 := make(stats.Float64Data, len(w))

	for i := range w {
		d := w[i] - h[i]
		errReal[i] = log2Err(math.Abs(real(d)))
		errImag[i] = log2Err(math.Abs(imag(d)))
		errL2[i] = log2Err(cmplx.Abs(d))
	}

	if prec.MINLog2Err, err = summarize(errReal, errImag, errL2, stats.Min); err != nil {
		return
	}
	if prec.MAXLog2Err, err = summarize(errReal, errImag, errL2, stats.Max); err != nil {
		return
	}
	if prec.AVGLog2Err, err = summarize(errReal, errImag, errL2, stats.Mean); err != nil {
		return
	}
	if prec.MEDLog2Err, err = summarize(errReal, errImag, errL2, stats.Median); err != nil {
		return
	}
	if prec.STDLog2Err, err = summarize(errReal, errImag, errL2, stats.StandardDeviation); err != nil {
		return
	}

	// log2(1/err) = -log2(err)
	prec.MINLog2Prec = neg(prec.MAXLog2Err)
	prec.MAXLog2Prec = neg(prec.MINLog2Err)
	prec.AVGLog2Prec = neg(prec.AVGLog2Err)
	prec.MEDLog2Prec = neg(prec.MEDLog2Err)
	prec.STDLog2Prec = prec.STDLog2Err

	return
}

func summarize(re, im, l2 stats.Float64Data, f func(stats.Float64Data) (float64, error)) (s Stats, err error) {
	if s.Real, err = f(re); err != nil {
		return s, fmt.Errorf("cannot GetPrecisionStats: %w", err)
	}
	if s.Imag, err = f(im); err != nil {
		return s, fmt.Errorf("cannot GetPrecisionStats: %w", err)
	}
	if s.L2, err = f(l2); err != nil {
		return s, fmt.Errorf("cannot GetPrecisionStats: %w", err)
	}
	return
}

func log2Err(e float64) float64 {
	if e == 0 {
		return minLog2Err
	}
	return math.Max(math.Log2(e), minLog2Err)
}

func neg(s Stats) Stats {
	return Stats{Real: -s.Real, Imag: -s.Imag, L2: -s.L2}
}

func toComplex(v []float64) (c []complex128) {
	c = make([]complex128, len(v))
	for i := range v {
		c[i] = complex(v[i], 0)
	}
	return
}
