package ckks

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/tuneinsight/lattigo/v6/utils"
)

// GaloisGen is an integer of order N/2 modulo M = 2N that spans Z_M with the integer -1.
// The j-th slot holds the evaluation of the message at zeta^(GaloisGen^j).
const GaloisGen = 5

// GetRootsComplex128 returns the roots e^{2*pi*i/NthRoot *j} for 0 <= j <= NthRoot.
func GetRootsComplex128(NthRoot int) (roots []complex128) {

	roots = make([]complex128, NthRoot+1)

	quarm := NthRoot >> 2

	angle := 2 * math.Pi / float64(NthRoot)

	for i := 0; i < quarm; i++ {
		roots[i] = complex(math.Cos(angle*float64(i)), 0)
	}

	for i := 0; i < quarm; i++ {
		roots[quarm-i] += complex(0, real(roots[i]))
	}

	for i := 1; i < quarm+1; i++ {
		roots[i+1*quarm] = complex(-real(roots[quarm-i]), imag(roots[quarm-i]))
		roots[i+2*quarm] = -roots[i]
		roots[i+3*quarm] = complex(real(roots[quarm-i]), -imag(roots[quarm-i]))
	}

	roots[NthRoot] = roots[0]

	return
}

// GetRotGroup returns the powers of [GaloisGen] modulo NthRoot, of which there are NthRoot/4.
func GetRotGroup(NthRoot int) (rotGroup []int) {
	rotGroup = make([]int, NthRoot>>2)
	fivePows := 1
	for i := range rotGroup {
		rotGroup[i] = fivePows
		fivePows *= GaloisGen
		fivePows &= NthRoot - 1
	}
	return
}

// SpecialIFFT performs the special inverse FFT of the encoding in place,
// on the first N values, with M the order of the roots.
func SpecialIFFT(values []complex128, N, M int, rotGroup []int, roots []complex128) {

	// Sanity check
	if len(values) < N || len(rotGroup) < N || len(roots) < M+1 {
		panic(fmt.Sprintf("invalid call of SpecialIFFT: len(values)=%d or len(rotGroup)=%d < N=%d or len(roots)=%d < M+1=%d", len(values), len(rotGroup), N, len(roots), M))
	}

	logN := bits.Len64(uint64(N)) - 1
	logM := bits.Len64(uint64(M)) - 1
	for loglen := logN; loglen > 0; loglen-- {
		len := 1 << loglen
		lenh := len >> 1
		lenq := len << 2
		logGap := logM - 2 - loglen
		mask := lenq - 1
		for i := 0; i < N; i += len {
			for j, k := 0, i; j < lenh; j, k = j+1, k+1 {
				values[k], values[k+lenh] = values[k]+values[k+lenh], (values[k]-values[k+lenh])*roots[(lenq-(rotGroup[j]&mask))<<logGap]
			}
		}
	}

	for i := 0; i < N; i++ {
		values[i] /= complex(float64(N), 0)
	}

	utils.BitReverseInPlaceSlice(values, N)
}

// SpecialFFT performs the special FFT of the decoding in place,
// on the first N values, with M the order of the roots.
func SpecialFFT(values []complex128, N, M int, rotGroup []int, roots []complex128) {

	// Sanity check
	if len(values) < N || len(rotGroup) < N || len(roots) < M+1 {
		panic(fmt.Sprintf("invalid call of SpecialFFT: len(values)=%d or len(rotGroup)=%d < N=%d or len(roots)=%d < M+1=%d", len(values), len(rotGroup), N, len(roots), M))
	}

	utils.BitReverseInPlaceSlice(values, N)

	logN := bits.Len64(uint64(N)) - 1
	logM := bits.Len64(uint64(M)) - 1
	for loglen := 1; loglen <= logN; loglen++ {
		len := 1 << loglen
		lenh := len >> 1
		lenq := len << 2
		logGap := logM - 2 - loglen
		mask := lenq - 1
		for i := 0; i < N; i += len {
			for j, k := 0, i; j < lenh; j, k = j+1, k+1 {
				values[k+lenh] *= roots[(rotGroup[j]&mask)<<logGap]
				values[k], values[k+lenh] = values[k]+values[k+lenh], values[k]-values[k+lenh]
			}
		}
	}
}
