package rlwe

import (
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
	"golang.org/x/exp/constraints"
)

// log2Prec is the precision of the big.Float used to evaluate logarithms.
const log2Prec = 128

var ln2 = bigfloat.Log(new(big.Float).SetPrec(log2Prec).SetInt64(2))

// IsPowerOfTwo returns true if x is a strictly positive power of two.
func IsPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// Log2 returns the base 2 logarithm of a power of two.
func Log2[T constraints.Integer](x T) (n int) {
	for x > 1 {
		x >>= 1
		n++
	}
	return
}

// Log2Big returns log2(x) for x > 0, and -Inf otherwise.
func Log2Big(x *big.Int) float64 {
	if x.Sign() <= 0 {
		return math.Inf(-1)
	}
	f := new(big.Float).SetPrec(log2Prec).SetInt(x)
	l := bigfloat.Log(f)
	l.Quo(l, ln2)
	v, _ := l.Float64()
	return v
}

// log2Bound returns log2(x) for a non-negative float bound, with log2(0) = -Inf.
func log2Bound(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return math.Log2(x)
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
