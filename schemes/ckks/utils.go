package ckks

import (
	"math"
	"math/big"
)

// SetFixedPoint writes round(value) modulo each modulus of moduli on the
// j-th coefficient of coeffs. Values of magnitude 2^63 or more go through
// *[big.Int] arithmetic.
func SetFixedPoint(moduli []uint64, j int, value float64, coeffs [][]uint64) {

	value = math.Round(value)

	if math.Abs(value) < 0x1p63 {
		c := int64(value)
		for i, qi := range moduli {
			coeffs[i][j] = reduceInt64(c, qi)
		}
		return
	}

	xInt, _ := new(big.Float).SetFloat64(value).Int(nil)
	tmp := new(big.Int)
	for i, qi := range moduli {
		coeffs[i][j] = tmp.Mod(xInt, new(big.Int).SetUint64(qi)).Uint64()
	}
}

// reduceInt64 returns c mod q in [0, q).
func reduceInt64(c int64, q uint64) uint64 {
	if c < 0 {
		if r := uint64(-c) % q; r != 0 {
			return q - r
		}
		return 0
	}
	return uint64(c) % q
}

// bigIntToFloat64 returns c/scale as a float64.
func bigIntToFloat64(c *big.Int, scale *big.Float, tmp *big.Float) float64 {
	f, _ := tmp.SetInt(c).Quo(tmp, scale).Float64()
	return f
}
