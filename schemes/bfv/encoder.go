package bfv

import (
	"fmt"
	"math"
	"math/big"

	"github.com/linhe/linhe/core/rlwe"
)

// IntegerEncoder encodes integers on the coefficients of an Exact plaintext,
// as the digits of their expansion in a base B:
//
//   - B = 2: signed binary, every digit carries the sign of the value.
//   - B odd, 3 <= B < T: balanced digits in [-(B-1)/2, (B-1)/2].
//   - B = 0: the value modulo T, as a constant polynomial.
//
// Decoding evaluates the centered plaintext polynomial at B, which inverts
// the encoding as long as no coefficient wrapped around modulo T.
// Wrap-around is not detected.
//
// An IntegerEncoder is read-only and safe for concurrent use.
type IntegerEncoder struct {
	ctx  *rlwe.Context
	base uint64
}

// NewIntegerEncoder creates a new [IntegerEncoder] for the given base.
func NewIntegerEncoder(ctx *rlwe.Context, base uint64) (*IntegerEncoder, error) {

	if ctx.Scheme() != rlwe.Exact {
		return nil, fmt.Errorf("cannot NewIntegerEncoder: %w: %s parameters", rlwe.ErrSchemeMismatch, ctx.Scheme())
	}

	switch {
	case base == 0, base == 2:
	case base&1 == 1 && base >= 3 && base < ctx.T():
	default:
		return nil, fmt.Errorf("cannot NewIntegerEncoder: %w: base must be 0, 2 or odd in [3, %d), but is %d", rlwe.ErrInvalidEncoding, ctx.T(), base)
	}

	return &IntegerEncoder{ctx: ctx, base: base}, nil
}

// Base returns the base of the encoder.
func (ecd IntegerEncoder) Base() uint64 {
	return ecd.base
}

// Encode encodes an int, int64, uint64 or *[big.Int] on the target plaintext,
// at the level of the plaintext.
//
// The plaintext metadata is updated with the norms of the encoding.
// Returns [rlwe.ErrInvalidEncoding] if the value has more digits than the ring degree.
func (ecd IntegerEncoder) Encode(values any, pt *rlwe.Plaintext) (err error) {

	var v *big.Int
	switch values := values.(type) {
	case int:
		v = big.NewInt(int64(values))
	case int64:
		v = big.NewInt(values)
	case uint64:
		v = new(big.Int).SetUint64(values)
	case *big.Int:
		if values == nil {
			return fmt.Errorf("cannot Encode: %w: nil *big.Int", rlwe.ErrInvalidEncoding)
		}
		v = values
	default:
		return fmt.Errorf("cannot Encode: %w: values.(type) must be int, int64, uint64 or *big.Int but is %T", rlwe.ErrInvalidEncoding, values)
	}

	if err = ecd.checkPlaintext(pt); err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	digits := ecd.digits(v)

	if len(digits) > ecd.ctx.N() {
		return fmt.Errorf("cannot Encode: %w: %d digits in base %d exceed the ring degree %d", rlwe.ErrInvalidEncoding, len(digits), ecd.base, ecd.ctx.N())
	}

	T := ecd.ctx.T()

	for i := range pt.Value.Coeffs {
		clear(pt.Value.Coeffs[i])
	}

	var norm, maxDigit float64
	for j, d := range digits {

		var c uint64
		if d < 0 {
			c = T - uint64(-d)
		} else {
			c = uint64(d)
		}

		for i := range pt.Value.Coeffs {
			pt.Value.Coeffs[i][j] = c
		}

		a := math.Abs(float64(d))
		norm += a
		maxDigit = math.Max(maxDigit, a)
	}

	pt.Scale = 1
	pt.IsNTT = false
	pt.NoiseBound = 0
	pt.MessageBound = maxDigit
	pt.PlainNorm = norm

	return
}

// Decode decodes the plaintext on values, which must be a *int64 or a *[big.Int].
// Returns [rlwe.ErrInvalidEncoding] if the decoded value overflows an int64.
func (ecd IntegerEncoder) Decode(pt *rlwe.Plaintext, values any) (err error) {

	if err = ecd.checkPlaintext(pt); err != nil {
		return fmt.Errorf("cannot Decode: %w", err)
	}

	v := ecd.evaluate(pt.Value.Coeffs[0])

	switch values := values.(type) {
	case *int64:
		if !v.IsInt64() {
			return fmt.Errorf("cannot Decode: %w: %s overflows int64", rlwe.ErrInvalidEncoding, v)
		}
		*values = v.Int64()
	case *big.Int:
		if values == nil {
			return fmt.Errorf("cannot Decode: %w: nil *big.Int", rlwe.ErrInvalidEncoding)
		}
		values.Set(v)
	default:
		return fmt.Errorf("cannot Decode: %w: values.(type) must be *int64 or *big.Int but is %T", rlwe.ErrInvalidEncoding, values)
	}

	return
}

// DecodeInt64 decodes the plaintext on a new int64.
func (ecd IntegerEncoder) DecodeInt64(pt *rlwe.Plaintext) (v int64, err error) {
	err = ecd.Decode(pt, &v)
	return
}

// digits returns the digits of v in the base of the encoder, least significant first.
func (ecd IntegerEncoder) digits(v *big.Int) (digits []int64) {

	switch ecd.base {
	case 0:
		T := ecd.ctx.T()
		c := new(big.Int).Mod(v, new(big.Int).SetUint64(T)).Uint64()
		if c > T>>1 {
			return []int64{-int64(T - c)}
		}
		return []int64{int64(c)}

	case 2:
		sign := int64(v.Sign())
		abs := new(big.Int).Abs(v)
		digits = make([]int64, abs.BitLen())
		for i := range digits {
			digits[i] = sign * int64(abs.Bit(i))
		}
		return

	default:
		B := new(big.Int).SetUint64(ecd.base)
		half := int64(ecd.base >> 1)
		one := big.NewInt(1)

		x := new(big.Int).Set(v)
		r := new(big.Int)
		for x.Sign() != 0 {
			// Euclidean division, 0 <= r < B
			x.DivMod(x, B, r)
			d := r.Int64()
			if d > half {
				d -= int64(ecd.base)
				x.Add(x, one)
			}
			digits = append(digits, d)
		}
		return
	}
}

// evaluate returns the centered polynomial of coefficients coeffs, modulo T, evaluated at the base.
func (ecd IntegerEncoder) evaluate(coeffs []uint64) *big.Int {

	T := ecd.ctx.T()
	half := T >> 1
	B := new(big.Int).SetUint64(ecd.base)

	acc := new(big.Int)
	d := new(big.Int)
	for j := len(coeffs) - 1; j >= 0; j-- {

		c := coeffs[j] % T
		if c > half {
			d.SetInt64(-int64(T - c))
		} else {
			d.SetUint64(c)
		}

		acc.Mul(acc, B)
		acc.Add(acc, d)
	}

	return acc
}

func (ecd IntegerEncoder) checkPlaintext(pt *rlwe.Plaintext) error {
	if pt == nil {
		return fmt.Errorf("%w: nil plaintext", rlwe.ErrInvalidEncoding)
	}
	if err := ecd.ctx.CheckPlaintext(pt); err != nil {
		return err
	}
	if pt.IsNTT {
		return fmt.Errorf("%w: Exact plaintexts are in the coefficient domain", rlwe.ErrInvalidEncoding)
	}
	return nil
}
