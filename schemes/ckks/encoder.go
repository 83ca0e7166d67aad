package ckks

import (
	"fmt"
	"math"
	"math/big"

	"github.com/linhe/linhe/core/rlwe"
)

// Encoder is a type that implements the encoding and decoding interface for the
// Approximate scheme. Values are scaled by the scale of the plaintext and
// rounded to the nearest integer.
//
//   - float64: the value is encoded as the constant polynomial round(v*scale),
//     which evaluates to v in every slot. The constant polynomial is also
//     constant in the NTT domain, so no transform is needed.
//   - []float64, []complex128: up to N/2 values are zero padded to N/2 slots and
//     mapped to the coefficients by the special inverse FFT of the canonical
//     embedding, real parts on the first N/2 coefficients and imaginary parts on
//     the last N/2.
//
// An Encoder is read-only and safe for concurrent use.
type Encoder struct {
	ctx      *rlwe.Context
	m        int
	rotGroup []int
	roots    []complex128
}

// NewEncoder creates a new [Encoder] from the target context.
func NewEncoder(ctx *rlwe.Context) (*Encoder, error) {

	if ctx.Scheme() != rlwe.Approximate {
		return nil, fmt.Errorf("cannot NewEncoder: %w: %s parameters", rlwe.ErrSchemeMismatch, ctx.Scheme())
	}

	m := ctx.N() << 1

	return &Encoder{
		ctx:      ctx,
		m:        m,
		rotGroup: GetRotGroup(m),
		roots:    GetRootsComplex128(m),
	}, nil
}

// Slots returns the number of values that can be encoded on a plaintext.
func (ecd Encoder) Slots() int {
	return ecd.ctx.N() >> 1
}

// Encode encodes a float64, []float64 or []complex128 on the target plaintext,
// at the level and scale of the plaintext.
//
// The plaintext metadata is updated with the norms of the encoding.
// Returns [rlwe.ErrTooManyValues] if more than N/2 values are given and
// [rlwe.ErrScaleOutOfBounds] if a scaled value does not fit in the modulus of the level.
func (ecd Encoder) Encode(values any, pt *rlwe.Plaintext) (err error) {

	if err = ecd.checkPlaintext(pt); err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	slots := ecd.Slots()

	switch values := values.(type) {
	case float64:

		if math.IsNaN(values) || math.IsInf(values, 0) {
			return fmt.Errorf("cannot Encode: %w: %v is not finite", rlwe.ErrInvalidEncoding, values)
		}

		return ecd.encodeConstant(values, pt)

	case []float64:

		if len(values) > slots {
			return fmt.Errorf("cannot Encode: %w: maximum number of values is %d but len(values) is %d", rlwe.ErrTooManyValues, slots, len(values))
		}

		buff := make([]complex128, slots)
		for i, v := range values {
			buff[i] = complex(v, 0)
		}

		return ecd.encodeSlots(buff, pt)

	case []complex128:

		if len(values) > slots {
			return fmt.Errorf("cannot Encode: %w: maximum number of values is %d but len(values) is %d", rlwe.ErrTooManyValues, slots, len(values))
		}

		buff := make([]complex128, slots)
		copy(buff, values)

		return ecd.encodeSlots(buff, pt)

	default:
		return fmt.Errorf("cannot Encode: %w: values.(type) must be float64, []float64 or []complex128 but is %T", rlwe.ErrInvalidEncoding, values)
	}
}

// Decode decodes the plaintext on values, which must be a *float64 (first slot),
// a []float64 (real parts) or a []complex128, of at most N/2 elements.
// The coefficients are divided by the scale of the plaintext.
func (ecd Encoder) Decode(pt *rlwe.Plaintext, values any) (err error) {

	if err = ecd.checkPlaintext(pt); err != nil {
		return fmt.Errorf("cannot Decode: %w", err)
	}

	slots := ecd.Slots()

	switch values := values.(type) {
	case *float64:
		if values == nil {
			return fmt.Errorf("cannot Decode: %w: nil *float64", rlwe.ErrInvalidEncoding)
		}
	case []float64:
		if len(values) > slots {
			return fmt.Errorf("cannot Decode: %w: maximum number of values is %d but len(values) is %d", rlwe.ErrTooManyValues, slots, len(values))
		}
	case []complex128:
		if len(values) > slots {
			return fmt.Errorf("cannot Decode: %w: maximum number of values is %d but len(values) is %d", rlwe.ErrTooManyValues, slots, len(values))
		}
	default:
		return fmt.Errorf("cannot Decode: %w: values.(type) must be *float64, []float64 or []complex128 but is %T", rlwe.ErrInvalidEncoding, values)
	}

	vec := ecd.decodeSlots(pt)

	switch values := values.(type) {
	case *float64:
		*values = real(vec[0])
	case []float64:
		for i := range values {
			values[i] = real(vec[i])
		}
	case []complex128:
		copy(values, vec)
	}

	return
}

// DecodeFloat64 decodes the first slot of the plaintext on a new float64.
func (ecd Encoder) DecodeFloat64(pt *rlwe.Plaintext) (v float64, err error) {
	err = ecd.Decode(pt, &v)
	return
}

func (ecd Encoder) encodeConstant(v float64, pt *rlwe.Plaintext) (err error) {

	c := math.Round(v * pt.Scale)

	if err = ecd.checkBound(math.Abs(c), pt.Level); err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	moduli := ecd.moduliAt(pt.Level)
	coeffs := pt.Value.Coeffs

	SetFixedPoint(moduli, 0, c, coeffs)

	for i := range moduli {
		ci := coeffs[i][0]
		for j := range coeffs[i] {
			coeffs[i][j] = ci
		}
	}

	pt.NoiseBound = 0.5
	pt.MessageBound = math.Abs(c)
	pt.PlainNorm = math.Abs(c)

	return
}

func (ecd Encoder) encodeSlots(values []complex128, pt *rlwe.Plaintext) (err error) {

	for _, v := range values {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) || math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
			return fmt.Errorf("cannot Encode: %w: %v is not finite", rlwe.ErrInvalidEncoding, v)
		}
	}

	slots := len(values)

	SpecialIFFT(values, slots, ecd.m, ecd.rotGroup, ecd.roots)

	// Maps the real parts on [0, N/2) and the imaginary parts on [N/2, N).
	scaled := make([]float64, slots<<1)
	var norm, maxCoeff float64
	for i, v := range values {
		scaled[i] = math.Round(real(v) * pt.Scale)
		scaled[i+slots] = math.Round(imag(v) * pt.Scale)
		norm += math.Abs(scaled[i]) + math.Abs(scaled[i+slots])
		maxCoeff = math.Max(maxCoeff, math.Max(math.Abs(scaled[i]), math.Abs(scaled[i+slots])))
	}

	if err = ecd.checkBound(maxCoeff, pt.Level); err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	moduli := ecd.moduliAt(pt.Level)
	for j, c := range scaled {
		SetFixedPoint(moduli, j, c, pt.Value.Coeffs)
	}

	ecd.ctx.RingAt(pt.Level).NTT(pt.Value, pt.Value)

	pt.NoiseBound = 0.5
	pt.MessageBound = maxCoeff
	pt.PlainNorm = norm

	return
}

// decodeSlots returns the N/2 slots of the plaintext divided by its scale.
func (ecd Encoder) decodeSlots(pt *rlwe.Plaintext) []complex128 {

	ctx := ecd.ctx
	level := pt.Level
	ringQ := ctx.RingAt(level)

	buff := ctx.Arena().GetBuffPoly(ctx.ModuliCountAt(level))
	defer ctx.Arena().RecycleBuffPoly(buff)

	ringQ.INTT(pt.Value, *buff)

	N := ctx.N()
	coeffs := make([]*big.Int, N)
	for i := range coeffs {
		coeffs[i] = new(big.Int)
	}

	ringQ.PolyToBigintCentered(*buff, 1, coeffs)

	scale := new(big.Float).SetFloat64(pt.Scale)
	tmp := new(big.Float)

	slots := N >> 1
	vec := make([]complex128, slots)
	for i := range vec {
		vec[i] = complex(bigIntToFloat64(coeffs[i], scale, tmp), bigIntToFloat64(coeffs[i+slots], scale, tmp))
	}

	SpecialFFT(vec, slots, ecd.m, ecd.rotGroup, ecd.roots)

	return vec
}

// checkBound returns an error if a coefficient of magnitude c does not fit in (-Q_l/2, Q_l/2).
func (ecd Encoder) checkBound(c float64, level int) error {
	if c != 0 && math.Log2(c) >= ecd.ctx.LogQAt(level)-1 {
		return fmt.Errorf("%w: scaled value 2^%.2f does not fit in the modulus 2^%.2f of level %d", rlwe.ErrScaleOutOfBounds, math.Log2(c), ecd.ctx.LogQAt(level), level)
	}
	return nil
}

func (ecd Encoder) moduliAt(level int) []uint64 {
	return ecd.ctx.Parameters().Q()[:ecd.ctx.ModuliCountAt(level)]
}

func (ecd Encoder) checkPlaintext(pt *rlwe.Plaintext) error {
	if pt == nil {
		return fmt.Errorf("%w: nil plaintext", rlwe.ErrInvalidEncoding)
	}
	if err := ecd.ctx.CheckPlaintext(pt); err != nil {
		return err
	}
	if !pt.IsNTT {
		return fmt.Errorf("%w: Approximate plaintexts are in the NTT domain", rlwe.ErrInvalidEncoding)
	}
	if !(pt.Scale > 0) || math.IsInf(pt.Scale, 0) {
		return fmt.Errorf("%w: invalid scale %v", rlwe.ErrScaleOutOfBounds, pt.Scale)
	}
	return nil
}
