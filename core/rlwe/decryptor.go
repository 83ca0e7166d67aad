package rlwe

import (
	"fmt"
	"math"
	"math/big"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// Decryptor is a structure used to decrypt [Ciphertext]. It stores the secret-key.
// A Decryptor is safe for concurrent use.
type Decryptor struct {
	ctx *Context
	sk  *SecretKey
}

// NewDecryptor instantiates a new [Decryptor].
func NewDecryptor(ctx *Context, sk *SecretKey) (*Decryptor, error) {
	if sk == nil || len(sk.Value.Coeffs) != ctx.params.QCount() || len(sk.Value.Coeffs[0]) != ctx.N() {
		return nil, fmt.Errorf("cannot NewDecryptor: %w: secret key does not match the parameters", ErrParametersMismatch)
	}
	return &Decryptor{ctx: ctx, sk: sk}, nil
}

// Decrypt decrypts the [Ciphertext] and returns the result in a new [Plaintext]
// at the level of the ciphertext.
//
//   - Exact: the plaintext holds round(T*x/Q_l) mod T in the coefficient domain,
//     where x = c0 + c1*s mod Q_l.
//   - Approximate: the plaintext holds x in the NTT domain, with the scale of the ciphertext.
//
// Decryption does not detect a noise that exceeds the budget; the result is then meaningless.
func (d Decryptor) Decrypt(ct *Ciphertext) (pt *Plaintext, err error) {

	ctx := d.ctx

	if err = ctx.CheckCiphertext(ct); err != nil {
		return nil, fmt.Errorf("cannot Decrypt: %w", err)
	}

	level := ct.Level
	pt = ctx.NewPlaintext(level)
	pt.MetaData = ct.MetaData
	pt.PlainNorm = 0

	d.phase(ct, pt.Value)

	if ctx.Scheme() == Approximate {
		pt.IsNTT = true
		return pt, nil
	}

	ringQ := ctx.RingAt(level)
	ringQ.INTT(pt.Value, pt.Value)

	ld := ctx.levels[level]
	T := new(big.Int).SetUint64(ctx.T())

	coeffs := newBigintSlice(ctx.N())
	ringQ.PolyToBigintCentered(pt.Value, 1, coeffs)

	for j, c := range coeffs {
		// round(T*x/Q) mod T
		c.Mul(c, T)
		c.Add(c, ld.qHalf)
		c.Div(c, ld.q)
		c.Mod(c, T)
		m := c.Uint64()
		for i := range pt.Value.Coeffs {
			pt.Value.Coeffs[i][j] = m
		}
	}

	pt.IsNTT = false
	pt.Scale = 1

	return pt, nil
}

// InvariantNoiseBudget measures the remaining noise budget of an [Exact] ciphertext, in whole bits:
// bitlen(Q_l) - bitlen(||T*(c0 + c1*s) mod Q_l||) - 1, clamped at zero.
// Decryption is correct as long as the budget is positive.
func (d Decryptor) InvariantNoiseBudget(ct *Ciphertext) (budget float64, err error) {

	ctx := d.ctx

	if ctx.Scheme() != Exact {
		return 0, fmt.Errorf("cannot InvariantNoiseBudget: %w: not defined for the %s scheme", ErrSchemeMismatch, ctx.Scheme())
	}

	if err = ctx.CheckCiphertext(ct); err != nil {
		return 0, fmt.Errorf("cannot InvariantNoiseBudget: %w", err)
	}

	level := ct.Level
	ringQ := ctx.RingAt(level)

	buff := ctx.arena.GetBuffPoly(ctx.ModuliCountAt(level))
	defer ctx.arena.RecycleBuffPoly(buff)

	d.phase(ct, *buff)
	ringQ.INTT(*buff, *buff)

	// T * (c0 + c1*s) = T*e - (Q mod T)*m mod Q
	ringQ.MulScalar(*buff, ctx.T(), *buff)

	coeffs := newBigintSlice(ctx.N())
	ringQ.PolyToBigintCentered(*buff, 1, coeffs)

	norm := new(big.Int)
	for _, c := range coeffs {
		if c.CmpAbs(norm) > 0 {
			norm.Abs(c)
		}
	}

	if norm.Sign() == 0 {
		norm.SetUint64(1)
	}

	return math.Max(0, float64(ctx.QAt(level).BitLen()-norm.BitLen()-1)), nil
}

// phase writes c0 + c1*s on out, in the NTT domain.
func (d Decryptor) phase(ct *Ciphertext, out ring.Poly) {
	ringQ := d.ctx.RingAt(ct.Level)
	ringQ.MulCoeffsMontgomery(ct.Value[1], d.sk.Value, out)
	ringQ.Add(out, ct.Value[0], out)
	ringQ.Reduce(out, out)
}

func newBigintSlice(n int) []*big.Int {
	s := make([]*big.Int, n)
	for i := range s {
		s[i] = new(big.Int)
	}
	return s
}
