package rlwe

import (
	"math"
)

// Worst-case noise bookkeeping.
//
// For a ciphertext ct at level l, NoiseBound bounds the infinity norm of e in
// c0 + c1*s = Delta*m + e mod Q_l, where Delta = floor(Q_l/T) for [Exact] and
// Delta*m is the fixed-point message for [Approximate]. The bounds use
// ||a*b|| <= ||a||_1 * ||b|| and ||s||_1 <= N.

// freshNoiseBound returns the bound on the error of a fresh encryption.
// Public-key encryption: u*e_pk + e0 + e1*s, secret-key encryption: e.
func (ctx *Context) freshNoiseBound(publicKey bool) float64 {
	B := ctx.xe.AbsBound
	if publicKey {
		N := float64(ctx.N())
		return B * (2*N + 1)
	}
	return B
}

// roundingNoiseBound returns the bound on the error added by a rounded
// division by the last modulus: (r0 + r1*s) with |ri| <= 1/2.
func (ctx *Context) roundingNoiseBound() float64 {
	return (float64(ctx.N()) + 1) / 2
}

// mulPlainNoiseBound returns the bound on the error of ct * pt.
func (ctx *Context) mulPlainNoiseBound(ct, pt *MetaData) float64 {
	bound := ct.NoiseBound * pt.PlainNorm
	if ctx.Scheme() == Exact {
		// Delta*t*k with ||k|| <= ||m*p||/t and Delta*t = -(Q mod t) mod Q.
		bound += float64(ctx.T()) * pt.PlainNorm
	}
	return bound
}

// dropModulusNoiseBound returns the bound on the error after dividing by q.
func (ctx *Context) dropModulusNoiseBound(ct *MetaData, q uint64) float64 {
	bound := ct.NoiseBound/float64(q) + ctx.roundingNoiseBound()
	if ctx.Scheme() == Exact {
		// Delta_l/q differs from Delta_{l+1} by less than one.
		bound += float64(ctx.T())
	}
	return bound
}

// NoiseBudget returns the number of bits of noise that the ciphertext can
// still absorb before decryption fails, derived from its worst-case bounds:
//
//   - Exact: log2(Delta_l/2) - log2(NoiseBound)
//   - Approximate: log2(Q_l/2) - log2(MessageBound + NoiseBound)
//
// A non-positive budget means decryption may silently fail.
func (ctx *Context) NoiseBudget(ct *Ciphertext) float64 {

	ld := ctx.levelData(ct.Level)

	switch ctx.Scheme() {
	case Exact:
		return Log2Big(ld.delta) - 1 - log2Bound(ct.NoiseBound)
	default:
		return ld.logQ - 1 - log2Bound(ct.MessageBound+ct.NoiseBound)
	}
}

// Precision returns the number of bits of precision of an [Approximate] ciphertext:
// log2(Scale) - log2(NoiseBound).
func (ctx *Context) Precision(ct *Ciphertext) float64 {
	if ct.NoiseBound <= 1 {
		return math.Log2(ct.Scale)
	}
	return math.Log2(ct.Scale) - math.Log2(ct.NoiseBound)
}
