// Package ckks implements the encoder of the Approximate scheme, a variant of the
// Homomorphic Encryption for Arithmetic of Approximate Numbers (HEAAN, a.k.a. CKKS)
// scheme. Real and complex values are encoded as fixed-point numbers at a scale,
// through the canonical embedding of the ring.
//
// Homomorphic operations on Approximate ciphertexts are provided by [rlwe.Evaluator].
package ckks

import (
	"github.com/linhe/linhe/core/rlwe"
)

// NewPlaintext allocates a new [rlwe.Plaintext] from the Approximate context at
// the specified level and scale, ready to be passed to an [Encoder].
// A scale of zero selects the default scale of the context.
func NewPlaintext(ctx *rlwe.Context, level int, scale float64) (pt *rlwe.Plaintext) {
	pt = ctx.NewPlaintext(level)
	if scale != 0 {
		pt.Scale = scale
	}
	pt.IsNTT = true
	return
}
