// Package bfv implements the encoder of the Exact scheme, a scale-invariant
// variant of the Brakerski/Fan-Vercauteren (BFV) scheme in which integers are
// encoded on the coefficients of a plaintext modulo T.
//
// Homomorphic operations on Exact ciphertexts are provided by [rlwe.Evaluator].
package bfv

import (
	"github.com/linhe/linhe/core/rlwe"
)

// NewPlaintext allocates a new [rlwe.Plaintext] from the Exact context at the
// specified level, ready to be passed to an [IntegerEncoder].
func NewPlaintext(ctx *rlwe.Context, level int) (pt *rlwe.Plaintext) {
	pt = ctx.NewPlaintext(level)
	pt.Scale = 1
	pt.IsNTT = false
	return
}
