package rlwe

import (
	"github.com/google/go-cmp/cmp"
	"github.com/tuneinsight/lattigo/v6/ring"
)

// SecretKey is a ternary polynomial modulo the full chain, stored in the NTT and Montgomery domain.
type SecretKey struct {
	Value ring.Poly
}

// NewSecretKey allocates a zero [SecretKey].
func (ctx *Context) NewSecretKey() *SecretKey {
	return &SecretKey{Value: ctx.ringQ.NewPoly()}
}

// Equal performs a deep equal.
func (sk SecretKey) Equal(other *SecretKey) bool {
	return cmp.Equal([][]uint64(sk.Value.Coeffs), [][]uint64(other.Value.Coeffs))
}

// CopyNew creates a deep copy of the object and returns it.
func (sk SecretKey) CopyNew() *SecretKey {
	return &SecretKey{Value: copyPolyNew(sk.Value)}
}

// PublicKey is an encryption of zero (-a*s + e, a) under the [SecretKey],
// stored in the NTT and Montgomery domain.
type PublicKey struct {
	Value [2]ring.Poly
}

// NewPublicKey allocates a zero [PublicKey].
func (ctx *Context) NewPublicKey() *PublicKey {
	return &PublicKey{Value: [2]ring.Poly{ctx.ringQ.NewPoly(), ctx.ringQ.NewPoly()}}
}

// Equal performs a deep equal.
func (pk PublicKey) Equal(other *PublicKey) bool {
	return cmp.Equal([][]uint64(pk.Value[0].Coeffs), [][]uint64(other.Value[0].Coeffs)) &&
		cmp.Equal([][]uint64(pk.Value[1].Coeffs), [][]uint64(other.Value[1].Coeffs))
}

// CopyNew creates a deep copy of the object and returns it.
func (pk PublicKey) CopyNew() *PublicKey {
	return &PublicKey{Value: [2]ring.Poly{copyPolyNew(pk.Value[0]), copyPolyNew(pk.Value[1])}}
}
