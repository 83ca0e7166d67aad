package rlwe

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// Plaintext is an encoded message: a single polynomial along with its metadata.
//
// An [Exact] plaintext holds coefficients in [0, T), replicated on every modulus
// of its level, in the coefficient domain, at scale 1.
// An [Approximate] plaintext holds fixed-point coefficients modulo the modulus
// of its level, in the NTT domain, at its scale.
type Plaintext struct {
	Element
	Value ring.Poly
}

// NewPlaintext allocates a zero [Plaintext] at the given level, with the
// default scale and representation of the scheme of the context.
func (ctx *Context) NewPlaintext(level int) *Plaintext {
	el := newElement(ctx, 0, level)
	el.IsNTT = ctx.Scheme() == Approximate
	return &Plaintext{Element: el, Value: el.Value[0]}
}

// CopyNew creates a deep copy of the object and returns it.
func (pt Plaintext) CopyNew() *Plaintext {
	el := pt.Element.CopyNew()
	return &Plaintext{Element: *el, Value: el.Value[0]}
}

// Equal performs a deep equal.
func (pt Plaintext) Equal(other *Plaintext) bool {
	return pt.Element.Equal(&other.Element)
}

// CheckPlaintext returns an error if the plaintext is nil, was not produced under
// the scheme of the context or does not have the shape of its level.
func (ctx *Context) CheckPlaintext(pt *Plaintext) error {
	if pt == nil {
		return fmt.Errorf("%w: plaintext is nil", ErrMalformed)
	}
	return ctx.checkElement(&pt.MetaData, pt.Value)
}
