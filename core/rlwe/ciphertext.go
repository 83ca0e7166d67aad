package rlwe

import (
	"bytes"
	"fmt"
	"io"
)

// Ciphertext is an RLWE ciphertext (c0, c1) in the NTT domain
// modulo the modulus of its level, such that c0 + c1*s = Delta*m + e.
type Ciphertext struct {
	Element
}

// NewCiphertext allocates a zero [Ciphertext] of degree one at the given level.
func (ctx *Context) NewCiphertext(level int) *Ciphertext {
	el := newElement(ctx, 1, level)
	el.IsNTT = true
	return &Ciphertext{el}
}

// CopyNew creates a new element as a copy of the target element.
func (ct Ciphertext) CopyNew() *Ciphertext {
	return &Ciphertext{Element: *ct.Element.CopyNew()}
}

// CheckCiphertext returns an error if the ciphertext is nil, is not of degree one,
// was not produced under the scheme of the context or does not have the shape of its level.
func (ctx *Context) CheckCiphertext(ct *Ciphertext) error {
	if ct == nil {
		return fmt.Errorf("%w: ciphertext is nil", ErrMalformed)
	}
	if ct.Degree() != 1 {
		return fmt.Errorf("%w: degree %d is not supported", ErrMalformed, ct.Degree())
	}
	return ctx.checkElement(&ct.MetaData, ct.Value...)
}

// Copy copies the input element and its metadata on the target element.
func (ct *Ciphertext) Copy(other *Ciphertext) {
	ct.Element.Copy(&other.Element)
}

// Equal performs a deep equal.
func (ct Ciphertext) Equal(other *Ciphertext) bool {
	return ct.Element.Equal(&other.Element)
}

const (
	ciphertextMagic   = "LHCT"
	ciphertextVersion = 1
)

// ciphertextHeaderSize is the size of magic, version, digest, metadata and degree.
const ciphertextHeaderSize = len(ciphertextMagic) + 1 + 8 + metaDataSize + 1

// BinarySize returns the size in bytes that the object once marshalled into a binary form.
func (ct Ciphertext) BinarySize() int {
	return ciphertextHeaderSize + polysBinarySize(ct.Value)
}

// MarshalCiphertext encodes the ciphertext under the parameters of ctx.
// The layout is: magic, version, parameters digest, metadata, degree, followed by
// the coefficients of each polynomial, modulus by modulus, in little endian.
func (ctx *Context) MarshalCiphertext(ct *Ciphertext) (data []byte, err error) {

	if err = ctx.checkElement(&ct.MetaData, ct.Value...); err != nil {
		return nil, fmt.Errorf("cannot MarshalCiphertext: %w", err)
	}

	data = make([]byte, 0, ct.BinarySize())
	data = append(data, ciphertextMagic...)
	data = append(data, ciphertextVersion)
	data = append(data, ctx.digest[:]...)
	if data, err = ct.MetaData.appendBinary(data); err != nil {
		return nil, fmt.Errorf("cannot MarshalCiphertext: %w", err)
	}
	data = append(data, uint8(ct.Degree()))
	return appendPolys(data, ct.Value), nil
}

// WriteCiphertext writes the ciphertext on an [io.Writer] under the
// parameters of ctx, and returns the number of bytes written.
func (ctx *Context) WriteCiphertext(w io.Writer, ct *Ciphertext) (int64, error) {
	data, err := ctx.MarshalCiphertext(ct)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// UnmarshalCiphertext decodes a ciphertext written by [Context.MarshalCiphertext].
// It returns an error wrapping [ErrParametersMismatch] if the ciphertext was
// produced under another parameter set, and [ErrMalformed] if it cannot be parsed.
func (ctx *Context) UnmarshalCiphertext(data []byte) (*Ciphertext, error) {
	r := bytes.NewReader(data)
	ct, _, err := ctx.ReadCiphertext(r)
	if err != nil {
		return nil, fmt.Errorf("cannot UnmarshalCiphertext: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("cannot UnmarshalCiphertext: %w: %d trailing bytes", ErrMalformed, r.Len())
	}
	return ct, nil
}

// ReadCiphertext reads exactly one ciphertext written by [Context.WriteCiphertext] from r.
func (ctx *Context) ReadCiphertext(r io.Reader) (ct *Ciphertext, n int64, err error) {

	head := make([]byte, ciphertextHeaderSize)
	inc, err := io.ReadFull(r, head)
	n += int64(inc)
	if err != nil {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: %w", ErrMalformed, err)
	}

	if string(head[:len(ciphertextMagic)]) != ciphertextMagic {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: invalid magic", ErrMalformed)
	}
	head = head[len(ciphertextMagic):]

	if head[0] != ciphertextVersion {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: unsupported version %d", ErrMalformed, head[0])
	}
	head = head[1:]

	if !bytes.Equal(head[:8], ctx.digest[:]) {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: digest %x does not match %x", ErrParametersMismatch, head[:8], ctx.digest)
	}
	head = head[8:]

	var md MetaData
	if err = md.decodeBinary(head[:metaDataSize]); err != nil {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w", err)
	}

	if md.Scheme != ctx.Scheme() {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: %w: scheme %s", ErrMalformed, ErrSchemeMismatch, md.Scheme)
	}

	if md.Level > ctx.MaxLevel() {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: level %d is not in [0, %d]", ErrMalformed, md.Level, ctx.MaxLevel())
	}

	if !md.IsNTT {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: ciphertext is not in the NTT domain", ErrMalformed)
	}

	if degree := head[metaDataSize]; degree != 1 {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w: degree %d is not supported", ErrMalformed, degree)
	}

	ct = ctx.NewCiphertext(md.Level)
	ct.MetaData = md

	count := ctx.ModuliCountAt(md.Level)
	m, err := readPolys(r, ctx.params.q[:count], ct.Value)
	n += m
	if err != nil {
		return nil, n, fmt.Errorf("cannot ReadCiphertext: %w", err)
	}

	return ct, n, nil
}
