package rlwe

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/tuneinsight/lattigo/v6/ring"
)

// Element is a vector of polynomials modulo the modulus of a level, along with its metadata.
// It is the common representation of [Plaintext] and [Ciphertext].
type Element struct {
	MetaData
	Value []ring.Poly
}

func newElement(ctx *Context, degree, level int) Element {
	count := ctx.ModuliCountAt(level)
	Value := make([]ring.Poly, degree+1)
	for i := range Value {
		Value[i] = ring.NewPoly(ctx.N(), count-1)
	}
	return Element{
		MetaData: MetaData{
			Scheme: ctx.Scheme(),
			Level:  level,
			Scale:  ctx.DefaultScale(),
		},
		Value: Value,
	}
}

// N returns the ring degree used by the target element.
func (el Element) N() int {
	return len(el.Value[0].Coeffs[0])
}

// Degree returns the degree of the target element.
func (el Element) Degree() int {
	return len(el.Value) - 1
}

// CopyNew creates a deep copy of the object and returns it.
func (el Element) CopyNew() *Element {
	Value := make([]ring.Poly, len(el.Value))
	for i := range Value {
		Value[i] = copyPolyNew(el.Value[i])
	}
	return &Element{MetaData: el.MetaData, Value: Value}
}

// Copy copies other on el. Both elements must have the same shape.
func (el *Element) Copy(other *Element) {
	if el != other {
		el.MetaData = other.MetaData
		for i := range other.Value {
			copyPoly(el.Value[i], other.Value[i])
		}
	}
}

// Equal performs a deep equal.
func (el Element) Equal(other *Element) bool {
	if !el.MetaData.Equal(&other.MetaData) || len(el.Value) != len(other.Value) {
		return false
	}
	for i := range el.Value {
		if !cmp.Equal([][]uint64(el.Value[i].Coeffs), [][]uint64(other.Value[i].Coeffs)) {
			return false
		}
	}
	return true
}

func copyPolyNew(p ring.Poly) ring.Poly {
	q := ring.NewPoly(len(p.Coeffs[0]), len(p.Coeffs)-1)
	copyPoly(q, p)
	return q
}

// copyPoly copies the common moduli of src on dst.
func copyPoly(dst, src ring.Poly) {
	for i := 0; i < len(dst.Coeffs) && i < len(src.Coeffs); i++ {
		copy(dst.Coeffs[i], src.Coeffs[i])
	}
}

func zeroPoly(p ring.Poly) {
	for i := range p.Coeffs {
		clear(p.Coeffs[i])
	}
}

// polysBinarySize returns the size in bytes of the coefficients of the polynomials.
func polysBinarySize(polys []ring.Poly) (size int) {
	for i := range polys {
		size += 8 * len(polys[i].Coeffs) * len(polys[i].Coeffs[0])
	}
	return
}

// appendPolys appends the coefficients of the polynomials, modulus by modulus, in little endian.
func appendPolys(data []byte, polys []ring.Poly) []byte {
	for i := range polys {
		for _, row := range polys[i].Coeffs {
			for _, c := range row {
				data = binary.LittleEndian.AppendUint64(data, c)
			}
		}
	}
	return data
}

// readPolys reads the coefficients written by appendPolys on polys and
// checks that every coefficient is reduced by its modulus.
func readPolys(r io.Reader, moduli []uint64, polys []ring.Poly) (n int64, err error) {
	for i := range polys {
		for j, row := range polys[i].Coeffs {
			buf := make([]byte, 8*len(row))
			inc, err := io.ReadFull(r, buf)
			n += int64(inc)
			if err != nil {
				return n, fmt.Errorf("%w: %w", ErrMalformed, err)
			}
			qj := moduli[j]
			for k := range row {
				if row[k] = binary.LittleEndian.Uint64(buf[8*k:]); row[k] >= qj {
					return n, fmt.Errorf("%w: coefficient %d of polynomial %d is not reduced modulo %d", ErrMalformed, k, i, qj)
				}
			}
		}
	}
	return
}
