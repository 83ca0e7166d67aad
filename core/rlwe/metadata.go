package rlwe

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MetaData is a struct storing the metadata shared by plaintexts and ciphertexts.
type MetaData struct {
	// Scheme is the scheme under which the element was produced.
	Scheme Scheme

	// Level is the position in the modulus chain: 0 holds all the moduli,
	// and each rescale or modulus switch increments it by one.
	Level int

	// Scale is the scaling factor of the message (1 for [Exact]).
	Scale float64

	// IsNTT is a flag indicating if the polynomials are in the NTT domain.
	IsNTT bool

	// NoiseBound is a worst-case bound on the infinity norm of the error.
	NoiseBound float64

	// MessageBound is a worst-case bound on the infinity norm of the scaled message.
	MessageBound float64

	// PlainNorm is the L1 norm of the centered plaintext coefficients.
	// It is only set on plaintexts and drives the noise growth of plaintext products.
	PlainNorm float64
}

// CopyNew returns a copy of the target.
func (m MetaData) CopyNew() *MetaData {
	return &m
}

// Equal returns true if two MetaData structs are identical.
func (m *MetaData) Equal(other *MetaData) bool {
	return *m == *other
}

// LogScale returns log2(scale).
func (m MetaData) LogScale() float64 {
	return math.Log2(m.Scale)
}

// metaDataSize is the size in bytes of a marshalled [MetaData].
const metaDataSize = 3 + 4*8

// appendBinary appends the binary form of the metadata to p:
// scheme, level, NTT flag, then scale and bounds as float64 in little endian.
func (m MetaData) appendBinary(p []byte) ([]byte, error) {

	if m.Level < 0 || m.Level > math.MaxUint8 {
		return nil, fmt.Errorf("level %d does not fit in a byte", m.Level)
	}

	var isNTT uint8
	if m.IsNTT {
		isNTT = 1
	}

	p = append(p, uint8(m.Scheme), uint8(m.Level), isNTT)
	p = binary.LittleEndian.AppendUint64(p, math.Float64bits(m.Scale))
	p = binary.LittleEndian.AppendUint64(p, math.Float64bits(m.NoiseBound))
	p = binary.LittleEndian.AppendUint64(p, math.Float64bits(m.MessageBound))
	p = binary.LittleEndian.AppendUint64(p, math.Float64bits(m.PlainNorm))
	return p, nil
}

// decodeBinary decodes metaDataSize bytes written by appendBinary.
func (m *MetaData) decodeBinary(p []byte) (err error) {

	if len(p) != metaDataSize {
		return fmt.Errorf("%w: invalid metadata size %d", ErrMalformed, len(p))
	}

	if p[2] > 1 {
		return fmt.Errorf("%w: invalid NTT flag %d", ErrMalformed, p[2])
	}

	m.Scheme = Scheme(p[0])
	m.Level = int(p[1])
	m.IsNTT = p[2] == 1
	m.Scale = math.Float64frombits(binary.LittleEndian.Uint64(p[3:]))
	m.NoiseBound = math.Float64frombits(binary.LittleEndian.Uint64(p[11:]))
	m.MessageBound = math.Float64frombits(binary.LittleEndian.Uint64(p[19:]))
	m.PlainNorm = math.Float64frombits(binary.LittleEndian.Uint64(p[27:]))

	if !(m.Scale > 0) || math.IsInf(m.Scale, 0) {
		return fmt.Errorf("%w: invalid scale %v", ErrMalformed, m.Scale)
	}

	for _, b := range []float64{m.NoiseBound, m.MessageBound, m.PlainNorm} {
		if math.IsNaN(b) || b < 0 {
			return fmt.Errorf("%w: invalid bound %v", ErrMalformed, b)
		}
	}

	return nil
}
