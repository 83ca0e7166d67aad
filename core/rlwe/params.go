package rlwe

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"math/bits"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/zeebo/blake3"
)

// Scheme identifies the encoding and arithmetic semantics of a [ParameterSet].
type Scheme uint8

const (
	// Exact is the BFV-style scheme over integers modulo a plaintext modulus T.
	Exact = Scheme(iota + 1)
	// Approximate is the CKKS-style scheme over fixed-point reals at a scale.
	Approximate
)

func (s Scheme) String() string {
	switch s {
	case Exact:
		return "Exact"
	case Approximate:
		return "Approximate"
	default:
		return fmt.Sprintf("Scheme(%d)", uint8(s))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (s Scheme) MarshalText() ([]byte, error) {
	switch s {
	case Exact, Approximate:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("cannot MarshalText: invalid scheme %d", uint8(s))
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *Scheme) UnmarshalText(p []byte) error {
	switch string(p) {
	case "Exact", "exact", "BFV", "bfv":
		*s = Exact
	case "Approximate", "approximate", "CKKS", "ckks":
		*s = Approximate
	default:
		return fmt.Errorf("cannot UnmarshalText: unknown scheme %q", p)
	}
	return nil
}

const (
	// MaxModuliSize is the largest bit-size of a modulus of the chain.
	MaxModuliSize = 60
	// MinLogN is the log2 of the smallest supported ring degree.
	MinLogN = 10
	// MaxLogN is the log2 of the largest supported ring degree.
	MaxLogN = 15
	// MaxModuliCount is the largest number of moduli in the chain.
	MaxModuliCount = 62
)

// maxLogQ is the largest total bit-size of the modulus chain that keeps
// 128 bits of classical security for a ternary secret, per ring degree.
var maxLogQ = map[int]int{
	1024:  27,
	2048:  54,
	4096:  109,
	8192:  218,
	16384: 438,
	32768: 881,
}

// MaxLogQ returns the largest total bit-size of the modulus chain allowed for
// the ring degree N, and false if N is not a supported degree.
func MaxLogQ(N int) (int, bool) {
	v, ok := maxLogQ[N]
	return v, ok
}

// ParametersLiteral is a literal representation of a [ParameterSet].
// It has public fields and is used to express unchecked user-defined
// parameters literally into Go programs or JSON files.
//
// The modulus chain can be given either explicitly through Q, or through
// the bit-sizes LogQ of NTT-friendly primes to generate. Q takes precedence.
type ParametersLiteral struct {
	Scheme Scheme
	LogN   int
	Q      []uint64 `json:",omitempty"`
	LogQ   []int    `json:",omitempty"`
	T      uint64   `json:",omitempty"`
}

// ParameterSet is an immutable description of the ring degree, modulus chain
// and plaintext modulus shared by a client and a server.
// A ParameterSet can be built without validation; [ParameterSet.Validate]
// or [NewContext] tell whether it can be used.
type ParameterSet struct {
	scheme Scheme
	n      int
	q      []uint64
	t      uint64
}

// NewParameterSet returns a new [ParameterSet] from the given values.
// The inputs are copied and no validation is performed.
func NewParameterSet(scheme Scheme, N int, Q []uint64, T uint64) ParameterSet {
	return ParameterSet{
		scheme: scheme,
		n:      N,
		q:      slices.Clone(Q),
		t:      T,
	}
}

// NewParametersFromLiteral instantiates a [ParameterSet] from a [ParametersLiteral],
// generating the modulus chain from LogQ if Q is empty, and validates it.
func NewParametersFromLiteral(pl ParametersLiteral) (params ParameterSet, err error) {

	if pl.LogN < MinLogN || pl.LogN > MaxLogN {
		return ParameterSet{}, fmt.Errorf("cannot NewParametersFromLiteral: %w: LogN=%d is not in [%d, %d]", ErrInvalidParameters, pl.LogN, MinLogN, MaxLogN)
	}

	q := pl.Q

	switch {
	case len(q) != 0 && len(pl.LogQ) != 0:
		return ParameterSet{}, fmt.Errorf("cannot NewParametersFromLiteral: %w: both Q and LogQ are set", ErrInvalidParameters)
	case len(q) == 0:
		if q, err = GenModuli(pl.LogN+1, pl.LogQ); err != nil {
			return ParameterSet{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
		}
	}

	params = NewParameterSet(pl.Scheme, 1<<pl.LogN, q, pl.T)

	if err = params.Validate(); err != nil {
		return ParameterSet{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
	}

	return
}

// GenModuli generates a chain of NTT-friendly primes for the 2^LogNthRoot-th
// roots of unity, one per entry of logQ, each of exactly the requested bit-size.
func GenModuli(LogNthRoot int, logQ []int) (q []uint64, err error) {

	if len(logQ) == 0 {
		return nil, fmt.Errorf("cannot GenModuli: %w: empty modulus chain", ErrInvalidParameters)
	}

	if len(logQ) > MaxModuliCount {
		return nil, fmt.Errorf("cannot GenModuli: %w: #Q=%d is larger than %d", ErrInvalidParameters, len(logQ), MaxModuliCount)
	}

	// Extracts all the different primes bit size and maps their number
	primesbitlen := make(map[int]int)
	for _, qi := range logQ {
		if qi < LogNthRoot+2 || qi > MaxModuliSize {
			return nil, fmt.Errorf("cannot GenModuli: %w: LogQi=%d is not in [%d, %d]", ErrInvalidParameters, qi, LogNthRoot+2, MaxModuliSize)
		}
		primesbitlen[qi]++
	}

	// For each bit-size, finds that many primes below 2^bitsize
	primes := make(map[int][]uint64)
	for bitsize, value := range primesbitlen {
		g := ring.NewNTTFriendlyPrimesGenerator(uint64(bitsize), uint64(1)<<LogNthRoot)
		if primes[bitsize], err = g.NextDownstreamPrimes(value); err != nil {
			return nil, fmt.Errorf("cannot GenModuli: %w: failed to generate %d primes of bit-size=%d for LogNthRoot=%d: %w", ErrInvalidParameters, value, bitsize, LogNthRoot, err)
		}
	}

	// Assigns the primes to the moduli chain
	for _, qi := range logQ {
		q = append(q, primes[qi][0])
		primes[qi] = primes[qi][1:]
	}

	return
}

// Scheme returns the scheme of the parameters.
func (p ParameterSet) Scheme() Scheme {
	return p.scheme
}

// N returns the ring degree.
func (p ParameterSet) N() int {
	return p.n
}

// LogN returns the log2 of the ring degree.
func (p ParameterSet) LogN() int {
	return Log2(p.n)
}

// Q returns a copy of the modulus chain.
func (p ParameterSet) Q() []uint64 {
	return slices.Clone(p.q)
}

// QCount returns the number of moduli in the chain.
func (p ParameterSet) QCount() int {
	return len(p.q)
}

// T returns the plaintext modulus (zero for [Approximate]).
func (p ParameterSet) T() uint64 {
	return p.t
}

// MaxLevel returns the deepest level of the chain, at which only q_0 remains.
func (p ParameterSet) MaxLevel() int {
	return len(p.q) - 1
}

// LogQ returns the sum of the log2 of the moduli.
func (p ParameterSet) LogQ() (logq float64) {
	for _, qi := range p.q {
		logq += math.Log2(float64(qi))
	}
	return
}

// BitLenQ returns the sum of the bit-lengths of the moduli.
func (p ParameterSet) BitLenQ() (n int) {
	for _, qi := range p.q {
		n += bits.Len64(qi)
	}
	return
}

// Validate checks the parameters and returns an error wrapping
// [ErrInvalidParameters] with the first violated constraint.
func (p ParameterSet) Validate() error {

	maxLogQ, ok := MaxLogQ(p.n)
	if !ok {
		return fmt.Errorf("%w: N=%d is not a supported ring degree", ErrInvalidParameters, p.n)
	}

	if len(p.q) == 0 {
		return fmt.Errorf("%w: empty modulus chain", ErrInvalidParameters)
	}

	if len(p.q) > MaxModuliCount {
		return fmt.Errorf("%w: #Q=%d is larger than %d", ErrInvalidParameters, len(p.q), MaxModuliCount)
	}

	nthRoot := 2 * uint64(p.n)
	seen := make(map[uint64]struct{}, len(p.q))
	for i, qi := range p.q {

		if bits.Len64(qi) > MaxModuliSize {
			return fmt.Errorf("%w: Q[%d]=%d has more than %d bits", ErrInvalidParameters, i, qi, MaxModuliSize)
		}

		if !ring.IsPrime(qi) {
			return fmt.Errorf("%w: Q[%d]=%d is not prime", ErrInvalidParameters, i, qi)
		}

		if qi%nthRoot != 1 {
			return fmt.Errorf("%w: Q[%d]=%d is not 1 mod 2N", ErrInvalidParameters, i, qi)
		}

		if _, dup := seen[qi]; dup {
			return fmt.Errorf("%w: Q[%d]=%d appears more than once", ErrInvalidParameters, i, qi)
		}
		seen[qi] = struct{}{}
	}

	if logQ := p.BitLenQ(); logQ > maxLogQ {
		return fmt.Errorf("%w: log2(Q)=%d exceeds %d for N=%d", ErrInvalidParameters, logQ, maxLogQ, p.n)
	}

	switch p.scheme {
	case Exact:
		if p.t < 2 {
			return fmt.Errorf("%w: T=%d must be larger than 1", ErrInvalidParameters, p.t)
		}
		for i, qi := range p.q {
			if p.t >= qi {
				return fmt.Errorf("%w: T=%d must be smaller than Q[%d]=%d", ErrInvalidParameters, p.t, i, qi)
			}
			if gcd(p.t, qi) != 1 {
				return fmt.Errorf("%w: T=%d is not coprime with Q[%d]=%d", ErrInvalidParameters, p.t, i, qi)
			}
		}
	case Approximate:
		if p.t != 0 {
			return fmt.Errorf("%w: T=%d must be zero for the %s scheme", ErrInvalidParameters, p.t, p.scheme)
		}
	default:
		return fmt.Errorf("%w: unknown scheme %d", ErrInvalidParameters, uint8(p.scheme))
	}

	return nil
}

// IsValid returns true if [ParameterSet.Validate] returns nil.
func (p ParameterSet) IsValid() bool {
	return p.Validate() == nil
}

// Literal returns the [ParametersLiteral] of the target parameters.
func (p ParameterSet) Literal() ParametersLiteral {
	return ParametersLiteral{
		Scheme: p.scheme,
		LogN:   p.LogN(),
		Q:      p.Q(),
		T:      p.t,
	}
}

// Equal returns true if the two parameter sets are identical.
func (p ParameterSet) Equal(other ParameterSet) bool {
	return p.n == other.n && cmp.Equal(p.Literal(), other.Literal(), cmpopts.EquateEmpty())
}

// Digest returns a short fingerprint of the parameters, stamped on
// serialized ciphertexts to detect parameter mismatches.
func (p ParameterSet) Digest() (d [8]byte) {
	data, err := p.MarshalBinary()
	if err != nil {
		// Sanity check, MarshalBinary cannot fail on a ParameterSet.
		panic(err)
	}
	h := blake3.New()
	if _, err = h.Write(data); err != nil {
		// Sanity check, hashes never return write errors.
		panic(err)
	}
	copy(d[:], h.Sum(nil))
	return
}

const (
	paramsMagic   = "LHPS"
	paramsVersion = 1
)

// BinarySize returns the size in bytes that the object once marshalled into a binary form.
func (p ParameterSet) BinarySize() int {
	return len(paramsMagic) + 4 + 8*len(p.q) + 8
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
// The layout is: magic, version, scheme, logN, #moduli, moduli, T, integers in little endian.
func (p ParameterSet) MarshalBinary() (data []byte, err error) {
	data = make([]byte, 0, p.BinarySize())
	data = append(data, paramsMagic...)
	data = append(data, paramsVersion, uint8(p.scheme), uint8(p.LogN()), uint8(len(p.q)))
	for _, qi := range p.q {
		data = binary.LittleEndian.AppendUint64(data, qi)
	}
	data = binary.LittleEndian.AppendUint64(data, p.t)
	return
}

// UnmarshalBinary decodes a slice of bytes generated by
// [ParameterSet.MarshalBinary] or [ParameterSet.WriteTo] on the object.
// The decoded parameters are not validated.
func (p *ParameterSet) UnmarshalBinary(data []byte) (err error) {

	head := len(paramsMagic) + 4

	if len(data) < head {
		return fmt.Errorf("cannot UnmarshalBinary: %w: %d bytes is too short", ErrMalformed, len(data))
	}

	if string(data[:len(paramsMagic)]) != paramsMagic {
		return fmt.Errorf("cannot UnmarshalBinary: %w: invalid magic", ErrMalformed)
	}

	data = data[len(paramsMagic):]

	if data[0] != paramsVersion {
		return fmt.Errorf("cannot UnmarshalBinary: %w: unsupported version %d", ErrMalformed, data[0])
	}

	scheme, logN, count := Scheme(data[1]), int(data[2]), int(data[3])

	if logN > 62 {
		return fmt.Errorf("cannot UnmarshalBinary: %w: LogN=%d", ErrMalformed, logN)
	}

	data = data[4:]

	if len(data) != 8*count+8 {
		return fmt.Errorf("cannot UnmarshalBinary: %w: expected %d bytes of moduli but got %d", ErrMalformed, 8*count+8, len(data))
	}

	q := make([]uint64, count)
	for i := range q {
		q[i] = binary.LittleEndian.Uint64(data[8*i:])
	}

	*p = ParameterSet{
		scheme: scheme,
		n:      1 << logN,
		q:      q,
		t:      binary.LittleEndian.Uint64(data[8*count:]),
	}

	return nil
}

// WriteTo writes the object on an [io.Writer]. It implements the [io.WriterTo]
// interface, and will write exactly object.BinarySize() bytes on w.
func (p ParameterSet) WriteTo(w io.Writer) (int64, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom reads on the object from an [io.Reader]. It implements the
// [io.ReaderFrom] interface.
func (p *ParameterSet) ReadFrom(r io.Reader) (n int64, err error) {

	head := make([]byte, len(paramsMagic)+4)
	var inc int
	if inc, err = io.ReadFull(r, head); err != nil {
		return int64(inc), fmt.Errorf("cannot ReadFrom: %w: %w", ErrMalformed, err)
	}
	n += int64(inc)

	body := make([]byte, 8*int(head[len(head)-1])+8)
	if inc, err = io.ReadFull(r, body); err != nil {
		return n + int64(inc), fmt.Errorf("cannot ReadFrom: %w: %w", ErrMalformed, err)
	}
	n += int64(inc)

	return n, p.UnmarshalBinary(append(head, body...))
}

// MarshalJSON returns a JSON representation of the parameters through their literal.
func (p ParameterSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Literal())
}

// UnmarshalJSON reads a JSON representation of a [ParametersLiteral] and
// instantiates the validated parameters.
func (p *ParameterSet) UnmarshalJSON(data []byte) (err error) {
	var pl ParametersLiteral
	if err = json.Unmarshal(data, &pl); err != nil {
		return
	}
	*p, err = NewParametersFromLiteral(pl)
	return
}

// bigQ returns the product of the moduli.
func bigQ(q []uint64) *big.Int {
	Q := big.NewInt(1)
	for _, qi := range q {
		Q.Mul(Q, new(big.Int).SetUint64(qi))
	}
	return Q
}
