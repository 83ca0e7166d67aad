// Package entropy implements the randomness capability injected into key generation
// and encryption: a system source, a deterministic keyed source for tests and
// reproducible runs, and the derivation of per-call PRNG seeds.
package entropy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tuneinsight/lattigo/v6/utils/sampling"
	"golang.org/x/crypto/blake2b"
)

// SeedSize is the number of bytes drawn from a [Source] for every randomized operation.
const SeedSize = 32

// ErrInsufficientEntropy is returned when a [Source] cannot deliver a full seed.
var ErrInsufficientEntropy = errors.New("insufficient entropy")

// Source is a provider of random bytes.
// Implementations used with key generation must be cryptographically secure.
type Source interface {
	io.Reader
}

type systemSource struct{}

func (systemSource) Read(p []byte) (int, error) {
	return rand.Read(p)
}

// System returns the operating system's cryptographically secure [Source].
func System() Source {
	return systemSource{}
}

// Seeded is a deterministic [Source] expanding a key with blake2b in XOF mode.
// Two Seeded sources built from the same key produce the same stream.
// It is safe for concurrent use, but the interleaving of concurrent readers
// is not deterministic.
type Seeded struct {
	mu  sync.Mutex
	key []byte
	xof blake2b.XOF
}

// NewSeeded returns a [Seeded] source keyed with key (at most 64 bytes).
func NewSeeded(key []byte) (*Seeded, error) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, fmt.Errorf("cannot NewSeeded: %w", err)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Seeded{key: k, xof: xof}, nil
}

// Read fills p with the next bytes of the stream.
func (s *Seeded) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xof.Read(p)
}

// Reset rewinds the stream to its beginning.
func (s *Seeded) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xof.Reset()
}

// Key returns a copy of the key of the source.
func (s *Seeded) Key() []byte {
	k := make([]byte, len(s.key))
	copy(k, s.key)
	return k
}

// ReadSeed draws exactly [SeedSize] bytes from src.
// Any short read or read error is reported as [ErrInsufficientEntropy].
func ReadSeed(src Source) ([]byte, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInsufficientEntropy)
	}
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(src, seed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientEntropy, err)
	}
	return seed, nil
}

// NewPRNG draws a fresh seed from src and expands it into a keyed PRNG
// for the ring samplers. Once seeded, the PRNG cannot fail.
func NewPRNG(src Source) (sampling.PRNG, error) {
	seed, err := ReadSeed(src)
	if err != nil {
		return nil, err
	}
	prng, err := sampling.NewKeyedPRNG(seed)
	if err != nil {
		// Sanity check, a 32-byte key is always accepted by blake2b.
		panic(err)
	}
	return prng, nil
}
