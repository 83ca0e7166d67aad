package entropy

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestSeeded(t *testing.T) {

	t.Run("Deterministic", func(t *testing.T) {
		a, err := NewSeeded([]byte("seed"))
		require.NoError(t, err)
		b, err := NewSeeded([]byte("seed"))
		require.NoError(t, err)

		bufA := make([]byte, 128)
		bufB := make([]byte, 128)
		_, err = io.ReadFull(a, bufA)
		require.NoError(t, err)
		_, err = io.ReadFull(b, bufB)
		require.NoError(t, err)
		require.Equal(t, bufA, bufB)
	})

	t.Run("DifferentKeys", func(t *testing.T) {
		a, err := NewSeeded([]byte("a"))
		require.NoError(t, err)
		b, err := NewSeeded([]byte("b"))
		require.NoError(t, err)

		bufA := make([]byte, 64)
		bufB := make([]byte, 64)
		_, _ = io.ReadFull(a, bufA)
		_, _ = io.ReadFull(b, bufB)
		require.False(t, bytes.Equal(bufA, bufB))
	})

	t.Run("Reset", func(t *testing.T) {
		s, err := NewSeeded([]byte("reset"))
		require.NoError(t, err)

		first := make([]byte, 48)
		_, _ = io.ReadFull(s, first)
		s.Reset()
		again := make([]byte, 48)
		_, _ = io.ReadFull(s, again)
		require.Equal(t, first, again)
		require.Equal(t, []byte("reset"), s.Key())
	})

	t.Run("KeyTooLong", func(t *testing.T) {
		_, err := NewSeeded(make([]byte, 65))
		require.Error(t, err)
	})
}

func TestReadSeed(t *testing.T) {

	t.Run("System", func(t *testing.T) {
		seed, err := ReadSeed(System())
		require.NoError(t, err)
		require.Len(t, seed, SeedSize)
	})

	t.Run("Failing", func(t *testing.T) {
		_, err := ReadSeed(iotest.ErrReader(errors.New("drained")))
		require.ErrorIs(t, err, ErrInsufficientEntropy)
	})

	t.Run("Short", func(t *testing.T) {
		_, err := ReadSeed(bytes.NewReader(make([]byte, SeedSize-1)))
		require.ErrorIs(t, err, ErrInsufficientEntropy)
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := ReadSeed(nil)
		require.ErrorIs(t, err, ErrInsufficientEntropy)
	})
}

func TestNewPRNG(t *testing.T) {
	src, err := NewSeeded([]byte("prng"))
	require.NoError(t, err)

	p0, err := NewPRNG(src)
	require.NoError(t, err)
	p1, err := NewPRNG(src)
	require.NoError(t, err)

	b0 := make([]byte, 32)
	b1 := make([]byte, 32)
	_, _ = p0.Read(b0)
	_, _ = p1.Read(b1)
	require.NotEqual(t, b0, b1, "consecutive seeds must differ")

	_, err = NewPRNG(iotest.ErrReader(io.ErrUnexpectedEOF))
	require.ErrorIs(t, err, ErrInsufficientEntropy)
}
