// Package random provides the randomness source used to pick among random exits.
//
// The engine only needs a uniform index draw, so the interface is a single method
// that tests can pin to a fixed answer.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source draws a uniform index in [0, n). n is always positive.
type Source interface {
	Index(n int) int
}

// Locked is a PCG generator guarded by a mutex. Safe for concurrent use.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Locked source seeded from crypto/rand.
func New() (*Locked, error) {
	hi, err := NewSeed()
	if err != nil {
		return nil, err
	}
	lo, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeeded(hi, lo), nil
}

// NewSeeded creates a Locked source with an explicit seed (reproducible runs).
func NewSeeded(hi, lo uint64) *Locked {
	return &Locked{rng: rand.New(rand.NewPCG(hi, lo))}
}

// Index implements Source.
func (l *Locked) Index(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Fixed always answers the same index, clamped into [0, n).
type Fixed int

// Index implements Source.
func (f Fixed) Index(n int) int {
	k := int(f)
	if k < 0 {
		return 0
	}
	if k >= n {
		return n - 1
	}
	return k
}
