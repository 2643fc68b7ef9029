// Package dice provides the uniform randomness abstraction used for spawn
// placement, spawn type selection and pickup drop weighting.
package dice

import (
	cryptorand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// Source is the randomness provider for the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// seededSource implements Source over a math/rand/v2 generator.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source: two sources created with
// the same seed produce the same sequence.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSource returns a Source whose ChaCha8 state is seeded from
// crypto/rand, so no two runs share a sequence.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewRandomSource() Source {
	var seed [32]byte
	// crypto/rand.Read never returns an error.
	_, _ = cryptorand.Read(seed[:])
	return &seededSource{rng: rand.New(rand.NewChaCha8(seed))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Between returns a uniform int in the closed range [lo, hi].
//
// Precondition: src non-nil; lo <= hi.
func Between(src Source, lo, hi int) int {
	return lo + src.Intn(hi-lo+1)
}

// Percent returns a uniform int in [0, 100).
func Percent(src Source) int {
	return src.Intn(100)
}
