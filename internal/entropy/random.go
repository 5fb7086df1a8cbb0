// Package entropy provides the single seeded random stream shared by every
// simulation subsystem. Reseeding reproduces the identical sequence of draws,
// which is what makes a run replayable from its seed alone.
package entropy

import (
	"log/slog"
	"math/rand"
)

// Stream is a deterministic pseudo-random source with a draw counter.
// It is not safe for concurrent use; the simulation is single-threaded.
type Stream struct {
	seed  int64
	rng   *rand.Rand
	draws uint64
}

// NewStream creates a stream seeded with seed.
func NewStream(seed int64) *Stream {
	return &Stream{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Reseed restarts the stream from seed and zeroes the draw counter.
func (s *Stream) Reseed(seed int64) {
	s.seed = seed
	s.rng = rand.New(rand.NewSource(seed))
	s.draws = 0
	slog.Debug("entropy stream reseeded", "seed", seed)
}

// Seed returns the seed the stream was last (re)started from.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Draws returns how many values have been drawn since the last reseed.
func (s *Stream) Draws() uint64 {
	return s.draws
}

// Float returns a float64 in [0, 1).
func (s *Stream) Float() float64 {
	s.draws++
	return s.rng.Float64()
}

// Float32 returns a float32 in [0, 1).
func (s *Stream) Float32() float32 {
	s.draws++
	return s.rng.Float32()
}

// Chance draws once and reports whether the draw fell under p.
// p <= 0 never succeeds and p >= 1 always does, but the draw is consumed
// either way so the sequence stays aligned.
func (s *Stream) Chance(p float64) bool {
	return s.Float() < p
}

// Intn returns an int in [0, n). n <= 0 returns 0 without drawing.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.draws++
	return s.rng.Intn(n)
}

// IntRange returns an int uniformly drawn from [lo, hi] inclusive.
func (s *Stream) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.Intn(hi-lo+1)
}

// FloatRange returns a float64 uniformly drawn from [lo, hi).
func (s *Stream) FloatRange(lo, hi float64) float64 {
	return lo + s.Float()*(hi-lo)
}

// NormFloat64 returns a normally distributed float64 (mean 0, stddev 1).
func (s *Stream) NormFloat64() float64 {
	s.draws++
	return s.rng.NormFloat64()
}
