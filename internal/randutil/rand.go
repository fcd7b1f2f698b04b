// Package randutil centralises how seeded random sources are built so that
// tables, decks and personas replay identically for a given seed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand derived deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Seed returns a seed for production use when none was configured.
func Seed() int64 {
	return time.Now().UnixNano()
}

// Child derives an independent generator from parent, for handing one
// source to each table or agent without sharing state between goroutines.
func Child(parent *rand.Rand) *rand.Rand {
	return New(parent.Int64())
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
