package randutil

import (
	crand "crypto/rand"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Tests and simulations use it so that every shuffle can be replayed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSecure returns a *rand.Rand backed by ChaCha8 with a seed read from
// crypto/rand. Production shuffles use this source.
func NewSecure() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("randutil: crypto/rand unavailable: " + err.Error())
	}
	return rand.New(rand.NewChaCha8(seed))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
