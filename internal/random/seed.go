// Package random provides seed generation for the per-session random
// sources handed to the turn resolver.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewSource returns a seeded PRNG along with the seed, so a match can be
// replayed from its log line. It falls back to seed 1 if crypto/rand fails.
func NewSource() (*rand.Rand, int64) {
	seed, err := NewSeed()
	if err != nil {
		seed = 1
	}
	return rand.New(rand.NewSource(seed)), seed
}
