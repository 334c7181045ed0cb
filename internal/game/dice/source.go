// Package dice provides the random sources threaded through a run.
package dice

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// Source is the random number contract used by room generation, spawning, AI and content rolls.
type Source interface {
	// Intn returns a value in [0, n). Panics if n <= 0.
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are cryptographically secure and uniformly
// distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is used to draw run seeds.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure value in [0, 1).
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// NewSeed draws a non-zero 32-bit seed from src.
func NewSeed(src Source) uint32 {
	for {
		if s := uint32(src.Intn(1 << 31)); s != 0 {
			return s
		}
	}
}
