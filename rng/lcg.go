package rng

import "encoding/binary"

// Knuth's MMIX multiplier and increment.
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// LCG is a linear congruential generator. Its output is trivially
// predictable from a handful of observed bytes, which is the point.
type LCG struct {
	state uint64
}

// NewLCG creates a generator seeded with the given state.
func NewLCG(seed uint64) *LCG {
	return &LCG{state: seed}
}

// Next returns the high byte of the next state, where most of the
// multiplier's mixing ends up.
func (g *LCG) Next() byte {
	g.state = g.state*lcgMultiplier + lcgIncrement
	return byte(g.state >> 56)
}

// Seed resets the state from up to eight big-endian seed bytes.
func (g *LCG) Seed(seed []byte) {
	var buf [8]byte
	n := min(len(seed), 8)
	copy(buf[8-n:], seed[:n])
	g.state = binary.BigEndian.Uint64(buf[:])
}
