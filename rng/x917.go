package rng

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// ANSIX917 is an ANSI X9.17-style generator built on AES-128 instead of the
// original 3DES. Each block mixes a timestamp with the running state vector:
//
//	T = E(now)
//	output = E(T xor V)
//	V = E(T xor output)
type ANSIX917 struct {
	block  cipher.Block
	vector [aes.BlockSize]byte
	buf    []byte

	// now is swappable so tests can make the stream deterministic.
	now func() int64
}

// NewANSIX917 creates a generator from arbitrary seed material. The AES key
// and the initial vector are both derived from the seed.
func NewANSIX917(seed []byte) *ANSIX917 {
	g := &ANSIX917{now: func() int64 { return time.Now().UnixNano() }}
	g.Seed(seed)
	return g
}

// Seed re-derives the AES key and state vector from the seed material.
func (g *ANSIX917) Seed(seed []byte) {
	sum := sha256.Sum256(seed)
	block, err := aes.NewCipher(sum[:aes.BlockSize])
	if err != nil {
		// aes.NewCipher only fails on bad key sizes; ours is fixed.
		panic(err)
	}
	g.block = block
	copy(g.vector[:], sum[aes.BlockSize:])
	g.buf = g.buf[:0]
}

// Next returns the next keystream byte, generating a fresh block on demand.
func (g *ANSIX917) Next() byte {
	if len(g.buf) == 0 {
		g.buf = g.generate()
	}
	b := g.buf[0]
	g.buf = g.buf[1:]
	return b
}

func (g *ANSIX917) generate() []byte {
	var stamp, t, out [aes.BlockSize]byte
	binary.BigEndian.PutUint64(stamp[:8], uint64(g.now()))
	g.block.Encrypt(t[:], stamp[:])

	for i := range t {
		out[i] = t[i] ^ g.vector[i]
	}
	g.block.Encrypt(out[:], out[:])

	for i := range t {
		g.vector[i] = t[i] ^ out[i]
	}
	g.block.Encrypt(g.vector[:], g.vector[:])

	return out[:]
}
