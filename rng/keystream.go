package rng

// Keystream produces an unbounded byte stream derived from a seed. Two
// identically seeded keystreams of the same construction produce identical
// streams, which is what lets both ends of a stream cipher stay in sync.
type Keystream interface {
	// Next returns the next keystream byte.
	Next() byte

	// Seed resets the generator state from the given seed material.
	Seed(seed []byte)
}

// Fill overwrites p with the next len(p) keystream bytes.
func Fill(ks Keystream, p []byte) {
	for i := range p {
		p[i] = ks.Next()
	}
}
