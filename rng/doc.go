// Package rng provides the keystream and entropy payloads consumed by
// stream-cipher layers: a linear congruential generator, an ANSI X9.17-style
// AES generator, and a mutex-guarded entropy pool with an optional background
// sampler. These are deliberately weak teaching constructions.
package rng
