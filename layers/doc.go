// Package layers provides concrete security layers for the comm runtime:
// stream ciphers, a MAC verifier, a signature layer, and replay protection.
// The constructions are teaching-scale; none of them should guard real
// traffic.
package layers
