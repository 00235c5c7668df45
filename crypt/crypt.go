// Package crypt provides the key-exchange helpers used by the simulation
// scenarios: a toy finite-field Diffie-Hellman group, challenge HMACs, and
// session-key derivation. The DH group is 32 bits wide on purpose; breaking
// it is one of the exercises.
package crypt

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"math/big"
)

// Toy DH group parameters. The modulus fits in 32 bits so exchanged keys
// stay 8 bytes.
var (
	dhP = big.NewInt(0xFFFFFFFB)
	dhG = big.NewInt(2)
)

// KeySize is the width of DH keys and challenge values.
const KeySize = 8

// RandomKey returns n cryptographically random bytes.
func RandomKey(n int) []byte {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return key
}

// clampPrivate reduces private key material into the usable exponent range.
func clampPrivate(key []byte) *big.Int {
	private := new(big.Int).SetBytes(key)
	private.And(private, big.NewInt(0x7FFFFFFF))
	if private.Cmp(big.NewInt(1)) <= 0 {
		private = big.NewInt(2)
	}
	return private
}

// pad8 left-pads (or truncates) a big int to KeySize bytes.
func pad8(v *big.Int) []byte {
	result := make([]byte, KeySize)
	b := v.Bytes()
	if len(b) <= KeySize {
		copy(result[KeySize-len(b):], b)
	} else {
		copy(result, b[len(b)-KeySize:])
	}
	return result
}

// DHExchange derives the public key g^private mod p for an 8-byte private
// key.
func DHExchange(private []byte) []byte {
	return pad8(new(big.Int).Exp(dhG, clampPrivate(private), dhP))
}

// DHSecret computes the shared secret public^private mod p.
func DHSecret(private, public []byte) []byte {
	pub := new(big.Int).SetBytes(public)
	return pad8(new(big.Int).Exp(pub, clampPrivate(private), dhP))
}

// HMAC64 returns the first 8 bytes of HMAC-SHA256(secret, challenge), the
// proof-of-possession sent back during a challenge/response handshake.
func HMAC64(challenge, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(challenge)
	return mac.Sum(nil)[:KeySize]
}

// SessionKey stretches a shared secret into a 32-byte cipher key.
func SessionKey(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	return sum[:]
}
