package crypt

import (
	"bytes"
	"testing"
)

func TestRandomKeyLength(t *testing.T) {
	key := RandomKey(KeySize)
	if len(key) != KeySize {
		t.Errorf("Expected %d byte key, got %d", KeySize, len(key))
	}
}

func TestRandomKeyUnique(t *testing.T) {
	if bytes.Equal(RandomKey(16), RandomKey(16)) {
		t.Error("Expected distinct random keys")
	}
}

func TestDHSharedSecretAgreement(t *testing.T) {
	alicePriv := RandomKey(KeySize)
	bobPriv := RandomKey(KeySize)

	alicePub := DHExchange(alicePriv)
	bobPub := DHExchange(bobPriv)

	aliceSecret := DHSecret(alicePriv, bobPub)
	bobSecret := DHSecret(bobPriv, alicePub)

	if !bytes.Equal(aliceSecret, bobSecret) {
		t.Errorf("Expected matching shared secrets, got %x and %x", aliceSecret, bobSecret)
	}
	if len(aliceSecret) != KeySize {
		t.Errorf("Expected %d byte secret, got %d", KeySize, len(aliceSecret))
	}
}

func TestDHPublicKeyWidth(t *testing.T) {
	pub := DHExchange(RandomKey(KeySize))
	if len(pub) != KeySize {
		t.Errorf("Expected %d byte public key, got %d", KeySize, len(pub))
	}
}

func TestDHDegeneratePrivateKey(t *testing.T) {
	// All-zero private material still clamps to a usable exponent.
	pub := DHExchange(make([]byte, KeySize))
	secret := DHSecret(make([]byte, KeySize), pub)
	if len(secret) != KeySize {
		t.Errorf("Expected %d byte secret, got %d", KeySize, len(secret))
	}
}

func TestHMAC64(t *testing.T) {
	challenge := []byte("challenge")
	secret := []byte("secret")

	proof := HMAC64(challenge, secret)
	if len(proof) != KeySize {
		t.Errorf("Expected %d byte proof, got %d", KeySize, len(proof))
	}
	if !bytes.Equal(proof, HMAC64(challenge, secret)) {
		t.Error("Expected deterministic proof for identical inputs")
	}
	if bytes.Equal(proof, HMAC64(challenge, []byte("wrong"))) {
		t.Error("Expected different proof under a different secret")
	}
}

func TestSessionKey(t *testing.T) {
	secret := RandomKey(KeySize)
	key := SessionKey(secret)
	if len(key) != 32 {
		t.Errorf("Expected 32 byte session key, got %d", len(key))
	}
	if !bytes.Equal(key, SessionKey(secret)) {
		t.Error("Expected deterministic key derivation")
	}
}
