package layers

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/secwire/secwire/comm"
	"github.com/secwire/secwire/rng"
)

func roundTrip(t *testing.T, enc, dec comm.Layer, body []byte) {
	t.Helper()
	msg := comm.Message{Sender: "alice", Recipient: "bob", Body: body}

	encoded, err := enc.Encode(msg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := dec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decoded.Body, body) {
		t.Errorf("Expected round-tripped body %q, got %q", body, decoded.Body)
	}
}

func TestXORRoundTrip(t *testing.T) {
	l := NewXOR([]byte("key"))
	roundTrip(t, l, l, []byte("a longer message than the key"))
}

func TestXORChangesBody(t *testing.T) {
	l := NewXOR([]byte("key"))
	msg, err := l.Encode(comm.Message{Body: []byte("secret")})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if bytes.Equal(msg.Body, []byte("secret")) {
		t.Error("Expected ciphertext to differ from plaintext")
	}
}

func TestStreamRoundTrip(t *testing.T) {
	// Alice encodes with stream A; bob decodes with an identically seeded
	// generator.
	alice := NewStream(rng.NewLCG(42), rng.NewLCG(7))
	bob := NewStream(rng.NewLCG(7), rng.NewLCG(42))

	roundTrip(t, alice, bob, []byte("first"))
	roundTrip(t, alice, bob, []byte("second, keystreams stay in sync"))
}

func TestChaCha20RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	alice, err := NewChaCha20(key)
	if err != nil {
		t.Fatalf("Failed to create layer: %v", err)
	}
	bob, err := NewChaCha20(key)
	if err != nil {
		t.Fatalf("Failed to create layer: %v", err)
	}
	roundTrip(t, alice, bob, []byte("nonce per message"))
}

func TestChaCha20FreshNonces(t *testing.T) {
	l, _ := NewChaCha20(bytes.Repeat([]byte{7}, 32))
	first, _ := l.Encode(comm.Message{Body: []byte("same plaintext")})
	second, _ := l.Encode(comm.Message{Body: []byte("same plaintext")})
	if bytes.Equal(first.Body, second.Body) {
		t.Error("Expected distinct ciphertexts for repeated plaintext")
	}
}

func TestChaCha20KeySize(t *testing.T) {
	if _, err := NewChaCha20([]byte("short")); !errors.Is(err, comm.ErrTransform) {
		t.Errorf("Expected ErrTransform for bad key size, got %v", err)
	}
}

func TestChaCha20ShortCiphertext(t *testing.T) {
	l, _ := NewChaCha20(bytes.Repeat([]byte{7}, 32))
	_, err := l.Decode(comm.Message{Body: []byte{1, 2, 3}})
	if !errors.Is(err, comm.ErrTransform) {
		t.Errorf("Expected ErrTransform for truncated ciphertext, got %v", err)
	}
}

func TestHMACRoundTrip(t *testing.T) {
	l := NewHMAC([]byte("shared"))
	roundTrip(t, l, l, []byte("authenticated"))
}

func TestHMACDetectsTampering(t *testing.T) {
	l := NewHMAC([]byte("shared"))
	msg, _ := l.Encode(comm.Message{Body: []byte("authentic")})
	msg.Body[0] ^= 0xFF

	if _, err := l.Decode(msg); !errors.Is(err, comm.ErrVerification) {
		t.Errorf("Expected ErrVerification for altered body, got %v", err)
	}
}

func TestHMACRejectsWrongKey(t *testing.T) {
	msg, _ := NewHMAC([]byte("one")).Encode(comm.Message{Body: []byte("data")})
	if _, err := NewHMAC([]byte("two")).Decode(msg); !errors.Is(err, comm.ErrVerification) {
		t.Errorf("Expected ErrVerification for wrong key, got %v", err)
	}
}

func TestHMACShortBody(t *testing.T) {
	l := NewHMAC([]byte("shared"))
	if _, err := l.Decode(comm.Message{Body: []byte{1}}); !errors.Is(err, comm.ErrTransform) {
		t.Errorf("Expected ErrTransform for body shorter than tag, got %v", err)
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	public, private, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	signer := NewEd25519(private, public)
	verifier := NewEd25519(nil, public)
	roundTrip(t, signer, verifier, []byte("signed"))
}

func TestEd25519DetectsTampering(t *testing.T) {
	public, private, _ := ed25519.GenerateKey(nil)
	l := NewEd25519(private, public)
	msg, _ := l.Encode(comm.Message{Body: []byte("authentic")})
	msg.Body[0] ^= 0xFF

	if _, err := l.Decode(msg); !errors.Is(err, comm.ErrVerification) {
		t.Errorf("Expected ErrVerification for altered body, got %v", err)
	}
}

func TestEd25519VerifyOnlyCannotSign(t *testing.T) {
	public, _, _ := ed25519.GenerateKey(nil)
	l := NewEd25519(nil, public)
	if _, err := l.Encode(comm.Message{Body: []byte("x")}); !errors.Is(err, comm.ErrTransform) {
		t.Errorf("Expected ErrTransform without signing key, got %v", err)
	}
}

func TestAntiReplayAcceptsFreshCounters(t *testing.T) {
	sender := NewAntiReplay()
	receiver := NewAntiReplay()
	roundTrip(t, sender, receiver, []byte("first"))
	roundTrip(t, sender, receiver, []byte("second"))
}

func TestAntiReplayRejectsReplay(t *testing.T) {
	sender := NewAntiReplay()
	receiver := NewAntiReplay()

	msg, _ := sender.Encode(comm.Message{Body: []byte("pay bob")})
	if _, err := receiver.Decode(msg.Copy()); err != nil {
		t.Fatalf("First delivery failed: %v", err)
	}
	if _, err := receiver.Decode(msg.Copy()); !errors.Is(err, comm.ErrVerification) {
		t.Errorf("Expected ErrVerification on replay, got %v", err)
	}
}

func TestAntiReplayRejectsStaleCounter(t *testing.T) {
	sender := NewAntiReplay()
	receiver := NewAntiReplay()

	first, _ := sender.Encode(comm.Message{Body: []byte("one")})
	second, _ := sender.Encode(comm.Message{Body: []byte("two")})

	if _, err := receiver.Decode(second); err != nil {
		t.Fatalf("Delivery failed: %v", err)
	}
	if _, err := receiver.Decode(first); !errors.Is(err, comm.ErrVerification) {
		t.Errorf("Expected ErrVerification for stale counter, got %v", err)
	}
}

func TestAntiReplayShortBody(t *testing.T) {
	l := NewAntiReplay()
	if _, err := l.Decode(comm.Message{Body: []byte{1}}); !errors.Is(err, comm.ErrTransform) {
		t.Errorf("Expected ErrTransform for body shorter than counter, got %v", err)
	}
}
