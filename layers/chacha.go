package layers

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20"

	"github.com/secwire/secwire/comm"
)

// ChaCha20 is a stream cipher layer. Each message is encrypted under a fresh
// random nonce, which is prepended to the ciphertext so the layer stays
// stateless across messages.
type ChaCha20 struct {
	key []byte
}

// NewChaCha20 creates a ChaCha20 layer. The key must be
// chacha20.KeySize (32) bytes.
func NewChaCha20(key []byte) (*ChaCha20, error) {
	if len(key) != chacha20.KeySize {
		return nil, fmt.Errorf("%w: chacha20 key must be %d bytes, got %d",
			comm.ErrTransform, chacha20.KeySize, len(key))
	}
	k := make([]byte, chacha20.KeySize)
	copy(k, key)
	return &ChaCha20{key: k}, nil
}

// Encode encrypts the body and prepends the nonce.
func (l *ChaCha20) Encode(msg comm.Message) (comm.Message, error) {
	nonce := make([]byte, chacha20.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return comm.Message{}, fmt.Errorf("%w: %v", comm.ErrTransform, err)
	}
	cipher, err := chacha20.NewUnauthenticatedCipher(l.key, nonce)
	if err != nil {
		return comm.Message{}, fmt.Errorf("%w: %v", comm.ErrTransform, err)
	}
	body := make([]byte, len(nonce)+len(msg.Body))
	copy(body, nonce)
	cipher.XORKeyStream(body[len(nonce):], msg.Body)
	msg.Body = body
	return msg, nil
}

// Decode splits off the nonce and decrypts the remainder.
func (l *ChaCha20) Decode(msg comm.Message) (comm.Message, error) {
	if len(msg.Body) < chacha20.NonceSize {
		return comm.Message{}, fmt.Errorf("%w: ciphertext shorter than nonce", comm.ErrTransform)
	}
	nonce := msg.Body[:chacha20.NonceSize]
	cipher, err := chacha20.NewUnauthenticatedCipher(l.key, nonce)
	if err != nil {
		return comm.Message{}, fmt.Errorf("%w: %v", comm.ErrTransform, err)
	}
	body := make([]byte, len(msg.Body)-chacha20.NonceSize)
	cipher.XORKeyStream(body, msg.Body[chacha20.NonceSize:])
	msg.Body = body
	return msg, nil
}
