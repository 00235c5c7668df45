package layers

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"github.com/secwire/secwire/comm"
)

// TagSize is the length of the HMAC-SHA256 tag appended to message bodies.
const TagSize = sha256.Size

// HMAC is an authentication layer. Encode appends an HMAC-SHA256 tag over
// the body; Decode verifies and strips it. Placed below a cipher layer in a
// stack it authenticates the ciphertext (encrypt-then-MAC).
type HMAC struct {
	key []byte
}

// NewHMAC creates an HMAC layer with the given shared key.
func NewHMAC(key []byte) *HMAC {
	k := make([]byte, len(key))
	copy(k, key)
	return &HMAC{key: k}
}

func (l *HMAC) tag(data []byte) []byte {
	mac := hmac.New(sha256.New, l.key)
	mac.Write(data)
	return mac.Sum(nil)
}

// Encode appends the authentication tag to the body.
func (l *HMAC) Encode(msg comm.Message) (comm.Message, error) {
	msg.Body = append(msg.Body, l.tag(msg.Body)...)
	return msg, nil
}

// Decode verifies and strips the authentication tag.
func (l *HMAC) Decode(msg comm.Message) (comm.Message, error) {
	if len(msg.Body) < TagSize {
		return comm.Message{}, fmt.Errorf("%w: body shorter than MAC tag", comm.ErrTransform)
	}
	body := msg.Body[:len(msg.Body)-TagSize]
	tag := msg.Body[len(msg.Body)-TagSize:]
	if !hmac.Equal(tag, l.tag(body)) {
		return comm.Message{}, fmt.Errorf("%w: MAC mismatch", comm.ErrVerification)
	}
	msg.Body = body
	return msg, nil
}
