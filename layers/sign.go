package layers

import (
	"crypto/ed25519"
	"fmt"

	"github.com/secwire/secwire/comm"
)

// Ed25519 is a signature layer. Encode appends the sender's signature over
// the body; Decode verifies it against the peer's public key and strips it.
// A layer used only for verification may be constructed without the private
// key.
type Ed25519 struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// NewEd25519 creates a signature layer. private may be nil for a
// verify-only layer; public must be the key matching the remote signer.
func NewEd25519(private ed25519.PrivateKey, public ed25519.PublicKey) *Ed25519 {
	return &Ed25519{private: private, public: public}
}

// Encode signs the body and appends the signature.
func (l *Ed25519) Encode(msg comm.Message) (comm.Message, error) {
	if l.private == nil {
		return comm.Message{}, fmt.Errorf("%w: no signing key", comm.ErrTransform)
	}
	msg.Body = append(msg.Body, ed25519.Sign(l.private, msg.Body)...)
	return msg, nil
}

// Decode verifies and strips the signature.
func (l *Ed25519) Decode(msg comm.Message) (comm.Message, error) {
	if len(msg.Body) < ed25519.SignatureSize {
		return comm.Message{}, fmt.Errorf("%w: body shorter than signature", comm.ErrTransform)
	}
	body := msg.Body[:len(msg.Body)-ed25519.SignatureSize]
	sig := msg.Body[len(msg.Body)-ed25519.SignatureSize:]
	if !ed25519.Verify(l.public, body, sig) {
		return comm.Message{}, fmt.Errorf("%w: signature mismatch", comm.ErrVerification)
	}
	msg.Body = body
	return msg, nil
}
