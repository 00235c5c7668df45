package layers

import (
	"github.com/secwire/secwire/comm"
	"github.com/secwire/secwire/rng"
)

// XOR is a repeating-key XOR cipher layer. Encode and decode are the same
// operation, so the layer is stateless and trivially invertible.
type XOR struct {
	key []byte
}

// NewXOR creates a repeating-key XOR layer.
func NewXOR(key []byte) *XOR {
	return &XOR{key: key}
}

func (l *XOR) apply(msg comm.Message) (comm.Message, error) {
	if len(l.key) == 0 {
		return msg, nil
	}
	body := make([]byte, len(msg.Body))
	for i, b := range msg.Body {
		body[i] = b ^ l.key[i%len(l.key)]
	}
	msg.Body = body
	return msg, nil
}

// Encode XORs the body with the repeating key.
func (l *XOR) Encode(msg comm.Message) (comm.Message, error) { return l.apply(msg) }

// Decode XORs the body with the repeating key.
func (l *XOR) Decode(msg comm.Message) (comm.Message, error) { return l.apply(msg) }

// Stream is a keystream-driven XOR cipher layer. Both parties construct the
// layer with identically seeded keystreams; each direction consumes its own
// keystream, so one instance can both encode its outbound traffic and decode
// the peer's inbound traffic produced by a matching instance.
type Stream struct {
	enc rng.Keystream
	dec rng.Keystream
}

// NewStream creates a stream cipher layer. enc feeds Encode, dec feeds
// Decode; the decoder's keystream must mirror the remote encoder's.
func NewStream(enc, dec rng.Keystream) *Stream {
	return &Stream{enc: enc, dec: dec}
}

func xorKeystream(ks rng.Keystream, data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ ks.Next()
	}
	return out
}

// Encode XORs the body with the next bytes of the outbound keystream.
func (l *Stream) Encode(msg comm.Message) (comm.Message, error) {
	msg.Body = xorKeystream(l.enc, msg.Body)
	return msg, nil
}

// Decode XORs the body with the next bytes of the inbound keystream.
func (l *Stream) Decode(msg comm.Message) (comm.Message, error) {
	msg.Body = xorKeystream(l.dec, msg.Body)
	return msg, nil
}
