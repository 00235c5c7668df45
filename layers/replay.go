package layers

import (
	"encoding/binary"
	"fmt"

	"github.com/secwire/secwire/comm"
)

// counterSize is the width of the anti-replay counter suffix.
const counterSize = 8

// AntiReplay appends a monotonically increasing counter to outbound bodies
// and rejects inbound counters at or below the last one seen.
//
// This only defeats replays if the underlying layers authenticate the
// counter; stack it above an HMAC or signature layer.
type AntiReplay struct {
	sent uint64
	seen uint64
}

// NewAntiReplay creates an anti-replay layer starting at counter zero.
func NewAntiReplay() *AntiReplay {
	return &AntiReplay{}
}

// Encode appends the next counter value to the body.
func (l *AntiReplay) Encode(msg comm.Message) (comm.Message, error) {
	l.sent++
	body := make([]byte, len(msg.Body)+counterSize)
	copy(body, msg.Body)
	binary.BigEndian.PutUint64(body[len(msg.Body):], l.sent)
	msg.Body = body
	return msg, nil
}

// Decode strips the counter, rejecting values already seen.
func (l *AntiReplay) Decode(msg comm.Message) (comm.Message, error) {
	if len(msg.Body) < counterSize {
		return comm.Message{}, fmt.Errorf("%w: body shorter than replay counter", comm.ErrTransform)
	}
	counter := binary.BigEndian.Uint64(msg.Body[len(msg.Body)-counterSize:])
	if counter <= l.seen {
		return comm.Message{}, fmt.Errorf("%w: replay detected (counter %d, last %d)",
			comm.ErrVerification, counter, l.seen)
	}
	l.seen = counter
	msg.Body = msg.Body[:len(msg.Body)-counterSize]
	return msg, nil
}
