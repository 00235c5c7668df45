package comm

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Message is the envelope exchanged between actors over a medium. The body is
// always held as canonical bytes; structured values are serialized with the
// bytes-aware JSON convention (see EncodeBody).
type Message struct {
	// Sender is the name of the originating actor.
	Sender string

	// Recipient is the name of the intended receiver. The medium uses it
	// as the routing token for recipient-filtered reads.
	Recipient string

	// Body is the canonical byte representation of the payload.
	Body []byte
}

// NewMessage builds a message, canonicalizing body via EncodeBody.
func NewMessage(sender, recipient string, body any) Message {
	return Message{Sender: sender, Recipient: recipient, Body: EncodeBody(body)}
}

// IsEmpty reports whether the message is the empty sentinel. An empty message
// is the universal not-found/timeout result; operations never return nil.
func (m Message) IsEmpty() bool {
	return m.Sender == "" && m.Recipient == "" && len(m.Body) == 0
}

// Copy returns a message with its own copy of the body bytes.
func (m Message) Copy() Message {
	body := make([]byte, len(m.Body))
	copy(body, m.Body)
	return Message{Sender: m.Sender, Recipient: m.Recipient, Body: body}
}

// WithBody returns a copy of the message carrying a new body.
func (m Message) WithBody(body any) Message {
	return Message{Sender: m.Sender, Recipient: m.Recipient, Body: EncodeBody(body)}
}

// JSONBody decodes the body as a JSON object.
func (m Message) JSONBody() (map[string]any, error) {
	body := DecodeBody(m.Body)
	record, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformed)
	}
	return record, nil
}

// String renders the message with its body decoded for logging.
func (m Message) String() string {
	body := DecodeBody(m.Body)
	switch v := body.(type) {
	case string:
		return fmt.Sprintf("Message(from=%q, to=%q, body=%q)", m.Sender, m.Recipient, v)
	case []byte:
		return fmt.Sprintf("Message(from=%q, to=%q, body=%x)", m.Sender, m.Recipient, v)
	default:
		return fmt.Sprintf("Message(from=%q, to=%q, body=%v)", m.Sender, m.Recipient, v)
	}
}

// EncodeBody canonicalizes a payload to bytes. Raw bytes pass through, text
// becomes its UTF-8 bytes, maps and lists are serialized as JSON with every
// []byte leaf under key k replaced by a k_b64 key holding its base64
// encoding, and anything else falls back to its textual form.
func EncodeBody(body any) []byte {
	switch v := body.(type) {
	case nil:
		return nil
	case []byte:
		data := make([]byte, len(v))
		copy(data, v)
		return data
	case string:
		return []byte(v)
	case map[string]any, []any:
		if data, err := json.Marshal(packBytes(v)); err == nil {
			return data
		}
		return []byte(fmt.Sprint(v))
	default:
		return []byte(fmt.Sprint(v))
	}
}

// DecodeBody reverses EncodeBody: bytes-aware JSON first, then UTF-8 text,
// falling back to the raw bytes.
func DecodeBody(data []byte) any {
	if body, err := decodeJSONBody(data); err == nil {
		return body
	}
	if utf8.Valid(data) {
		return string(data)
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return raw
}

// decodeJSONBody parses data as JSON and maps _b64-suffixed keys back to
// their unsuffixed name with base64-decoded bytes.
func decodeJSONBody(data []byte) (any, error) {
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	switch body.(type) {
	case map[string]any, []any:
		return unpackBytes(body)
	default:
		return nil, fmt.Errorf("not a structured body")
	}
}

const b64Suffix = "_b64"

// packBytes rewrites []byte leaves into their marked base64 form so the
// structure survives a round trip through JSON.
func packBytes(obj any) any {
	switch v := obj.(type) {
	case map[string]any:
		packed := make(map[string]any, len(v))
		for key, value := range v {
			if b, ok := value.([]byte); ok {
				packed[key+b64Suffix] = base64.StdEncoding.EncodeToString(b)
			} else {
				packed[key] = packBytes(value)
			}
		}
		return packed
	case []any:
		packed := make([]any, len(v))
		for i, item := range v {
			packed[i] = packBytes(item)
		}
		return packed
	default:
		return obj
	}
}

// unpackBytes is the inverse of packBytes. A _b64 key whose value is not
// valid base64 makes the whole body non-JSON.
func unpackBytes(obj any) (any, error) {
	switch v := obj.(type) {
	case map[string]any:
		unpacked := make(map[string]any, len(v))
		for key, value := range v {
			if encoded, ok := value.(string); ok && strings.HasSuffix(key, b64Suffix) {
				raw, err := base64.StdEncoding.DecodeString(encoded)
				if err != nil {
					return nil, err
				}
				unpacked[strings.TrimSuffix(key, b64Suffix)] = raw
				continue
			}
			inner, err := unpackBytes(value)
			if err != nil {
				return nil, err
			}
			unpacked[key] = inner
		}
		return unpacked, nil
	case []any:
		unpacked := make([]any, len(v))
		for i, item := range v {
			inner, err := unpackBytes(item)
			if err != nil {
				return nil, err
			}
			unpacked[i] = inner
		}
		return unpacked, nil
	default:
		return obj, nil
	}
}
