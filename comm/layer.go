package comm

// Layer is a bidirectional message transform: a cipher, a verifier, or any
// other protocol step. Decode must be the left inverse of Encode for a
// well-formed layer; Decode may fail where Encode succeeded (tampering,
// truncation, replay).
type Layer interface {
	// Encode applies the layer's outbound transformation.
	Encode(msg Message) (Message, error)

	// Decode reverses Encode on inbound traffic.
	Decode(msg Message) (Message, error)
}

// Plaintext is the no-op layer. Stacks elide it during composition.
type Plaintext struct{}

// Encode returns the message unchanged.
func (Plaintext) Encode(msg Message) (Message, error) { return msg, nil }

// Decode returns the message unchanged.
func (Plaintext) Decode(msg Message) (Message, error) { return msg, nil }

// Stack is an ordered sequence of layers applied to a channel's traffic.
// Encode runs the layers in stored order, Decode in reverse, so a stack such
// as [cipher, mac] encrypts then authenticates outbound data and verifies
// then decrypts inbound data.
//
// Stacks are immutable after construction; composition returns new values.
type Stack struct {
	layers []Layer
}

// NewStack builds a stack from the given layers. Nested stacks are flattened
// in place and no-op layers are dropped, so a stack built from stacks always
// has the same encode/decode order as the equivalent flat list.
func NewStack(layers ...Layer) *Stack {
	s := &Stack{}
	for _, layer := range layers {
		switch v := layer.(type) {
		case nil:
		case *Stack:
			s.layers = append(s.layers, v.layers...)
		case Plaintext:
		case *Plaintext:
		default:
			s.layers = append(s.layers, layer)
		}
	}
	return s
}

// Then returns a new stack with the given layer (or stack) appended.
func (s *Stack) Then(layer Layer) *Stack {
	combined := make([]Layer, 0, len(s.layers)+1)
	for _, l := range s.layers {
		combined = append(combined, l)
	}
	combined = append(combined, layer)
	return NewStack(combined...)
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int { return len(s.layers) }

// Layers returns a copy of the layer list in application order.
func (s *Stack) Layers() []Layer {
	layers := make([]Layer, len(s.layers))
	copy(layers, s.layers)
	return layers
}

// Encode applies each layer's Encode in stored order.
func (s *Stack) Encode(msg Message) (Message, error) {
	var err error
	for _, layer := range s.layers {
		if msg, err = layer.Encode(msg); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}

// Decode applies each layer's Decode in reverse order.
func (s *Stack) Decode(msg Message) (Message, error) {
	var err error
	for i := len(s.layers) - 1; i >= 0; i-- {
		if msg, err = s.layers[i].Decode(msg); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}
