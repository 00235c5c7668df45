package comm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// faultyLayer encodes cleanly but always fails to decode.
type faultyLayer struct{}

func (faultyLayer) Encode(msg Message) (Message, error) { return msg, nil }

func (faultyLayer) Decode(msg Message) (Message, error) {
	return Message{}, errors.New("decode always fails")
}

// brokenEncoder fails every encode.
type brokenEncoder struct{}

func (brokenEncoder) Encode(msg Message) (Message, error) {
	return Message{}, errors.New("encode always fails")
}

func (brokenEncoder) Decode(msg Message) (Message, error) { return msg, nil }

func TestChannelSendReceive(t *testing.T) {
	m := startMedium(t)
	alice := NewChannel("alice", m, reverseLayer{}, 0)
	bob := NewChannel("bob", m, reverseLayer{}, 0)

	go alice.Send(NewMessage("alice", "bob", "hello"))

	msg := bob.Receive("bob", WithTimeout(2*time.Second))
	if string(msg.Body) != "hello" {
		t.Errorf("Expected round-tripped 'hello', got %s", msg.String())
	}
}

func TestChannelReceiveTimeoutSentinel(t *testing.T) {
	m := startMedium(t)
	ch := NewChannel("bob", m, Plaintext{}, 0)

	msg := ch.Receive("bob", WithTimeout(100*time.Millisecond))
	if !msg.IsEmpty() {
		t.Errorf("Expected empty sentinel on timeout, got %s", msg.String())
	}
}

func TestChannelDecodeFailureSentinel(t *testing.T) {
	m := startMedium(t)
	alice := NewChannel("alice", m, Plaintext{}, 0)
	bob := NewChannel("bob", m, faultyLayer{}, 0)

	go alice.Send(NewMessage("alice", "bob", "garbage in"))

	msg := bob.Receive("bob", WithTimeout(2*time.Second))
	if !msg.IsEmpty() {
		t.Errorf("Expected empty sentinel on decode failure, got %s", msg.String())
	}
}

func TestChannelSendEncodeFailureWritesNothing(t *testing.T) {
	m := startMedium(t)
	alice := NewChannel("alice", m, brokenEncoder{}, 0)
	bob := NewChannel("bob", m, Plaintext{}, 0)

	alice.Send(NewMessage("alice", "bob", "never arrives"))

	msg := bob.Receive("bob", WithTimeout(150*time.Millisecond))
	if !msg.IsEmpty() {
		t.Errorf("Expected no delivery after encode failure, got %s", msg.String())
	}
}

func TestChannelStackMismatchSentinel(t *testing.T) {
	m := startMedium(t)
	alice := NewChannel("alice", m, NewStack(suffixLayer{marker: 'a', trace: new([]byte)}), 0)
	bob := NewChannel("bob", m, NewStack(suffixLayer{marker: 'z', trace: new([]byte)}), 0)

	go alice.Send(NewMessage("alice", "bob", "hello"))

	msg := bob.Receive("bob", WithTimeout(2*time.Second))
	if !msg.IsEmpty() {
		t.Errorf("Expected empty sentinel on stack mismatch, got %s", msg.String())
	}
}

func TestChannelRequest(t *testing.T) {
	m := startMedium(t)
	client := NewChannel("client", m, Plaintext{}, 0)
	echo := NewChannel("echo", m, Plaintext{}, 0)

	go func() {
		msg := echo.Receive("echo", WithTimeout(2*time.Second))
		if msg.IsEmpty() {
			return
		}
		echo.Send(NewMessage("echo", msg.Sender, "pong"))
	}()

	reply := client.Request(NewMessage("client", "echo", "ping"), WithTimeout(2*time.Second))
	if string(reply.Body) != "pong" {
		t.Errorf("Expected 'pong' reply, got %s", reply.String())
	}
}

func TestChannelWithStackSharesMedium(t *testing.T) {
	m := startMedium(t)
	ch := NewChannel("alice", m, reverseLayer{}, 3)
	plain := ch.WithStack(Plaintext{})

	if plain.Medium() != m {
		t.Error("Expected derived channel to share the medium")
	}
	if plain.Name() != "alice" {
		t.Errorf("Expected derived channel name 'alice', got %q", plain.Name())
	}
	if plain.Stack().Len() != 0 {
		t.Errorf("Expected empty derived stack, got %d layers", plain.Stack().Len())
	}
	if ch.Stack().Len() != 1 {
		t.Errorf("Expected original stack unchanged, got %d layers", ch.Stack().Len())
	}
}

func TestRunJoinsActors(t *testing.T) {
	received := make(chan Message, 1)
	alice := Actor{
		Name: "alice",
		Target: func(channels ...*Channel) {
			channels[0].Send(NewMessage("alice", "bob", "hi"))
		},
	}
	bob := Actor{
		Name: "bob",
		Target: func(channels ...*Channel) {
			received <- channels[0].Receive("bob", WithTimeout(2*time.Second))
		},
	}

	if err := Run(context.Background(), testInterval, alice, bob); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	msg := <-received
	if string(msg.Body) != "hi" {
		t.Errorf("Expected bob to receive 'hi', got %s", msg.String())
	}
}

func TestRunDefaultsToPlaintextChannel(t *testing.T) {
	checked := make(chan int, 1)
	actor := Actor{
		Name: "solo",
		Target: func(channels ...*Channel) {
			checked <- channels[0].Stack().Len()
		},
	}

	if err := Run(context.Background(), testInterval, actor); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := <-checked; n != 0 {
		t.Errorf("Expected plaintext default stack, got %d layers", n)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	blocked := Actor{
		Name: "blocked",
		Target: func(channels ...*Channel) {
			channels[0].Receive("blocked", WithTimeout(5*time.Second), Quiet())
		},
	}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, testInterval, blocked) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected cancelled run to return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after cancellation")
	}
}
