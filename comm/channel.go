package comm

import (
	"log/slog"
	"time"
)

// Option overrides the priority, timeout, or verbosity of a single channel
// operation.
type Option func(*callOptions)

type callOptions struct {
	priority    int
	hasPriority bool
	timeout     time.Duration
	quiet       bool
}

// WithPriority overrides the channel's default priority for one operation.
func WithPriority(priority int) Option {
	return func(o *callOptions) {
		o.priority = priority
		o.hasPriority = true
	}
}

// WithTimeout bounds the wait of one operation. Zero means wait forever.
func WithTimeout(timeout time.Duration) Option {
	return func(o *callOptions) { o.timeout = timeout }
}

// Quiet suppresses the info-level traffic log for one operation.
func Quiet() Option {
	return func(o *callOptions) { o.quiet = true }
}

// Channel binds a security stack to a shared medium with a default priority.
// It is the unit actors use to send, receive, peek, and wait.
//
// Every failure - timeout, transform error, verification error - is logged
// as a warning and converted to the empty-message sentinel at this boundary.
// No channel operation panics or returns an error: a single garbled exchange
// must not abort a multi-actor scenario.
type Channel struct {
	name     string
	medium   *Medium
	stack    *Stack
	priority int
}

// NewChannel binds stack to medium under the given actor name. The stack may
// be any layer; it is normalized into a Stack.
func NewChannel(name string, medium *Medium, stack Layer, priority int) *Channel {
	return &Channel{
		name:     name,
		medium:   medium,
		stack:    NewStack(stack),
		priority: priority,
	}
}

// Name returns the owning actor's name.
func (c *Channel) Name() string { return c.name }

// Stack returns the channel's security stack.
func (c *Channel) Stack() *Stack { return c.stack }

// Medium returns the shared medium.
func (c *Channel) Medium() *Medium { return c.medium }

// WithStack returns a new channel over the same medium with a different
// stack, used to switch security contexts mid-protocol without tearing down
// the underlying connection.
func (c *Channel) WithStack(stack Layer) *Channel {
	return NewChannel(c.name, c.medium, stack, c.priority)
}

func (c *Channel) options(opts []Option) callOptions {
	o := callOptions{priority: c.priority}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Send encodes the message through the stack and enqueues a write.
func (c *Channel) Send(msg Message, opts ...Option) {
	o := c.options(opts)
	enc, err := c.stack.Encode(msg.Copy())
	if err == nil {
		err = c.medium.Write(enc, o.priority, o.timeout)
	}
	if err != nil {
		slog.Warn("send failed", "channel", c.name, "error", err)
		return
	}
	if !o.quiet {
		slog.Info("sent", "channel", c.name, "msg", msg.String())
	}
}

// Receive blocks for a message and consumes it. An empty recipient accepts
// any message; otherwise only messages addressed to recipient are delivered.
// On timeout or decode failure it returns the empty sentinel.
func (c *Channel) Receive(recipient string, opts ...Option) Message {
	o := c.options(opts)
	msg, err := c.medium.Read(recipient, o.priority, o.timeout)
	if err == nil {
		msg, err = c.stack.Decode(msg)
	}
	if err != nil {
		slog.Warn("receive failed", "channel", c.name, "error", err)
		return Message{}
	}
	if !o.quiet {
		slog.Info("received", "channel", c.name, "msg", msg.String())
	}
	return msg
}

// Peek blocks for a copy of the mailbox contents without consuming them.
func (c *Channel) Peek(opts ...Option) Message {
	o := c.options(opts)
	msg, err := c.medium.Peek(o.priority, o.timeout)
	if err == nil {
		msg, err = c.stack.Decode(msg)
	}
	if err != nil {
		slog.Warn("peek failed", "channel", c.name, "error", err)
		return Message{}
	}
	if !o.quiet {
		slog.Info("peeked", "channel", c.name, "msg", msg.String())
	}
	return msg
}

// Request sends a message and blocks for a response addressed back to the
// original sender.
func (c *Channel) Request(msg Message, opts ...Option) Message {
	c.Send(msg, opts...)
	return c.Receive(msg.Sender, opts...)
}

// Wait blocks the caller for the given number of arbitration ticks, letting
// other actors use the medium.
func (c *Channel) Wait(ticks int) {
	c.medium.Wait(ticks)
}
