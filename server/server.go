// Package server implements the request-response dispatcher layered on a
// channel: it decodes a request through the sender's registered stack, looks
// up an action handler, optionally gates it behind authenticate/authorize
// hooks, and always returns a structured response.
package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/secwire/secwire/comm"
)

// DefaultListenTimeout bounds the blocking receive of each listen iteration.
// A timeout with no traffic ends the listen loop.
const DefaultListenTimeout = 10 * time.Second

// HandlerFunc processes one request body from sender and returns the
// response record.
type HandlerFunc func(sender string, body map[string]any) map[string]any

// Handler is a registered action processor. Auth gates it behind the
// server's authenticate and authorize hooks.
type Handler struct {
	Func HandlerFunc
	Auth bool
}

// Hooks supplies the policy decisions a server embeds: account registration,
// authentication, and authorization. Implementations receive the decoded
// request body.
type Hooks interface {
	Register(sender string, body map[string]any) bool
	Authenticate(sender string, body map[string]any) bool
	Authorize(sender string, body map[string]any) bool
}

// Server dispatches requests received on its own address. Each known sender
// may have its own security stack; unknown senders fall back to plaintext.
type Server struct {
	name          string
	hooks         Hooks
	handlers      map[string]Handler
	channels      map[string]*comm.Channel
	plain         *comm.Channel
	listenTimeout time.Duration
}

// New creates a server listening as name on the given channel's medium. The
// channel's own stack is ignored; per-sender stacks are added with
// AddChannel. A register handler is pre-installed without auth gating.
func New(name string, channel *comm.Channel, hooks Hooks) *Server {
	s := &Server{
		name:          name,
		hooks:         hooks,
		handlers:      make(map[string]Handler),
		channels:      make(map[string]*comm.Channel),
		plain:         channel.WithStack(comm.Plaintext{}),
		listenTimeout: DefaultListenTimeout,
	}
	s.AddHandler("register", s.register, false)
	return s
}

// Name returns the server's listening address.
func (s *Server) Name() string { return s.name }

// SetListenTimeout bounds each listen iteration's blocking receive.
func (s *Server) SetListenTimeout(timeout time.Duration) {
	s.listenTimeout = timeout
}

// AddHandler registers fn for action. auth routes the request through the
// authenticate and authorize hooks before fn runs.
func (s *Server) AddHandler(action string, fn HandlerFunc, auth bool) {
	s.handlers[action] = Handler{Func: fn, Auth: auth}
}

// AddChannel registers the security stack a sender's traffic uses, as a
// channel over the server's medium.
func (s *Server) AddChannel(sender string, channel *comm.Channel) {
	s.channels[sender] = channel
}

// Listen runs the dispatch loop: receive, decode, dispatch, respond. It
// returns when a receive times out with no traffic. No request, however
// malformed or hostile, terminates the loop.
func (s *Server) Listen() {
	slog.Info("listening", "server", s.name)
	for {
		msg := s.plain.Receive(s.name, comm.WithTimeout(s.listenTimeout), comm.Quiet())
		if msg.IsEmpty() {
			slog.Info("listen loop done", "server", s.name)
			return
		}
		channel := s.channelFor(msg.Sender)
		response := s.process(channel, msg)
		channel.Send(comm.NewMessage(s.name, msg.Sender, response))
	}
}

// channelFor resolves the sender's registered channel, defaulting to the
// plaintext channel for unknown senders.
func (s *Server) channelFor(sender string) *comm.Channel {
	if channel, ok := s.channels[sender]; ok {
		return channel
	}
	return s.plain
}

// process decodes one request and dispatches it, converting every failure
// into a structured error response.
func (s *Server) process(channel *comm.Channel, msg comm.Message) map[string]any {
	decoded, err := channel.Stack().Decode(msg)
	if err != nil {
		slog.Warn("request decode failed", "server", s.name, "sender", msg.Sender, "error", err)
		return map[string]any{"status": "error"}
	}
	slog.Info("request", "server", s.name, "msg", decoded.String())
	body, err := decoded.JSONBody()
	if err != nil {
		slog.Warn("request parse failed", "server", s.name, "sender", msg.Sender, "error", err)
		return map[string]any{"status": "error"}
	}
	return s.dispatch(msg.Sender, body)
}

// dispatch resolves the action, applies auth gating, and runs the handler.
// A handler panic is downgraded to an error response.
func (s *Server) dispatch(sender string, body map[string]any) (response map[string]any) {
	response = make(map[string]any)
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("handler panicked", "server", s.name, "sender", sender, "panic", r)
			response["status"] = "error"
		}
	}()

	action, ok := body["action"].(string)
	if !ok {
		slog.Warn("request without action", "server", s.name, "sender", sender)
		response["status"] = "error"
		return response
	}
	response["action"] = action

	handler, ok := s.handlers[action]
	if !ok {
		slog.Warn("dispatch failed", "server", s.name,
			"error", fmt.Errorf("%w: %q", comm.ErrUnknownAction, action))
		response["status"] = "error"
		return response
	}

	if handler.Auth {
		if !s.hooks.Authenticate(sender, body) {
			response["status"] = "authentication failure"
			return response
		}
		if !s.hooks.Authorize(sender, body) {
			response["status"] = "authorization failure"
			return response
		}
	}

	for key, value := range handler.Func(sender, body) {
		response[key] = value
	}
	return response
}

func (s *Server) register(sender string, body map[string]any) map[string]any {
	if s.hooks.Register(sender, body) {
		return map[string]any{"status": "success"}
	}
	return map[string]any{"status": "failure"}
}
