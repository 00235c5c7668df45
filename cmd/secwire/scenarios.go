package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/chacha20"

	"github.com/secwire/secwire/comm"
	"github.com/secwire/secwire/config"
	"github.com/secwire/secwire/crypt"
	"github.com/secwire/secwire/layers"
	"github.com/secwire/secwire/server"
)

// scenarioFunc runs one demo on its own medium.
type scenarioFunc func(ctx context.Context, cfg *config.Config) error

var scenarios = map[string]scenarioFunc{
	"plaintext":   plaintextScenario,
	"eavesdrop":   eavesdropScenario,
	"tamper":      tamperScenario,
	"bank":        bankScenario,
	"keyexchange": keyExchangeScenario,
}

// plaintextScenario is the hello-world exchange: two actors, no security.
func plaintextScenario(ctx context.Context, cfg *config.Config) error {
	timeout := cfg.Sim.DefaultTimeout

	alice := comm.Actor{
		Name: "alice",
		Target: func(channels ...*comm.Channel) {
			ch := channels[0]
			reply := ch.Request(comm.NewMessage("alice", "bob", "hello bob"),
				comm.WithTimeout(timeout))
			if reply.IsEmpty() {
				slog.Warn("alice got no reply")
			}
		},
	}
	bob := comm.Actor{
		Name: "bob",
		Target: func(channels ...*comm.Channel) {
			ch := channels[0]
			msg := ch.Receive("bob", comm.WithTimeout(timeout))
			if msg.IsEmpty() {
				return
			}
			ch.Send(comm.NewMessage("bob", msg.Sender, "hello "+msg.Sender))
		},
	}
	return comm.Run(ctx, cfg.Sim.TickInterval, alice, bob)
}

// eavesdropScenario shows a passive attacker peeking at traffic. With the
// cipher in place the peeked body is keystream noise.
func eavesdropScenario(ctx context.Context, cfg *config.Config) error {
	timeout := cfg.Sim.DefaultTimeout
	key := crypt.RandomKey(chacha20.KeySize)

	cipher := func() comm.Layer {
		c, err := layers.NewChaCha20(key)
		if err != nil {
			panic(err)
		}
		return c
	}

	alice := comm.Actor{
		Name:   "alice",
		Stacks: []comm.Layer{cipher()},
		Target: func(channels ...*comm.Channel) {
			channels[0].Send(comm.NewMessage("alice", "bob", "attack at dawn"))
		},
	}
	bob := comm.Actor{
		Name:   "bob",
		Stacks: []comm.Layer{cipher()},
		Target: func(channels ...*comm.Channel) {
			channels[0].Receive("bob", comm.WithTimeout(timeout))
		},
	}
	// Higher priority so the peek wins the tick before bob's read.
	eve := comm.Actor{
		Name:     "eve",
		Priority: 1,
		Target: func(channels ...*comm.Channel) {
			seen := channels[0].Peek(comm.WithTimeout(timeout))
			slog.Info("eve intercepted", "msg", seen.String())
		},
	}
	return comm.Run(ctx, cfg.Sim.TickInterval, alice, bob, eve)
}

// tamperScenario shows an active attacker flipping ciphertext bits. The HMAC
// layer rejects the altered message and bob sees the empty sentinel.
func tamperScenario(ctx context.Context, cfg *config.Config) error {
	timeout := cfg.Sim.DefaultTimeout
	key := crypt.RandomKey(chacha20.KeySize)

	secure := func() comm.Layer {
		cipher, err := layers.NewChaCha20(key)
		if err != nil {
			panic(err)
		}
		return comm.NewStack(cipher, layers.NewHMAC(key))
	}

	alice := comm.Actor{
		Name:   "alice",
		Stacks: []comm.Layer{secure()},
		Target: func(channels ...*comm.Channel) {
			channels[0].Send(comm.NewMessage("alice", "bob", "transfer 100 to bob"))
		},
	}
	bob := comm.Actor{
		Name:   "bob",
		Stacks: []comm.Layer{secure()},
		Target: func(channels ...*comm.Channel) {
			msg := channels[0].Receive("bob", comm.WithTimeout(timeout))
			if msg.IsEmpty() {
				slog.Info("bob rejected tampered message")
			}
		},
	}
	// Higher priority so the interception wins the tick before bob's read.
	mallory := comm.Actor{
		Name:     "mallory",
		Priority: 1,
		Target: func(channels ...*comm.Channel) {
			ch := channels[0]
			msg := ch.Receive("", comm.WithTimeout(timeout), comm.Quiet())
			if msg.IsEmpty() {
				return
			}
			msg.Body[0] ^= 0xFF
			slog.Info("mallory forwarding altered message", "to", msg.Recipient)
			ch.Send(msg, comm.Quiet())
		},
	}
	return comm.Run(ctx, cfg.Sim.TickInterval, alice, bob, mallory)
}

// bankScenario runs the bank server with one authenticated customer over an
// encrypt-then-MAC stack.
func bankScenario(ctx context.Context, cfg *config.Config) error {
	timeout := cfg.Sim.DefaultTimeout
	key := crypt.RandomKey(chacha20.KeySize)

	secure := func() comm.Layer {
		cipher, err := layers.NewChaCha20(key)
		if err != nil {
			panic(err)
		}
		return comm.NewStack(cipher, layers.NewHMAC(key))
	}

	bankActor := comm.Actor{
		Name: "bank",
		Target: func(channels ...*comm.Channel) {
			bank := server.NewBank("bank", channels[0])
			bank.SetListenTimeout(cfg.Server.ListenTimeout)
			bank.AddChannel("alice", channels[0].WithStack(secure()))
			bank.SetBalance("bob", 50)
			bank.Listen()
		},
	}
	alice := comm.Actor{
		Name:   "alice",
		Stacks: []comm.Layer{secure()},
		Target: func(channels ...*comm.Channel) {
			ch := channels[0]
			request := func(body map[string]any) map[string]any {
				reply := ch.Request(comm.NewMessage("alice", "bank", body),
					comm.WithTimeout(timeout))
				record, err := reply.JSONBody()
				if err != nil {
					slog.Warn("bad bank reply", "error", err)
					return nil
				}
				return record
			}

			request(map[string]any{"action": "register", "password": "hunter2"})
			balance := request(map[string]any{"action": "get_balance", "password": "hunter2"})
			slog.Info("balance before", "reply", fmt.Sprint(balance))
			request(map[string]any{
				"action":    "perform_transaction",
				"password":  "hunter2",
				"recipient": "bob",
				"amount":    25.0,
			})
			balance = request(map[string]any{"action": "get_balance", "password": "hunter2"})
			slog.Info("balance after", "reply", fmt.Sprint(balance))
		},
	}
	return comm.Run(ctx, cfg.Sim.TickInterval, bankActor, alice)
}

// keyExchangeScenario negotiates a session key with the toy DH group, proves
// possession of it against a challenge, then switches the channel to a cipher
// stack derived from it.
func keyExchangeScenario(ctx context.Context, cfg *config.Config) error {
	timeout := cfg.Sim.DefaultTimeout

	sessionStack := func(secret []byte) comm.Layer {
		cipher, err := layers.NewChaCha20(crypt.SessionKey(secret))
		if err != nil {
			panic(err)
		}
		return comm.NewStack(cipher, layers.NewHMAC(crypt.SessionKey(secret)))
	}

	alice := comm.Actor{
		Name: "alice",
		Target: func(channels ...*comm.Channel) {
			ch := channels[0]
			private := crypt.RandomKey(crypt.KeySize)
			reply := ch.Request(comm.NewMessage("alice", "kdc", map[string]any{
				"action": "exchange",
				"key":    crypt.DHExchange(private),
			}), comm.WithTimeout(timeout))

			body, err := reply.JSONBody()
			if err != nil {
				slog.Warn("key exchange failed", "error", err)
				return
			}
			peer, ok := body["key"].([]byte)
			if !ok {
				slog.Warn("key exchange reply missing key")
				return
			}
			challenge, ok := body["challenge"].([]byte)
			if !ok {
				slog.Warn("key exchange reply missing challenge")
				return
			}

			secret := crypt.DHSecret(private, peer)
			ch.Send(comm.NewMessage("alice", "kdc", map[string]any{
				"action": "proof",
				"proof":  crypt.HMAC64(challenge, secret),
			}))
			secure := ch.WithStack(sessionStack(secret))
			secure.Send(comm.NewMessage("alice", "kdc", "the eagle has landed"))
		},
	}
	kdc := comm.Actor{
		Name: "kdc",
		Target: func(channels ...*comm.Channel) {
			ch := channels[0]
			msg := ch.Receive("kdc", comm.WithTimeout(timeout))
			body, err := msg.JSONBody()
			if err != nil {
				slog.Warn("key exchange request malformed", "error", err)
				return
			}
			peer, ok := body["key"].([]byte)
			if !ok {
				slog.Warn("key exchange request missing key")
				return
			}

			private := crypt.RandomKey(crypt.KeySize)
			challenge := crypt.RandomKey(crypt.KeySize)
			ch.Send(comm.NewMessage("kdc", msg.Sender, map[string]any{
				"action":    "exchange",
				"key":       crypt.DHExchange(private),
				"challenge": challenge,
			}))
			secret := crypt.DHSecret(private, peer)

			msg = ch.Receive("kdc", comm.WithTimeout(timeout))
			body, err = msg.JSONBody()
			if err != nil {
				slog.Warn("proof malformed", "error", err)
				return
			}
			proof, _ := body["proof"].([]byte)
			if !bytes.Equal(proof, crypt.HMAC64(challenge, secret)) {
				slog.Warn("challenge proof rejected", "sender", msg.Sender)
				return
			}
			slog.Info("challenge proof accepted", "sender", msg.Sender)

			secure := ch.WithStack(sessionStack(secret))
			confidential := secure.Receive("kdc", comm.WithTimeout(timeout))
			slog.Info("kdc decrypted", "msg", confidential.String())
		},
	}
	return comm.Run(ctx, cfg.Sim.TickInterval, alice, kdc)
}
