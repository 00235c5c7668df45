package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"log/slog"

	"github.com/secwire/secwire/comm"
)

// account is one bank customer record.
type account struct {
	password []byte // sha256 of the registration password
	balance  float64
}

// Bank is a reference server: customers register with a password, then move
// funds with authenticated perform_transaction requests.
type Bank struct {
	*Server
	accounts map[string]*account
}

// NewBank creates a bank server listening as name.
func NewBank(name string, channel *comm.Channel) *Bank {
	b := &Bank{accounts: make(map[string]*account)}
	b.Server = New(name, channel, b)
	b.AddHandler("get_balance", b.getBalance, true)
	b.AddHandler("perform_transaction", b.performTransaction, true)
	return b
}

// SetBalance seeds an account balance, creating the account if needed.
// Intended for scenario setup.
func (b *Bank) SetBalance(user string, balance float64) {
	if acct, ok := b.accounts[user]; ok {
		acct.balance = balance
		return
	}
	b.accounts[user] = &account{balance: balance}
}

// Register stores the sender's password hash. Re-registering an existing
// account is refused.
func (b *Bank) Register(sender string, body map[string]any) bool {
	password, ok := body["password"].(string)
	if !ok {
		return false
	}
	if acct, ok := b.accounts[sender]; ok && acct.password != nil {
		return false
	}
	sum := sha256.Sum256([]byte(password))
	if acct, ok := b.accounts[sender]; ok {
		acct.password = sum[:]
	} else {
		b.accounts[sender] = &account{password: sum[:]}
	}
	return true
}

// Authenticate checks the request password against the sender's stored hash.
func (b *Bank) Authenticate(sender string, body map[string]any) bool {
	acct, ok := b.accounts[sender]
	if !ok || acct.password == nil {
		return false
	}
	password, ok := body["password"].(string)
	if !ok {
		return false
	}
	sum := sha256.Sum256([]byte(password))
	return hmac.Equal(sum[:], acct.password)
}

// Authorize always passes; the bank's policy is authentication only.
func (b *Bank) Authorize(sender string, body map[string]any) bool {
	return true
}

func (b *Bank) getBalance(sender string, body map[string]any) map[string]any {
	acct, ok := b.accounts[sender]
	if !ok {
		return map[string]any{"status": "unknown account"}
	}
	return map[string]any{"status": "success", "balance": acct.balance}
}

func (b *Bank) performTransaction(sender string, body map[string]any) map[string]any {
	recipient, ok := body["recipient"].(string)
	if !ok {
		return map[string]any{"status": "error"}
	}
	amount, ok := body["amount"].(float64)
	if !ok {
		return map[string]any{"status": "error"}
	}

	from, ok := b.accounts[sender]
	if !ok {
		return map[string]any{"status": "unknown account"}
	}
	to, ok := b.accounts[recipient]
	if !ok {
		return map[string]any{"status": "unknown recipient"}
	}

	if amount <= 0 {
		return map[string]any{"status": "invalid amount"}
	}
	if from.balance < amount {
		return map[string]any{"status": "insufficient funds"}
	}

	from.balance -= amount
	to.balance += amount
	slog.Info("transaction", "server", b.Name(), "from", sender,
		"to", recipient, "amount", amount)

	return map[string]any{"status": "success", "recipient": recipient, "amount": amount}
}
