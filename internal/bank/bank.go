// Package bank is the in-process value backend: it tracks account
// balances and performs the buyer-to-seller credit during a purchase.
// In a deployment backed by a real settlement system this package is
// the seam to replace; the ledger only sees the Transferrer interface.
package bank

import (
	"errors"
	"sync"

	"github.com/SergeyParamoshkin/chainlist/internal/model"
)

var ErrInsufficientFunds = errors.New("insufficient funds to cover the article price")

type Bank struct {
	mu       sync.RWMutex
	balances map[model.Address]int64
}

func New() *Bank {
	return &Bank{
		balances: make(map[model.Address]int64),
	}
}

// Deposit credits amount to addr. This is the faucet behind the admin
// surface; amounts are validated by the caller.
func (b *Bank) Deposit(addr model.Address, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.balances[addr] += amount
}

func (b *Bank) Balance(addr model.Address) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.balances[addr]
}

// Balances returns a copy of every known account balance.
func (b *Bank) Balances() map[model.Address]int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	balances := make(map[model.Address]int64, len(b.balances))
	for addr, balance := range b.balances {
		balances[addr] = balance
	}

	return balances
}

// Transfer moves amount from one account to the other: either both
// balances change or neither does.
func (b *Bank) Transfer(from, to model.Address, amount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[from] < amount {
		return ErrInsufficientFunds
	}

	b.balances[from] -= amount
	b.balances[to] += amount

	return nil
}
