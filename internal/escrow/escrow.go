package escrow

import (
	"sync"

	apperrors "gatepass/internal/errors"
)

// Escrow holds per-event accumulated mint revenue. Balances only grow
// on credit and only drop to zero on a successful withdraw by the
// event's organizer; resale payments never touch escrow.
type Escrow struct {
	mu       sync.Mutex
	balances map[uint64]uint64
}

func NewEscrow() *Escrow {
	return &Escrow{balances: make(map[uint64]uint64)}
}

// Credit adds amount to the event's balance. The caller has already
// validated the event.
func (e *Escrow) Credit(eventID uint64, amount uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[eventID] += amount
}

// Debit removes amount from the event's balance. Internal rollback
// primitive for a mint whose refund failed.
func (e *Escrow) Debit(eventID uint64, amount uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.balances[eventID] >= amount {
		e.balances[eventID] -= amount
	} else {
		e.balances[eventID] = 0
	}
}

// Begin zeroes the event's balance and returns the withdrawn amount.
// Zeroing happens before the external transfer so a reentrant call
// during the payout observes an empty balance. A second Begin with no
// intervening credit fails.
func (e *Escrow) Begin(eventID uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	amount := e.balances[eventID]
	if amount == 0 {
		return 0, apperrors.ErrNothingToWithdraw
	}

	e.balances[eventID] = 0
	return amount, nil
}

// Restore adds a withdrawn amount back after a failed payout. Added,
// not assigned: credits that landed during the payout must survive.
func (e *Escrow) Restore(eventID uint64, amount uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[eventID] += amount
}

// Balance returns the event's current escrow balance
func (e *Escrow) Balance(eventID uint64) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balances[eventID]
}
