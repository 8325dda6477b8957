package ledger

import (
	"sync"

	apperrors "gatepass/internal/errors"
	"gatepass/internal/models"
)

// Ledger owns ticket ownership records. Ticket ids are assigned from a
// single counter starting at 1, continuing across events. Ownership
// changes only through MarkResoldAndTransfer; tickets are never
// deleted except when a failed mint is rolled back.
type Ledger struct {
	mu      sync.RWMutex
	tickets map[uint64]*models.Ticket
	lastID  uint64
}

func NewLedger() *Ledger {
	return &Ledger{tickets: make(map[uint64]*models.Ticket)}
}

// Mint records a new ticket for owner against eventID and returns the
// assigned ticket id
func (l *Ledger) Mint(owner models.AccountID, eventID uint64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastID++
	l.tickets[l.lastID] = &models.Ticket{
		ID:      l.lastID,
		EventID: eventID,
		Owner:   owner,
	}
	return l.lastID
}

// Get returns a copy of the ticket record
func (l *Ledger) Get(ticketID uint64) (models.Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return models.Ticket{}, apperrors.ErrUnknownTicket
	}
	return *ticket, nil
}

// OwnerOf returns the current owner of the ticket
func (l *Ledger) OwnerOf(ticketID uint64) (models.AccountID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return "", apperrors.ErrUnknownTicket
	}
	return ticket.Owner, nil
}

// EventOf returns the event a ticket belongs to
func (l *Ledger) EventOf(ticketID uint64) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return 0, apperrors.ErrUnknownTicket
	}
	return ticket.EventID, nil
}

// MarkResoldAndTransfer flips the resold flag and reassigns ownership
// from seller to buyer in one atomic step. A ticket passes through
// here at most once.
func (l *Ledger) MarkResoldAndTransfer(ticketID uint64, from, to models.AccountID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return apperrors.ErrUnknownTicket
	}
	if ticket.Owner != from {
		return apperrors.ErrOwnershipMismatch
	}
	if ticket.Resold {
		return apperrors.ErrAlreadyResold
	}

	ticket.Resold = true
	ticket.Owner = to
	return nil
}

// RevertResale undoes MarkResoldAndTransfer after a failed payout.
// Internal rollback primitive, never reachable from the public
// surface.
func (l *Ledger) RevertResale(ticketID uint64, previousOwner models.AccountID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ticket, ok := l.tickets[ticketID]; ok {
		ticket.Resold = false
		ticket.Owner = previousOwner
	}
}

// RevokeMint removes a ticket whose mint failed after record creation.
// The id counter rewinds only when the revoked ticket is still the
// newest one, so success-path ids stay sequential.
func (l *Ledger) RevokeMint(ticketID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.tickets[ticketID]; !ok {
		return
	}
	delete(l.tickets, ticketID)
	if ticketID == l.lastID {
		l.lastID--
	}
}

// Transfer is the generic ownership-transfer entry point. It is
// deliberately disabled: ticket movement must always pass through the
// priced, single-use resale path.
func (l *Ledger) Transfer(ticketID uint64, from, to models.AccountID) error {
	return apperrors.ErrTransfersDisabled
}

// Count returns the number of minted tickets still on the ledger
func (l *Ledger) Count() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.tickets))
}
