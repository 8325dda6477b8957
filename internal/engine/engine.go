package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gatepass/internal/access"
	"gatepass/internal/catalog"
	apperrors "gatepass/internal/errors"
	"gatepass/internal/escrow"
	"gatepass/internal/ledger"
	"gatepass/internal/models"
)

// FundMover performs external fund transfers (mint refunds, resale
// payouts, escrow withdrawals). A transfer error is terminal for the
// operation that triggered it; the engine never retries.
type FundMover interface {
	Transfer(ctx context.Context, to models.AccountID, amount uint64) error
}

type guardKey struct{}

// markGuarded stamps the context handed to the fund mover. Any public
// entry point invoked with a stamped context is a nested call on the
// same logical call stack and is rejected immediately.
func markGuarded(ctx context.Context) context.Context {
	return context.WithValue(ctx, guardKey{}, struct{}{})
}

func reentrant(ctx context.Context) bool {
	return ctx.Value(guardKey{}) != nil
}

// Engine orchestrates the access registry, event catalog, ticket
// ledger and escrow account into the public ticketing operations.
// Every mutating operation validates first, completes all internal
// state changes next, and performs any external fund transfer last;
// a transfer failure rolls the whole operation back. Fund-moving
// operations on the same event are serialized end to end, rollback
// included; unrelated events proceed in parallel.
type Engine struct {
	registry *access.Registry
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	escrow   *escrow.Escrow
	funds    FundMover

	// eventOps holds one lock per event. A compensating rollback must
	// not interleave with another fund movement on the same event, so
	// the lock spans mutation, transfer and rollback. Nested calls
	// fail the reentrancy check before they could touch a lock.
	opMu     sync.Mutex
	eventOps map[uint64]*sync.Mutex
}

func NewEngine(admin models.AccountID, funds FundMover) *Engine {
	return &Engine{
		registry: access.NewRegistry(admin),
		catalog:  catalog.NewCatalog(),
		ledger:   ledger.NewLedger(),
		escrow:   escrow.NewEscrow(),
		funds:    funds,
		eventOps: make(map[uint64]*sync.Mutex),
	}
}

func (e *Engine) eventLock(eventID uint64) *sync.Mutex {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	mu, ok := e.eventOps[eventID]
	if !ok {
		mu = &sync.Mutex{}
		e.eventOps[eventID] = mu
	}
	return mu
}

// Catalog exposes the event catalog for read paths and test clocks
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// CreateEvent appends a new event owned by the calling organizer and
// returns its id
func (e *Engine) CreateEvent(ctx context.Context, caller models.AccountID, name, metadataRef string, date time.Time, price, capacity uint64) (uint64, error) {
	if reentrant(ctx) {
		return 0, apperrors.ErrReentrantCall
	}
	if !e.registry.HasRole(models.RoleOrganizer, caller) {
		return 0, apperrors.ErrUnauthorized
	}
	return e.catalog.Create(caller, name, metadataRef, date, price, capacity)
}

// MintTicket sells one slot of the event to the caller. Escrow is
// credited with exactly the face price; any excess payment is
// refunded. A failed refund rolls back the slot, the ticket and the
// escrow credit as one unit.
func (e *Engine) MintTicket(ctx context.Context, caller models.AccountID, eventID uint64, paymentAmount uint64) (uint64, error) {
	if reentrant(ctx) {
		return 0, apperrors.ErrReentrantCall
	}

	mu := e.eventLock(eventID)
	mu.Lock()
	defer mu.Unlock()

	price, _, err := e.catalog.ReserveSlot(eventID)
	if err != nil {
		return 0, err
	}

	if paymentAmount < price {
		e.catalog.ReleaseSlot(eventID)
		return 0, apperrors.ErrInsufficientFunds
	}

	ticketID := e.ledger.Mint(caller, eventID)
	e.escrow.Credit(eventID, price)

	if excess := paymentAmount - price; excess > 0 {
		if err := e.funds.Transfer(markGuarded(ctx), caller, excess); err != nil {
			e.escrow.Debit(eventID, price)
			e.ledger.RevokeMint(ticketID)
			e.catalog.ReleaseSlot(eventID)
			return 0, fmt.Errorf("%w: %v", apperrors.ErrRefundFailed, err)
		}
	}

	return ticketID, nil
}

// ResaleTicket performs the single permitted ownership transfer of a
// ticket. Only the buyer may initiate, the payment is capped at the
// event's face price, and the payment flows directly to the seller,
// bypassing escrow.
func (e *Engine) ResaleTicket(ctx context.Context, caller models.AccountID, ticketID uint64, seller, buyer models.AccountID, paymentAmount uint64) error {
	if reentrant(ctx) {
		return apperrors.ErrReentrantCall
	}

	ticket, err := e.ledger.Get(ticketID)
	if err != nil {
		return err
	}
	if ticket.Owner != seller {
		return apperrors.ErrOwnershipMismatch
	}
	if ticket.Resold {
		return apperrors.ErrAlreadyResold
	}
	if buyer.IsZero() {
		return apperrors.ErrInvalidAccount
	}
	if caller != buyer {
		return apperrors.ErrUnauthorized
	}

	event, err := e.catalog.GetByID(ticket.EventID)
	if err != nil {
		return err
	}
	if paymentAmount > event.Price {
		return apperrors.ErrPriceExceeded
	}

	mu := e.eventLock(ticket.EventID)
	mu.Lock()
	defer mu.Unlock()

	// Re-checks owner, resold and existence under the lock, so a
	// racing resale or a mint rollback revoking this ticket cannot
	// slip between the checks above and the transfer.
	if err := e.ledger.MarkResoldAndTransfer(ticketID, seller, buyer); err != nil {
		return err
	}

	if paymentAmount > 0 {
		if err := e.funds.Transfer(markGuarded(ctx), seller, paymentAmount); err != nil {
			e.ledger.RevertResale(ticketID, seller)
			return fmt.Errorf("%w: %v", apperrors.ErrPayoutFailed, err)
		}
	}

	return nil
}

// Withdraw pays the event's accumulated escrow out to its organizer.
// The balance is zeroed before the external transfer and restored if
// the transfer fails.
func (e *Engine) Withdraw(ctx context.Context, caller models.AccountID, eventID uint64) error {
	if reentrant(ctx) {
		return apperrors.ErrReentrantCall
	}

	mu := e.eventLock(eventID)
	mu.Lock()
	defer mu.Unlock()

	event, err := e.catalog.GetByID(eventID)
	if err != nil {
		return err
	}
	if caller != event.Organizer {
		return apperrors.ErrUnauthorized
	}

	amount, err := e.escrow.Begin(eventID)
	if err != nil {
		return err
	}

	if err := e.funds.Transfer(markGuarded(ctx), caller, amount); err != nil {
		e.escrow.Restore(eventID, amount)
		return fmt.Errorf("%w: %v", apperrors.ErrPayoutFailed, err)
	}

	return nil
}

// EscrowBalance returns the event's accumulated, not-yet-withdrawn
// mint revenue
func (e *Engine) EscrowBalance(eventID uint64) uint64 {
	return e.escrow.Balance(eventID)
}

// GrantOrganizer gives target the organizer capability
func (e *Engine) GrantOrganizer(ctx context.Context, caller, target models.AccountID) error {
	if reentrant(ctx) {
		return apperrors.ErrReentrantCall
	}
	return e.registry.GrantOrganizer(caller, target)
}

// RevokeOrganizer removes the organizer capability from target
func (e *Engine) RevokeOrganizer(ctx context.Context, caller, target models.AccountID) error {
	if reentrant(ctx) {
		return apperrors.ErrReentrantCall
	}
	return e.registry.RevokeOrganizer(caller, target)
}

// TransferTicket is the generic transfer entry point. Always fails:
// ticket movement must pass through ResaleTicket.
func (e *Engine) TransferTicket(ctx context.Context, caller models.AccountID, ticketID uint64, to models.AccountID) error {
	if reentrant(ctx) {
		return apperrors.ErrReentrantCall
	}
	return e.ledger.Transfer(ticketID, caller, to)
}

// MetadataOf returns the metadata reference of the ticket's event. The
// ticket existence check runs before any event lookup.
func (e *Engine) MetadataOf(ticketID uint64) (string, error) {
	eventID, err := e.ledger.EventOf(ticketID)
	if err != nil {
		return "", err
	}
	event, err := e.catalog.GetByID(eventID)
	if err != nil {
		return "", err
	}
	return event.MetadataRef, nil
}

// OwnerOf returns the current owner of the ticket
func (e *Engine) OwnerOf(ticketID uint64) (models.AccountID, error) {
	return e.ledger.OwnerOf(ticketID)
}

// TicketByID returns a copy of the ticket record
func (e *Engine) TicketByID(ticketID uint64) (models.Ticket, error) {
	return e.ledger.Get(ticketID)
}

// EventByID returns a copy of the event record
func (e *Engine) EventByID(eventID uint64) (models.Event, error) {
	return e.catalog.GetByID(eventID)
}

// HasRole reports whether account holds role
func (e *Engine) HasRole(role models.Role, account models.AccountID) bool {
	return e.registry.HasRole(role, account)
}

// EventCount returns the number of created events
func (e *Engine) EventCount() uint64 {
	return e.catalog.Count()
}

// TicketCount returns the number of minted tickets
func (e *Engine) TicketCount() uint64 {
	return e.ledger.Count()
}

// ListEvents returns a page of events in creation order
func (e *Engine) ListEvents(page, pageSize int) []models.Event {
	return e.catalog.List(page, pageSize)
}
