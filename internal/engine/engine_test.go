package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "gatepass/internal/errors"
	"gatepass/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = models.AccountID("admin")

type transferCall struct {
	To     models.AccountID
	Amount uint64
}

// stubMover records transfers. err makes transfers fail (errOnce
// limits that to the next one); hook runs inside the transfer with
// the guarded context.
type stubMover struct {
	mu      sync.Mutex
	calls   []transferCall
	err     error
	errOnce bool
	hook    func(ctx context.Context)
}

func (m *stubMover) Transfer(ctx context.Context, to models.AccountID, amount uint64) error {
	if m.hook != nil {
		m.hook(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		err := m.err
		if m.errOnce {
			m.err = nil
		}
		return err
	}
	m.calls = append(m.calls, transferCall{To: to, Amount: amount})
	return nil
}

func (m *stubMover) Calls() []transferCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transferCall(nil), m.calls...)
}

func newTestEngine(t *testing.T) (*Engine, *stubMover) {
	t.Helper()
	mover := &stubMover{}
	eng := NewEngine(admin, mover)
	return eng, mover
}

// newEventEngine returns an engine with "org" holding the organizer
// role and one event created with the given price and capacity.
func newEventEngine(t *testing.T, price, capacity uint64) (*Engine, *stubMover, uint64) {
	t.Helper()
	eng, mover := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.GrantOrganizer(ctx, admin, "org"))
	eventID, err := eng.CreateEvent(ctx, "org", "Party", "ipfs://123", time.Now().Add(time.Hour), price, capacity)
	require.NoError(t, err)

	return eng, mover, eventID
}

func TestCreateEventFirstIDIsZero(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.GrantOrganizer(ctx, admin, "org"))

	eventID, err := eng.CreateEvent(ctx, "org", "Party", "ipfs://123", time.Now().Add(time.Hour), 1_000_000, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), eventID)

	event, err := eng.EventByID(eventID)
	require.NoError(t, err)
	assert.EqualValues(t, "org", event.Organizer)
	assert.Equal(t, uint64(0), event.MintedCount)
	assert.Equal(t, "ipfs://123", event.MetadataRef)
}

func TestCreateEventValidation(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, eng.GrantOrganizer(ctx, admin, "org"))

	_, err := eng.CreateEvent(ctx, "org", "Party", "ipfs://123", time.Unix(1, 0), 100, 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSchedule)

	_, err = eng.CreateEvent(ctx, "org", "Party", "ipfs://123", time.Now().Add(time.Hour), 100, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCapacity)

	assert.Equal(t, uint64(0), eng.EventCount())
}

func TestCreateEventRequiresOrganizer(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateEvent(ctx, "rando", "Party", "ipfs://123", time.Now().Add(time.Hour), 100, 10)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, uint64(0), eng.EventCount())

	// Admin alone is not enough either
	_, err = eng.CreateEvent(ctx, admin, "Party", "ipfs://123", time.Now().Add(time.Hour), 100, 10)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestMintUntilSoldOut(t *testing.T) {
	eng, _, eventID := newEventEngine(t, 2, 2)
	ctx := context.Background()

	ticket1, err := eng.MintTicket(ctx, "user1", eventID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ticket1)

	ticket2, err := eng.MintTicket(ctx, "user2", eventID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ticket2)

	_, err = eng.MintTicket(ctx, "user3", eventID, 2)
	assert.ErrorIs(t, err, apperrors.ErrSoldOut)

	event, _ := eng.EventByID(eventID)
	assert.Equal(t, uint64(2), event.MintedCount)
	assert.Equal(t, uint64(4), eng.EscrowBalance(eventID))
}

func TestMintUnknownEvent(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.MintTicket(context.Background(), "user1", 42, 100)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEvent)
}

func TestMintInsufficientFunds(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 5)

	_, err := eng.MintTicket(context.Background(), "user1", eventID, 99)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	event, _ := eng.EventByID(eventID)
	assert.Equal(t, uint64(0), event.MintedCount)
	assert.Equal(t, uint64(0), eng.EscrowBalance(eventID))
	assert.Equal(t, uint64(0), eng.TicketCount())
	assert.Empty(t, mover.Calls())
}

func TestMintRefundsExcess(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 1)

	ticketID, err := eng.MintTicket(context.Background(), "user1", eventID, 130)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ticketID)

	// Escrow holds exactly the face price; the excess went back
	assert.Equal(t, uint64(100), eng.EscrowBalance(eventID))
	calls := mover.Calls()
	require.Len(t, calls, 1)
	assert.EqualValues(t, "user1", calls[0].To)
	assert.Equal(t, uint64(30), calls[0].Amount)
}

func TestMintExactPaymentNoRefund(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 1)

	_, err := eng.MintTicket(context.Background(), "user1", eventID, 100)
	require.NoError(t, err)
	assert.Empty(t, mover.Calls())
}

func TestMintRefundFailureRollsBack(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 1)
	mover.err = errors.New("gateway down")

	_, err := eng.MintTicket(context.Background(), "user1", eventID, 150)
	assert.ErrorIs(t, err, apperrors.ErrRefundFailed)

	event, _ := eng.EventByID(eventID)
	assert.Equal(t, uint64(0), event.MintedCount)
	assert.Equal(t, uint64(0), eng.EscrowBalance(eventID))
	assert.Equal(t, uint64(0), eng.TicketCount())

	// The slot and the ticket id are both available again
	mover.err = nil
	ticketID, err := eng.MintTicket(context.Background(), "user1", eventID, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ticketID)
}

func TestConcurrentMintNeverOversells(t *testing.T) {
	const capacity = 5
	const attempts = capacity + 20
	eng, _, eventID := newEventEngine(t, 10, capacity)

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.MintTicket(context.Background(), "user", eventID, 10)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var minted int
	for err := range results {
		if err == nil {
			minted++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrSoldOut)
		}
	}

	assert.Equal(t, capacity, minted)
	event, _ := eng.EventByID(eventID)
	assert.Equal(t, uint64(capacity), event.MintedCount)
	assert.Equal(t, uint64(capacity*10), eng.EscrowBalance(eventID))
	assert.Equal(t, uint64(capacity), eng.TicketCount())
}

func TestResaleHappyPath(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 150, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 150)
	require.NoError(t, err)

	err = eng.ResaleTicket(ctx, "user2", ticketID, "user1", "user2", 150)
	require.NoError(t, err)

	owner, err := eng.OwnerOf(ticketID)
	require.NoError(t, err)
	assert.EqualValues(t, "user2", owner)

	ticket, _ := eng.TicketByID(ticketID)
	assert.True(t, ticket.Resold)

	// Payment went straight to the seller, escrow untouched
	calls := mover.Calls()
	require.Len(t, calls, 1)
	assert.EqualValues(t, "user1", calls[0].To)
	assert.Equal(t, uint64(150), calls[0].Amount)
	assert.Equal(t, uint64(150), eng.EscrowBalance(eventID))
}

func TestResaleOnlyOnce(t *testing.T) {
	eng, _, eventID := newEventEngine(t, 150, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 150)
	require.NoError(t, err)
	require.NoError(t, eng.ResaleTicket(ctx, "user2", ticketID, "user1", "user2", 150))

	// Any further resale attempt fails, whoever asks
	err = eng.ResaleTicket(ctx, "user3", ticketID, "user2", "user3", 100)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResold)

	owner, _ := eng.OwnerOf(ticketID)
	assert.EqualValues(t, "user2", owner)
}

func TestResalePriceCapped(t *testing.T) {
	eng, _, eventID := newEventEngine(t, 150, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 150)
	require.NoError(t, err)

	err = eng.ResaleTicket(ctx, "user2", ticketID, "user1", "user2", 151)
	assert.ErrorIs(t, err, apperrors.ErrPriceExceeded)

	ticket, _ := eng.TicketByID(ticketID)
	assert.EqualValues(t, "user1", ticket.Owner)
	assert.False(t, ticket.Resold)
}

func TestResaleUnderpaymentPaysSellerExactly(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 150, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 150)
	require.NoError(t, err)

	require.NoError(t, eng.ResaleTicket(ctx, "user2", ticketID, "user1", "user2", 90))

	calls := mover.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, uint64(90), calls[0].Amount)
}

func TestResaleValidation(t *testing.T) {
	eng, _, eventID := newEventEngine(t, 150, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 150)
	require.NoError(t, err)

	err = eng.ResaleTicket(ctx, "user2", 99, "user1", "user2", 150)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)

	err = eng.ResaleTicket(ctx, "user2", ticketID, "wrong", "user2", 150)
	assert.ErrorIs(t, err, apperrors.ErrOwnershipMismatch)

	err = eng.ResaleTicket(ctx, "user2", ticketID, "user1", "", 150)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)

	// Only the buyer may initiate their own purchase
	err = eng.ResaleTicket(ctx, "user1", ticketID, "user1", "user2", 150)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	ticket, _ := eng.TicketByID(ticketID)
	assert.EqualValues(t, "user1", ticket.Owner)
	assert.False(t, ticket.Resold)
}

func TestResalePayoutFailureRollsBack(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 150, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 150)
	require.NoError(t, err)

	mover.err = errors.New("gateway down")
	err = eng.ResaleTicket(ctx, "user2", ticketID, "user1", "user2", 150)
	assert.ErrorIs(t, err, apperrors.ErrPayoutFailed)

	ticket, _ := eng.TicketByID(ticketID)
	assert.EqualValues(t, "user1", ticket.Owner)
	assert.False(t, ticket.Resold)

	// The whole operation can be retried once the gateway recovers
	mover.err = nil
	require.NoError(t, eng.ResaleTicket(ctx, "user2", ticketID, "user1", "user2", 150))
}

func TestTransferTicketDisabled(t *testing.T) {
	eng, _, eventID := newEventEngine(t, 150, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 150)
	require.NoError(t, err)

	err = eng.TransferTicket(ctx, "user1", ticketID, "user2")
	assert.ErrorIs(t, err, apperrors.ErrTransfersDisabled)

	owner, _ := eng.OwnerOf(ticketID)
	assert.EqualValues(t, "user1", owner)
}

func TestWithdraw(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 5)
	ctx := context.Background()

	_, err := eng.MintTicket(ctx, "user1", eventID, 100)
	require.NoError(t, err)
	_, err = eng.MintTicket(ctx, "user2", eventID, 100)
	require.NoError(t, err)

	require.NoError(t, eng.Withdraw(ctx, "org", eventID))
	assert.Equal(t, uint64(0), eng.EscrowBalance(eventID))

	calls := mover.Calls()
	require.Len(t, calls, 1)
	assert.EqualValues(t, "org", calls[0].To)
	assert.Equal(t, uint64(200), calls[0].Amount)

	// Nothing left to withdraw until the next mint
	err = eng.Withdraw(ctx, "org", eventID)
	assert.ErrorIs(t, err, apperrors.ErrNothingToWithdraw)

	_, err = eng.MintTicket(ctx, "user3", eventID, 100)
	require.NoError(t, err)
	require.NoError(t, eng.Withdraw(ctx, "org", eventID))
}

func TestWithdrawOnlyOrganizer(t *testing.T) {
	eng, _, eventID := newEventEngine(t, 100, 5)
	ctx := context.Background()

	_, err := eng.MintTicket(ctx, "user1", eventID, 100)
	require.NoError(t, err)

	err = eng.Withdraw(ctx, "user1", eventID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = eng.Withdraw(ctx, admin, eventID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	assert.Equal(t, uint64(100), eng.EscrowBalance(eventID))
}

func TestWithdrawUnknownEvent(t *testing.T) {
	eng, _ := newTestEngine(t)

	err := eng.Withdraw(context.Background(), "org", 42)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEvent)
}

func TestWithdrawPayoutFailureRestoresBalance(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 5)
	ctx := context.Background()

	_, err := eng.MintTicket(ctx, "user1", eventID, 100)
	require.NoError(t, err)

	mover.err = errors.New("gateway down")
	err = eng.Withdraw(ctx, "org", eventID)
	assert.ErrorIs(t, err, apperrors.ErrPayoutFailed)
	assert.Equal(t, uint64(100), eng.EscrowBalance(eventID))

	mover.err = nil
	require.NoError(t, eng.Withdraw(ctx, "org", eventID))
	assert.Equal(t, uint64(0), eng.EscrowBalance(eventID))
}

// A withdraw that lands while a mint's refund transfer is in flight
// must wait for the mint's rollback: otherwise it pays the organizer
// a credit that is about to be debited away, and the compensating
// debit then eats another mint's money.
func TestWithdrawWaitsForFailedRefundRollback(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 5)
	ctx := context.Background()

	_, err := eng.MintTicket(ctx, "userB", eventID, 100)
	require.NoError(t, err)

	withdrawDone := make(chan error, 1)
	var refundSeen atomic.Bool
	mover.hook = func(context.Context) {
		if !refundSeen.CompareAndSwap(false, true) {
			return
		}

		// Fail the refund that is running right now, and race a
		// withdraw against its rollback from a fresh call stack.
		mover.mu.Lock()
		mover.err = errors.New("gateway down")
		mover.errOnce = true
		mover.mu.Unlock()

		go func() {
			withdrawDone <- eng.Withdraw(context.Background(), "org", eventID)
		}()
		time.Sleep(50 * time.Millisecond)
	}

	_, err = eng.MintTicket(ctx, "userA", eventID, 150)
	assert.ErrorIs(t, err, apperrors.ErrRefundFailed)

	require.NoError(t, <-withdrawDone)

	// The organizer got userB's 100 and nothing of the rolled-back mint
	calls := mover.Calls()
	require.Len(t, calls, 1)
	assert.EqualValues(t, "org", calls[0].To)
	assert.Equal(t, uint64(100), calls[0].Amount)
	assert.Equal(t, uint64(0), eng.EscrowBalance(eventID))

	event, _ := eng.EventByID(eventID)
	assert.Equal(t, uint64(1), event.MintedCount)
	assert.Equal(t, uint64(1), eng.TicketCount())
}

func TestWithdrawReentrancyRejected(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 5)
	ctx := context.Background()

	_, err := eng.MintTicket(ctx, "user1", eventID, 100)
	require.NoError(t, err)

	// A malicious payee calls back into the engine during the payout.
	// The nested call fails immediately instead of double-withdrawing.
	var nestedErr error
	mover.hook = func(transferCtx context.Context) {
		nestedErr = eng.Withdraw(transferCtx, "org", eventID)
	}

	require.NoError(t, eng.Withdraw(ctx, "org", eventID))
	assert.ErrorIs(t, nestedErr, apperrors.ErrReentrantCall)

	calls := mover.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, uint64(100), calls[0].Amount)
	assert.Equal(t, uint64(0), eng.EscrowBalance(eventID))
}

func TestMintReentrancyRejected(t *testing.T) {
	eng, mover, eventID := newEventEngine(t, 100, 5)
	ctx := context.Background()

	var nestedErr error
	mover.hook = func(transferCtx context.Context) {
		_, nestedErr = eng.MintTicket(transferCtx, "attacker", eventID, 100)
	}

	// Overpay so the refund transfer runs the hook
	_, err := eng.MintTicket(ctx, "user1", eventID, 120)
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, apperrors.ErrReentrantCall)

	event, _ := eng.EventByID(eventID)
	assert.Equal(t, uint64(1), event.MintedCount)
}

func TestMetadataOf(t *testing.T) {
	eng, _, eventID := newEventEngine(t, 100, 5)
	ctx := context.Background()

	ticketID, err := eng.MintTicket(ctx, "user1", eventID, 100)
	require.NoError(t, err)

	ref, err := eng.MetadataOf(ticketID)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://123", ref)

	_, err = eng.MetadataOf(99)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)
}

func TestGrantRevokeOrganizer(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	err := eng.GrantOrganizer(ctx, "rando", "alice")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = eng.GrantOrganizer(ctx, admin, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)

	require.NoError(t, eng.GrantOrganizer(ctx, admin, "alice"))
	assert.True(t, eng.HasRole(models.RoleOrganizer, "alice"))

	require.NoError(t, eng.RevokeOrganizer(ctx, admin, "alice"))
	assert.False(t, eng.HasRole(models.RoleOrganizer, "alice"))

	_, err = eng.CreateEvent(ctx, "alice", "Party", "ipfs://123", time.Now().Add(time.Hour), 100, 10)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSequentialEventIDs(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, eng.GrantOrganizer(ctx, admin, "org"))

	for want := uint64(0); want < 4; want++ {
		id, err := eng.CreateEvent(ctx, "org", "Party", "ipfs://123", time.Now().Add(time.Hour), 100, 10)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}
