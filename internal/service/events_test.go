package service

import (
	"context"
	"testing"
	"time"

	"gatepass/internal/engine"
	apperrors "gatepass/internal/errors"
	"gatepass/internal/external"
	"gatepass/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Services must work with every side store absent; only the engine
// carries the semantics.
func newBareServices(t *testing.T) *Services {
	t.Helper()
	eng := engine.NewEngine("admin", external.LogMover{})
	return NewServices(eng, nil, nil, nil, nil)
}

func TestCreateAndListEvents(t *testing.T) {
	s := newBareServices(t)
	ctx := context.Background()

	require.NoError(t, s.Roles.GrantOrganizer(ctx, "admin", "org"))

	resp, err := s.Events.Create(ctx, "org", &models.CreateEventRequest{
		Name:        "Party",
		MetadataRef: "ipfs://123",
		Date:        time.Now().Add(time.Hour),
		Price:       100,
		Capacity:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), resp.ID)

	list, err := s.Events.List(ctx, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Party", list[0].Name)
}

func TestMintResaleAndWithdrawThroughServices(t *testing.T) {
	s := newBareServices(t)
	ctx := context.Background()

	require.NoError(t, s.Roles.GrantOrganizer(ctx, "admin", "org"))
	created, err := s.Events.Create(ctx, "org", &models.CreateEventRequest{
		Name:        "Party",
		MetadataRef: "ipfs://123",
		Date:        time.Now().Add(time.Hour),
		Price:       100,
		Capacity:    2,
	})
	require.NoError(t, err)

	minted, err := s.Tickets.Mint(ctx, "user1", &models.MintTicketRequest{
		EventID:       created.ID,
		PaymentAmount: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), minted.TicketID)

	ref, err := s.Tickets.MetadataOf(ctx, minted.TicketID)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://123", ref)

	err = s.Tickets.Resale(ctx, "user2", minted.TicketID, &models.ResaleTicketRequest{
		Seller:        "user1",
		Buyer:         "user2",
		PaymentAmount: 100,
	})
	require.NoError(t, err)

	owner, err := s.Tickets.OwnerOf(ctx, minted.TicketID)
	require.NoError(t, err)
	assert.EqualValues(t, "user2", owner)

	balance, err := s.Events.EscrowBalance(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)

	require.NoError(t, s.Events.Withdraw(ctx, "org", created.ID))

	balance, err = s.Events.EscrowBalance(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestEscrowBalanceUnknownEvent(t *testing.T) {
	s := newBareServices(t)

	_, err := s.Events.EscrowBalance(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEvent)
}
