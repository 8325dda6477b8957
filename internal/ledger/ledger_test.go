package ledger

import (
	"testing"

	apperrors "gatepass/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAssignsGlobalSequentialIDs(t *testing.T) {
	l := NewLedger()

	// Ids continue across events from a single counter starting at 1
	assert.Equal(t, uint64(1), l.Mint("alice", 0))
	assert.Equal(t, uint64(2), l.Mint("bob", 0))
	assert.Equal(t, uint64(3), l.Mint("alice", 7))

	owner, err := l.OwnerOf(2)
	require.NoError(t, err)
	assert.EqualValues(t, "bob", owner)

	eventID, err := l.EventOf(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), eventID)
}

func TestOwnerOfUnknownTicket(t *testing.T) {
	l := NewLedger()

	_, err := l.OwnerOf(1)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)

	_, err = l.EventOf(1)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)

	_, err = l.Get(1)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)
}

func TestMarkResoldAndTransfer(t *testing.T) {
	l := NewLedger()
	id := l.Mint("alice", 0)

	require.NoError(t, l.MarkResoldAndTransfer(id, "alice", "bob"))

	ticket, err := l.Get(id)
	require.NoError(t, err)
	assert.EqualValues(t, "bob", ticket.Owner)
	assert.True(t, ticket.Resold)

	// Second resale fails regardless of who asks, ownership unchanged
	err = l.MarkResoldAndTransfer(id, "bob", "carol")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResold)

	ticket, _ = l.Get(id)
	assert.EqualValues(t, "bob", ticket.Owner)
}

func TestMarkResoldChecksOwnership(t *testing.T) {
	l := NewLedger()
	id := l.Mint("alice", 0)

	err := l.MarkResoldAndTransfer(id, "bob", "carol")
	assert.ErrorIs(t, err, apperrors.ErrOwnershipMismatch)

	err = l.MarkResoldAndTransfer(99, "alice", "bob")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)

	ticket, _ := l.Get(id)
	assert.EqualValues(t, "alice", ticket.Owner)
	assert.False(t, ticket.Resold)
}

func TestRevertResale(t *testing.T) {
	l := NewLedger()
	id := l.Mint("alice", 0)
	require.NoError(t, l.MarkResoldAndTransfer(id, "alice", "bob"))

	l.RevertResale(id, "alice")

	ticket, err := l.Get(id)
	require.NoError(t, err)
	assert.EqualValues(t, "alice", ticket.Owner)
	assert.False(t, ticket.Resold)

	// The resale path is open again after the rollback
	require.NoError(t, l.MarkResoldAndTransfer(id, "alice", "carol"))
}

func TestRevokeMintRewindsNewestID(t *testing.T) {
	l := NewLedger()
	id := l.Mint("alice", 0)
	require.Equal(t, uint64(1), id)

	l.RevokeMint(id)
	assert.Equal(t, uint64(0), l.Count())

	// The id is reissued because no newer ticket was minted meanwhile
	assert.Equal(t, uint64(1), l.Mint("bob", 0))
}

func TestRevokeMintKeepsOlderIDs(t *testing.T) {
	l := NewLedger()
	first := l.Mint("alice", 0)
	second := l.Mint("bob", 0)

	l.RevokeMint(first)

	_, err := l.Get(first)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)

	owner, err := l.OwnerOf(second)
	require.NoError(t, err)
	assert.EqualValues(t, "bob", owner)

	// Counter does not rewind past the surviving newer ticket
	assert.Equal(t, uint64(3), l.Mint("carol", 0))
}

func TestTransferAlwaysDisabled(t *testing.T) {
	l := NewLedger()
	id := l.Mint("alice", 0)

	err := l.Transfer(id, "alice", "bob")
	assert.ErrorIs(t, err, apperrors.ErrTransfersDisabled)

	owner, _ := l.OwnerOf(id)
	assert.EqualValues(t, "alice", owner)
}
