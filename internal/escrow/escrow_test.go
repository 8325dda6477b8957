package escrow

import (
	"testing"

	apperrors "gatepass/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditAccumulates(t *testing.T) {
	e := NewEscrow()

	e.Credit(0, 100)
	e.Credit(0, 50)
	e.Credit(1, 7)

	assert.Equal(t, uint64(150), e.Balance(0))
	assert.Equal(t, uint64(7), e.Balance(1))
	assert.Equal(t, uint64(0), e.Balance(2))
}

func TestBeginZeroesBalance(t *testing.T) {
	e := NewEscrow()
	e.Credit(0, 100)

	amount, err := e.Begin(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), amount)
	assert.Equal(t, uint64(0), e.Balance(0))

	// Second withdraw with no intervening credit fails
	_, err = e.Begin(0)
	assert.ErrorIs(t, err, apperrors.ErrNothingToWithdraw)
}

func TestBeginEmptyBalance(t *testing.T) {
	e := NewEscrow()

	_, err := e.Begin(5)
	assert.ErrorIs(t, err, apperrors.ErrNothingToWithdraw)
}

func TestRestorePreservesConcurrentCredits(t *testing.T) {
	e := NewEscrow()
	e.Credit(0, 100)

	amount, err := e.Begin(0)
	require.NoError(t, err)

	// A mint lands while the payout is in flight, then the payout fails
	e.Credit(0, 30)
	e.Restore(0, amount)

	assert.Equal(t, uint64(130), e.Balance(0))
}

func TestDebitFloorsAtZero(t *testing.T) {
	e := NewEscrow()
	e.Credit(0, 100)

	e.Debit(0, 60)
	assert.Equal(t, uint64(40), e.Balance(0))

	e.Debit(0, 90)
	assert.Equal(t, uint64(0), e.Balance(0))
}
