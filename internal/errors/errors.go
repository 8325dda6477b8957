package errors

import "errors"

// Failure kinds surfaced by the ticketing engine. Every operation
// reports exactly one of these; none are retried internally.
var (
	ErrUnauthorized      = errors.New("caller is not authorized")
	ErrInvalidAccount    = errors.New("account is the zero account")
	ErrInvalidSchedule   = errors.New("event date is not in the future")
	ErrInvalidCapacity   = errors.New("event capacity must be at least 1")
	ErrInvalidEvent      = errors.New("event does not exist")
	ErrSoldOut           = errors.New("event has no remaining capacity")
	ErrInsufficientFunds = errors.New("payment is below the ticket price")
	ErrUnknownTicket     = errors.New("ticket was never minted")
	ErrOwnershipMismatch = errors.New("seller does not own the ticket")
	ErrAlreadyResold     = errors.New("ticket has already been resold once")
	ErrPriceExceeded     = errors.New("resale payment exceeds the face price")
	ErrTransfersDisabled = errors.New("direct ticket transfers are disabled")
	ErrNothingToWithdraw = errors.New("escrow balance is zero")
	ErrPayoutFailed      = errors.New("external payout transfer failed")
	ErrRefundFailed      = errors.New("external refund transfer failed")
	ErrReentrantCall     = errors.New("reentrant engine call rejected")
)
