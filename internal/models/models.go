package models

import "time"

// CreateEventRequest - request body for event creation
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required"`
	MetadataRef string    `json:"metadata_ref" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Price       uint64    `json:"price"`
	Capacity    uint64    `json:"capacity" binding:"required"`
}

// CreateEventResponse - response body for event creation
type CreateEventResponse struct {
	ID uint64 `json:"id"`
}

// ListEventsResponseItem - one event in the list response
type ListEventsResponseItem struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Price       uint64    `json:"price"`
	Capacity    uint64    `json:"capacity"`
	MintedCount uint64    `json:"minted_count"`
}

// ListEventsResponse - list of events
type ListEventsResponse []ListEventsResponseItem

// MintTicketRequest - request body for minting a ticket
type MintTicketRequest struct {
	EventID       uint64 `json:"event_id"`
	PaymentAmount uint64 `json:"payment_amount"`
}

// MintTicketResponse - response body for minting a ticket
type MintTicketResponse struct {
	TicketID uint64 `json:"ticket_id"`
}

// ResaleTicketRequest - request body for the single permitted resale
type ResaleTicketRequest struct {
	Seller        AccountID `json:"seller" binding:"required"`
	Buyer         AccountID `json:"buyer" binding:"required"`
	PaymentAmount uint64    `json:"payment_amount"`
}

// TransferTicketRequest - request body for the direct ticket
// transfer, which is always rejected
type TransferTicketRequest struct {
	To AccountID `json:"to" binding:"required"`
}

// OwnerResponse - current owner of a ticket
type OwnerResponse struct {
	TicketID uint64    `json:"ticket_id"`
	Owner    AccountID `json:"owner"`
}

// MetadataResponse - metadata reference of a ticket's event
type MetadataResponse struct {
	TicketID    uint64 `json:"ticket_id"`
	MetadataRef string `json:"metadata_ref"`
}

// EscrowBalanceResponse - accumulated escrow for an event
type EscrowBalanceResponse struct {
	EventID uint64 `json:"event_id"`
	Balance uint64 `json:"balance"`
}

// RoleRequest - request body for grant/revoke of the organizer role
type RoleRequest struct {
	Account AccountID `json:"account" binding:"required"`
}

// RoleResponse - role membership query result
type RoleResponse struct {
	Account AccountID `json:"account"`
	Role    Role      `json:"role"`
	Granted bool      `json:"granted"`
}
