package models

import "time"

// NATS notification subjects. These are observational only; the
// service never consumes its own notifications.
const (
	SubjectEventCreated    = "event.created"
	SubjectTicketMinted    = "ticket.minted"
	SubjectTicketResold    = "ticket.resold"
	SubjectEscrowWithdrawn = "escrow.withdrawn"
)

// EventCreatedNotification is published after a successful createEvent
type EventCreatedNotification struct {
	EventID     uint64    `json:"event_id"`
	Name        string    `json:"name"`
	MetadataRef string    `json:"metadata_ref"`
	Date        time.Time `json:"date"`
	Price       uint64    `json:"price"`
	Capacity    uint64    `json:"capacity"`
	Organizer   AccountID `json:"organizer"`
	Timestamp   time.Time `json:"timestamp"`
}

// TicketMintedNotification is published after a successful mint
type TicketMintedNotification struct {
	TicketID  uint64    `json:"ticket_id"`
	EventID   uint64    `json:"event_id"`
	Owner     AccountID `json:"owner"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketResoldNotification is published after the one permitted resale
type TicketResoldNotification struct {
	TicketID      uint64    `json:"ticket_id"`
	EventID       uint64    `json:"event_id"`
	Seller        AccountID `json:"seller"`
	Buyer         AccountID `json:"buyer"`
	PaymentAmount uint64    `json:"payment_amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// EscrowWithdrawnNotification is published after a successful withdraw
type EscrowWithdrawnNotification struct {
	EventID   uint64    `json:"event_id"`
	Organizer AccountID `json:"organizer"`
	Amount    uint64    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
