package models

import "time"

// AccountID is the opaque handle the identity layer assigns to a
// participant. The empty string is the zero account and is never a
// valid participant.
type AccountID string

// IsZero reports whether the account is the null account
func (a AccountID) IsZero() bool {
	return a == ""
}

// Role is a grantable capability
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
)

// Event represents a ticketed event. MintedCount is the only field
// that changes after creation; events are never deleted.
type Event struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	MetadataRef string    `json:"metadata_ref"`
	Date        time.Time `json:"date"`
	Price       uint64    `json:"price"`
	Capacity    uint64    `json:"capacity"`
	MintedCount uint64    `json:"minted_count"`
	Organizer   AccountID `json:"organizer"`
}

// Ticket represents ownership of one slot of an event. Resold flips
// false to true exactly once and never reverts; ownership changes only
// through the resale path.
type Ticket struct {
	ID      uint64    `json:"id"`
	EventID uint64    `json:"event_id"`
	Owner   AccountID `json:"owner"`
	Resold  bool      `json:"resold"`
}
