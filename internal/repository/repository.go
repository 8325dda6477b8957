package repository

import (
	"gatepass/internal/database"
)

// Repositories is the write-behind archive of the in-memory core.
// The engine's state is authoritative; these tables exist for audit
// and restart, and archive errors are logged, never surfaced.
type Repositories struct {
	Events  *EventRepository
	Tickets *TicketRepository
	Roles   *RoleRepository
	Escrow  *EscrowRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:  NewEventRepository(db),
		Tickets: NewTicketRepository(db),
		Roles:   NewRoleRepository(db),
		Escrow:  NewEscrowRepository(db),
	}
}
