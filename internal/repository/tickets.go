package repository

import (
	"context"

	"gatepass/internal/database"
	"gatepass/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Archive stores a snapshot of a freshly minted ticket
func (r *TicketRepository) Archive(ctx context.Context, ticket models.Ticket) error {
	query := `
		INSERT INTO tickets_archive (id, event_id, owner, resold)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.EventID,
		ticket.Owner,
		ticket.Resold,
	)
	return err
}

// RecordResale updates the archived ticket after its one permitted
// resale
func (r *TicketRepository) RecordResale(ctx context.Context, ticketID uint64, newOwner models.AccountID) error {
	query := `
		UPDATE tickets_archive
		SET owner = $2, resold = TRUE, updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, ticketID, newOwner)
	return err
}
