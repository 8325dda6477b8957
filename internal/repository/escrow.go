package repository

import (
	"context"

	"gatepass/internal/database"
	"gatepass/internal/models"
)

type EscrowRepository struct {
	db *database.DB
}

func NewEscrowRepository(db *database.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// RecordMovement journals an escrow credit or withdrawal. movement is
// "credit" or "withdraw"; account is the minter or the organizer paid
// out.
func (r *EscrowRepository) RecordMovement(ctx context.Context, eventID uint64, amount uint64, movement string, account models.AccountID) error {
	query := `
		INSERT INTO escrow_movements (event_id, amount, movement, account)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, eventID, amount, movement, account)
	return err
}
