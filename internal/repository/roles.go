package repository

import (
	"context"

	"gatepass/internal/database"
	"gatepass/internal/models"
)

type RoleRepository struct {
	db *database.DB
}

func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// RecordGrant journals a grant or revoke of a role. action is "grant"
// or "revoke".
func (r *RoleRepository) RecordGrant(ctx context.Context, account models.AccountID, role models.Role, action string, grantedBy models.AccountID) error {
	query := `
		INSERT INTO role_grants (account, role, action, granted_by)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, account, role, action, grantedBy)
	return err
}
