package access

import (
	"sync"

	apperrors "gatepass/internal/errors"
	"gatepass/internal/models"
)

// Registry tracks which accounts hold the admin and organizer
// capabilities. Pure authorization lookup, no money.
type Registry struct {
	mu         sync.RWMutex
	admins     map[models.AccountID]struct{}
	organizers map[models.AccountID]struct{}
}

// NewRegistry creates a registry with the given initial admin. Admin
// is set once here and cannot be revoked afterwards.
func NewRegistry(admin models.AccountID) *Registry {
	return &Registry{
		admins:     map[models.AccountID]struct{}{admin: {}},
		organizers: make(map[models.AccountID]struct{}),
	}
}

// GrantOrganizer gives target the organizer capability. Only an admin
// may grant.
func (r *Registry) GrantOrganizer(caller, target models.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[caller]; !ok {
		return apperrors.ErrUnauthorized
	}
	if target.IsZero() {
		return apperrors.ErrInvalidAccount
	}

	r.organizers[target] = struct{}{}
	return nil
}

// RevokeOrganizer removes the organizer capability from target.
// Revoking a non-organizer is a no-op success.
func (r *Registry) RevokeOrganizer(caller, target models.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[caller]; !ok {
		return apperrors.ErrUnauthorized
	}

	delete(r.organizers, target)
	return nil
}

// HasRole reports whether account holds role. Never fails.
func (r *Registry) HasRole(role models.Role, account models.AccountID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch role {
	case models.RoleAdmin:
		_, ok := r.admins[account]
		return ok
	case models.RoleOrganizer:
		_, ok := r.organizers[account]
		return ok
	}
	return false
}
