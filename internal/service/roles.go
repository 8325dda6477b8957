package service

import (
	"context"
	"time"

	"gatepass/internal/engine"
	"gatepass/internal/logger"
	"gatepass/internal/metrics"
	"gatepass/internal/models"
	"gatepass/internal/repository"
)

type RoleService struct {
	engine *engine.Engine
	repos  *repository.Repositories
}

func NewRoleService(eng *engine.Engine, repos *repository.Repositories) *RoleService {
	return &RoleService{engine: eng, repos: repos}
}

// GrantOrganizer gives target the organizer capability and journals
// the grant
func (s *RoleService) GrantOrganizer(ctx context.Context, caller, target models.AccountID) error {
	start := time.Now()
	err := s.engine.GrantOrganizer(ctx, caller, target)
	metrics.Observe("grant_organizer", start, err)
	if err != nil {
		return err
	}

	if s.repos != nil {
		if err := s.repos.Roles.RecordGrant(ctx, target, models.RoleOrganizer, "grant", caller); err != nil {
			logger.WithContext(ctx).Error("Failed to journal role grant", "error", err, "account", target)
		}
	}

	return nil
}

// RevokeOrganizer removes the organizer capability from target and
// journals the revoke
func (s *RoleService) RevokeOrganizer(ctx context.Context, caller, target models.AccountID) error {
	start := time.Now()
	err := s.engine.RevokeOrganizer(ctx, caller, target)
	metrics.Observe("revoke_organizer", start, err)
	if err != nil {
		return err
	}

	if s.repos != nil {
		if err := s.repos.Roles.RecordGrant(ctx, target, models.RoleOrganizer, "revoke", caller); err != nil {
			logger.WithContext(ctx).Error("Failed to journal role revoke", "error", err, "account", target)
		}
	}

	return nil
}

// HasRole reports whether account holds role
func (s *RoleService) HasRole(role models.Role, account models.AccountID) bool {
	return s.engine.HasRole(role, account)
}
