package workflow

import (
	"context"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
)

// ListUsers returns every registered user. Admin only.
func (s *Service) ListUsers(ctx context.Context, principal domain.Principal) ([]model.User, error) {
	if !principal.IsAdmin() {
		return nil, domain.Forbiddenf("not authorized to list users")
	}
	return s.users.List(ctx)
}

// UpdateUserRole changes a user's role. Admin only.
func (s *Service) UpdateUserRole(ctx context.Context, principal domain.Principal, id uuid.UUID, role string) (*model.User, error) {
	if !principal.IsAdmin() {
		return nil, domain.Forbiddenf("not authorized to change user roles")
	}
	if !domain.ValidRole(role) {
		return nil, domain.InvalidInputf("invalid role specified")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFoundf("user not found with id %s", id)
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// DeleteUser removes a user. Admin only; refused while the user leads any
// project.
func (s *Service) DeleteUser(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return domain.Forbiddenf("not authorized to delete users")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFoundf("user not found with id %s", id)
	}

	led, err := s.projects.CountLedBy(ctx, id)
	if err != nil {
		return err
	}
	if led > 0 {
		return domain.Conflictf("user still leads %d project(s); reassign them first", led)
	}

	return s.users.Delete(ctx, id)
}

// CompletedTasksReport aggregates completed task counts per project,
// optionally restricted by creation date. Manager or admin only.
func (s *Service) CompletedTasksReport(ctx context.Context, principal domain.Principal, start, end *time.Time) ([]repository.CompletedCount, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, domain.Forbiddenf("not authorized to access reports")
	}
	return s.tasks.CompletedPerProject(ctx, start, end)
}
