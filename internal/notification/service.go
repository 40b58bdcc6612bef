package notification

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
)

// recentLimit bounds how many notifications the list endpoint returns.
const recentLimit = 20

// Service is the recipient-facing read side. Every operation is scoped to
// the principal: a notification is only ever visible to its recipient.
type Service struct {
	repo repository.NotificationRepositoryInterface
}

func NewService(repo repository.NotificationRepositoryInterface) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, principal domain.Principal) ([]model.Notification, error) {
	return s.repo.ListByRecipient(ctx, principal.ID, recentLimit)
}

func (s *Service) MarkRead(ctx context.Context, principal domain.Principal, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.NotFoundf("notification %s not found", id)
	}
	if n.RecipientID != principal.ID {
		return nil, domain.Forbiddenf("not authorized to update this notification")
	}

	if !n.Read {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		n.Read = true
	}
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, principal domain.Principal) error {
	return s.repo.MarkAllRead(ctx, principal.ID)
}

func (s *Service) Delete(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return domain.NotFoundf("notification %s not found", id)
	}
	if n.RecipientID != principal.ID {
		return domain.Forbiddenf("not authorized to delete this notification")
	}

	return s.repo.Delete(ctx, id)
}
