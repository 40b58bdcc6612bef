// Package workflow is the orchestration core: every project, task, and
// comment operation enters here. Each operation authorizes, validates,
// commits exactly one entity mutation, and only then fires notification and
// broadcast side effects.
package workflow

import (
	"context"

	"taskflow/internal/repository"

	"github.com/google/uuid"
)

// Notifier records a durable notification for a recipient. Implementations
// are best-effort; the orchestrator never observes their failures.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, message, link string)
}

// Broadcaster delivers a live event to the subscribers of a scope.
type Broadcaster interface {
	Publish(scope, name string, payload any)
}

type Service struct {
	users       repository.UserRepositoryInterface
	projects    repository.ProjectRepositoryInterface
	tasks       repository.TaskRepositoryInterface
	comments    repository.CommentRepositoryInterface
	notifier    Notifier
	broadcaster Broadcaster
}

func NewService(
	users repository.UserRepositoryInterface,
	projects repository.ProjectRepositoryInterface,
	tasks repository.TaskRepositoryInterface,
	comments repository.CommentRepositoryInterface,
	notifier Notifier,
	broadcaster Broadcaster,
) *Service {
	return &Service{
		users:       users,
		projects:    projects,
		tasks:       tasks,
		comments:    comments,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}
