// Package notification records durable notifications and exposes the
// recipient-facing read side. Dispatch is best-effort: a failed write is
// logged and swallowed so it can never roll back the workflow mutation that
// triggered it.
package notification

import (
	"context"
	"log"

	"taskflow/internal/broadcast"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
)

type Dispatcher struct {
	repo repository.NotificationRepositoryInterface
	hub  *broadcast.Hub
}

func NewDispatcher(repo repository.NotificationRepositoryInterface, hub *broadcast.Hub) *Dispatcher {
	return &Dispatcher{repo: repo, hub: hub}
}

// Notify persists a notification for the recipient and hands a live-delivery
// hint to the hub. Fire-and-forget: nothing is returned and no failure
// propagates to the caller.
func (d *Dispatcher) Notify(ctx context.Context, recipientID uuid.UUID, message, link string) {
	if recipientID == uuid.Nil || message == "" {
		log.Printf("notification: dropping notify with empty recipient or message")
		return
	}

	n := &model.Notification{
		RecipientID: recipientID,
		Message:     message,
		Link:        link,
	}

	if err := d.repo.Create(ctx, n); err != nil {
		log.Printf("notification: failed to persist for %s: %v", recipientID, err)
		return
	}

	if d.hub != nil {
		d.hub.Publish(broadcast.UserScope(recipientID), broadcast.EventNotification, n)
	}
}
