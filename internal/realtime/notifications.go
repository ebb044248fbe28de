package realtime

import (
	"context"
	"fmt"
	"log"

	"github.com/taskboard/taskboard/internal/database"
)

// NotificationSynchronizer keeps every client's unread badge converged on the
// persisted notification ledger. The count pushed to a user's room is always
// re-read from storage after the triggering write; nothing here keeps a
// running counter that could drift under concurrent writers.
type NotificationSynchronizer struct {
	log         *log.Logger
	db          database.TaskboardRepository
	broadcaster *Broadcaster
}

func NewNotificationSynchronizer(logger *log.Logger, db database.TaskboardRepository, b *Broadcaster) *NotificationSynchronizer {
	return &NotificationSynchronizer{
		log:         logger,
		db:          db,
		broadcaster: b,
	}
}

// OnNotificationMutated recomputes the authoritative unread count for the
// user and publishes it to their personal room. This is the only path that
// emits a notification-count event.
func (ns *NotificationSynchronizer) OnNotificationMutated(ctx context.Context, userId int) error {
	count, err := ns.db.UnreadNotificationCount(ctx, userId)
	if err != nil {
		return fmt.Errorf("unread count for user %d: %w", userId, err)
	}

	ns.broadcaster.Publish(NewNotificationCount(userId, count))
	return nil
}

// MarkRead delegates the flag mutation to the ledger, then recomputes
// unconditionally. A retry that changes nothing still converges on the
// correct count.
func (ns *NotificationSynchronizer) MarkRead(ctx context.Context, userId, notificationId int) error {
	if err := ns.db.MarkNotificationRead(ctx, userId, notificationId); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	return ns.OnNotificationMutated(ctx, userId)
}

func (ns *NotificationSynchronizer) MarkAllRead(ctx context.Context, userId int) error {
	if err := ns.db.MarkAllNotificationsRead(ctx, userId); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return ns.OnNotificationMutated(ctx, userId)
}
