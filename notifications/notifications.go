// Package notifications persists in-app notification records. Delivery over
// push, SMS or email happens elsewhere.
package notifications

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Dispatcher writes notifications for recipients
type Dispatcher struct {
	db  databases.NotificationDatabase
	now func() time.Time
}

// New creates a dispatcher
func New(db databases.NotificationDatabase) *Dispatcher {
	return &Dispatcher{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// PriorityFor returns the priority of a notification type
func PriorityFor(t models.NotificationType) string {
	switch t {
	case models.NotificationHelpOffered, models.NotificationHelpAccepted, models.NotificationLeaderboard:
		return models.PriorityHigh
	}
	return models.PriorityNormal
}

// Deliverable reports whether a notification from sender may reach recipient.
// Nobody is notified about their own actions and anonymous posts have no inbox.
func Deliverable(recipient, sender string) bool {
	return recipient != "" && recipient != sender && recipient != models.AnonymousName
}

// Notify stores n unless the delivery rules drop it. It reports whether a
// record was written.
func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) (bool, error) {
	if !Deliverable(n.Recipient, n.Sender) {
		return false, nil
	}
	n.ID = primitive.NilObjectID
	n.Read = false
	if n.Priority == "" {
		n.Priority = PriorityFor(n.Type)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	if _, err := d.db.InsertOne(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// List returns a page of the recipient's notifications, newest first
func (d *Dispatcher) List(ctx context.Context, recipient string, unreadOnly bool, limit, page int) ([]models.Notification, error) {
	list, err := d.db.FindByRecipient(ctx, recipient, unreadOnly, limit, page)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// UnreadCount counts the recipient's unread notifications
func (d *Dispatcher) UnreadCount(ctx context.Context, recipient string) (int64, error) {
	return d.db.CountUnread(ctx, recipient)
}

// MarkRead flips the read flag. Only the recipient may do so.
func (d *Dispatcher) MarkRead(ctx context.Context, id, recipient string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.NotFoundError{Kind: "notification", ID: id}
	}
	err = d.db.MarkRead(ctx, oid, recipient)
	if errors.Is(err, databases.ErrNotFound) {
		return &models.NotFoundError{Kind: "notification", ID: id}
	}
	return err
}
