package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Was1f/UrbanFix-sub001/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	InsertOne(ctx context.Context, n models.Notification) (primitive.ObjectID, error)
	FindByRecipient(ctx context.Context, recipient string, unreadOnly bool, limit, page int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipient string) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, recipient string) error
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (c *notificationDatabase) InsertOne(ctx context.Context, n models.Notification) (primitive.ObjectID, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, err := c.db.Collection(notificationName).InsertOne(ctx, n); err != nil {
		return primitive.NilObjectID, err
	}
	return n.ID, nil
}

func (c *notificationDatabase) FindByRecipient(ctx context.Context, recipient string, unreadOnly bool, limit, page int) ([]models.Notification, error) {
	filter := bson.M{"recipient": recipient}
	if unreadOnly {
		filter["read"] = false
	}
	opts := newestFirst(newMongoPaginate(limit, page).getPaginatedOpts())

	cursor, err := c.db.Collection(notificationName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (c *notificationDatabase) CountUnread(ctx context.Context, recipient string) (int64, error) {
	return c.db.Collection(notificationName).CountDocuments(ctx, bson.M{"recipient": recipient, "read": false})
}

func (c *notificationDatabase) MarkRead(ctx context.Context, id primitive.ObjectID, recipient string) error {
	res, err := c.db.Collection(notificationName).UpdateOne(ctx,
		bson.M{"_id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureNotificationIndexes creates the inbox index
func EnsureNotificationIndexes(ctx context.Context, db DatabaseHelper) error {
	return db.Collection(notificationName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}
