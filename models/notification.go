package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType names what happened
type NotificationType string

// Notification types
const (
	NotificationLike         NotificationType = "like"
	NotificationComment      NotificationType = "comment"
	NotificationPollVote     NotificationType = "poll_vote"
	NotificationEventRSVP    NotificationType = "event_rsvp"
	NotificationVolunteer    NotificationType = "volunteer_signup"
	NotificationDonation     NotificationType = "donation"
	NotificationHelpOffered  NotificationType = "help_offered"
	NotificationHelpAccepted NotificationType = "help_accepted"
	NotificationHelpStatus   NotificationType = "help_status"
	NotificationModeration   NotificationType = "moderation"
	NotificationLeaderboard  NotificationType = "leaderboard"
)

// Notification priorities
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// SystemSender is the sender of notifications not caused by a user
const SystemSender = "system"

// Notification holds the structure for the notifications collection in mongo.
// Only Read changes after creation.
type Notification struct {
	ID                  primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Recipient           string              `json:"recipient" bson:"recipient"`
	Sender              string              `json:"sender" bson:"sender"`
	Type                NotificationType    `json:"type" bson:"type"`
	RelatedDiscussionID *primitive.ObjectID `json:"relatedDiscussionId,omitempty" bson:"relatedDiscussionId,omitempty"`
	Title               string              `json:"title" bson:"title"`
	Message             string              `json:"message" bson:"message"`
	Read                bool                `json:"read" bson:"read"`
	Priority            string              `json:"priority" bson:"priority"`
	CreatedAt           time.Time           `json:"createdAt" bson:"createdAt"`
}
