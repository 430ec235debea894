package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the structure for the user collection in mongo
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Identity  string             `json:"identity" bson:"identity"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	Points    PointsAccount      `json:"points" bson:"points"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PointsAccount is the append-only reward history of a user.
// TotalPoints == PrunedPoints + sum(History[].Points).
type PointsAccount struct {
	TotalPoints  int64         `json:"totalPoints" bson:"totalPoints"`
	PrunedPoints int64         `json:"prunedPoints" bson:"prunedPoints"`
	History      []PointsEntry `json:"history" bson:"history"`
}

// PointsEntry is one reward event
type PointsEntry struct {
	Date     time.Time    `json:"date" bson:"date"`
	Points   int64        `json:"points" bson:"points"`
	Action   PointsAction `json:"action" bson:"action"`
	Location string       `json:"location,omitempty" bson:"location,omitempty"`
}

// PointsAction is a rewarded kind of participation
type PointsAction string

// Rewarded actions
const (
	ActionPostCreated     PointsAction = "PostCreated"
	ActionCommentAdded    PointsAction = "CommentAdded"
	ActionHelpOffered     PointsAction = "HelpOffered"
	ActionPostLiked       PointsAction = "PostLiked"
	ActionPollVoted       PointsAction = "PollVoted"
	ActionEventRSVP       PointsAction = "EventRSVP"
	ActionDonationMade    PointsAction = "DonationMade"
	ActionVolunteerSignup PointsAction = "VolunteerSignup"
)

// PointsSummary is the derived view of an account over the standard periods
type PointsSummary struct {
	Identity    string        `json:"identity"`
	Name        string        `json:"name"`
	TotalPoints int64         `json:"totalPoints"`
	Daily       int64         `json:"daily"`
	Weekly      int64         `json:"weekly"`
	Monthly     int64         `json:"monthly"`
	Recent      []PointsEntry `json:"recent"`
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank" bson:"-"`
	Identity string `json:"identity" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Points   int64  `json:"points" bson:"points"`
}

// LeaderboardQuery selects the window and scope of a leaderboard
type LeaderboardQuery struct {
	Since    time.Time
	Location string
	Limit    int
}
