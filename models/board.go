package models

import "time"

// Board holds the structure for the boards collection in mongo. PostCount is a
// cache of the number of discussions in the location.
type Board struct {
	Title        string     `json:"title" bson:"title"`
	PostCount    int64      `json:"postCount" bson:"postCount"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	ReconciledAt *time.Time `json:"reconciledAt,omitempty" bson:"reconciledAt,omitempty"`
}
