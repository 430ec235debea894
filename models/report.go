package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportReason is why a user flagged a discussion
type ReportReason string

// Report reasons
const (
	ReasonSpam           ReportReason = "spam"
	ReasonHarassment     ReportReason = "harassment"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonScam           ReportReason = "scam"
	ReasonOther          ReportReason = "other"
)

// Valid reports whether r is a known reason
func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonHarassment, ReasonInappropriate, ReasonMisinformation, ReasonScam, ReasonOther:
		return true
	}
	return false
}

// ReportStatus is the state of a moderation report
type ReportStatus string

// Report statuses. Everything but pending is terminal.
const (
	ReportPending  ReportStatus = "pending"
	ReportApproved ReportStatus = "approved"
	ReportRejected ReportStatus = "rejected"
	ReportRemoved  ReportStatus = "removed"
	ReportResolved ReportStatus = "resolved"
)

// Terminal reports whether s is a valid review outcome
func (s ReportStatus) Terminal() bool {
	switch s {
	case ReportApproved, ReportRejected, ReportRemoved, ReportResolved:
		return true
	}
	return false
}

// KeepsClaim reports whether a report in status s still blocks new reports
// against the same discussion
func (s ReportStatus) KeepsClaim() bool {
	return s == ReportPending || s == ReportApproved
}

// ModerationReport holds the structure for the moderation_reports collection
// in mongo. It is never deleted.
type ModerationReport struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TargetDiscussionID primitive.ObjectID `json:"targetDiscussionId" bson:"targetDiscussionId"`
	Reason             ReportReason       `json:"reason" bson:"reason"`
	Details            string             `json:"details,omitempty" bson:"details,omitempty"`
	ReporterIdentity   string             `json:"reporterIdentity" bson:"reporterIdentity"`
	Status             ReportStatus       `json:"status" bson:"status"`
	AdminNotes         string             `json:"adminNotes,omitempty" bson:"adminNotes,omitempty"`
	ReviewerID         string             `json:"reviewerId,omitempty" bson:"reviewerId,omitempty"`
	ReviewedAt         *time.Time         `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	RevokedAt          *time.Time         `json:"revokedAt,omitempty" bson:"revokedAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
}

// ModerationAction is what an administrator decides on a pending report
type ModerationAction string

// Moderation actions
const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionRemove  ModerationAction = "remove"
	ActionResolve ModerationAction = "resolve"
)

// Outcome maps an action to the report status it produces
func (a ModerationAction) Outcome() (ReportStatus, bool) {
	switch a {
	case ActionApprove:
		return ReportApproved, true
	case ActionReject:
		return ReportRejected, true
	case ActionRemove:
		return ReportRemoved, true
	case ActionResolve:
		return ReportResolved, true
	}
	return "", false
}
