package databases

// go generate: mockery --name DiscussionDatabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Was1f/UrbanFix-sub001/models"
)

const discussionName = "discussions"

// DiscussionDatabase contains the methods to use with the discussion database.
// Every mutating method is a single conditional update: it returns ErrNoMatch
// when the document is missing or not in the state the caller expected, and
// the updated document otherwise.
type DiscussionDatabase interface {
	InsertOne(ctx context.Context, d models.Discussion) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error)
	Find(ctx context.Context, q models.DiscussionQuery) ([]models.Discussion, error)
	CountByLocation(ctx context.Context, location string) (int64, error)
	DeleteByAuthor(ctx context.Context, id primitive.ObjectID, authorIdentity string) error

	AddLike(ctx context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error)
	RemoveLike(ctx context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error)
	CastVote(ctx context.Context, id primitive.ObjectID, identity string, option int) (*models.Discussion, error)
	SwitchVote(ctx context.Context, id primitive.ObjectID, identity string, from, to int) (*models.Discussion, error)
	JoinRoster(ctx context.Context, id primitive.ObjectID, t models.DiscussionType, identity string) (*models.Discussion, error)
	LeaveRoster(ctx context.Context, id primitive.ObjectID, t models.DiscussionType, identity string) (*models.Discussion, error)
	AddDonation(ctx context.Context, id primitive.ObjectID, donor models.Donor) (*models.Discussion, error)
	AddHelper(ctx context.Context, id primitive.ObjectID, helper models.Helper) (*models.Discussion, error)
	RemoveHelper(ctx context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error)
	SetHelperStatus(ctx context.Context, id primitive.ObjectID, identity string, from, to models.HelperStatus) (*models.Discussion, error)
	ResolveHelp(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error)
	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Discussion, error)
	ClaimReward(ctx context.Context, id primitive.ObjectID, key string) (bool, error)

	ClaimReport(ctx context.Context, id, reportID primitive.ObjectID) (*models.Discussion, error)
	SettleReport(ctx context.Context, id, reportID primitive.ObjectID, status models.DiscussionStatus, keepClaim bool) (*models.Discussion, error)
}

type discussionDatabase struct {
	db DatabaseHelper
}

// NewDiscussionDatabase initializes a new instance of discussion database with the provided db connection
func NewDiscussionDatabase(db DatabaseHelper) DiscussionDatabase {
	return &discussionDatabase{
		db: db,
	}
}

// rosterFields returns the member list and count paths for an RSVP type
func rosterFields(t models.DiscussionType) (string, string, error) {
	switch t {
	case models.DiscussionTypeEvent:
		return "event.attendees", "event.attendeeCount", nil
	case models.DiscussionTypeVolunteer:
		return "volunteer.volunteers", "volunteer.volunteerCount", nil
	}
	return "", "", fmt.Errorf("discussion type %q has no roster", t)
}

func (c *discussionDatabase) coll() CollectionHelper {
	return c.db.Collection(discussionName)
}

func (c *discussionDatabase) InsertOne(ctx context.Context, d models.Discussion) (primitive.ObjectID, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.EnsureCollections()
	if _, err := c.coll().InsertOne(ctx, d); err != nil {
		return primitive.NilObjectID, err
	}
	return d.ID, nil
}

func (c *discussionDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	d := &models.Discussion{}
	if err := c.coll().FindOne(ctx, bson.M{"_id": id}).Decode(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *discussionDatabase) Find(ctx context.Context, q models.DiscussionQuery) ([]models.Discussion, error) {
	filter := bson.M{"status": bson.M{"$ne": models.DiscussionStatusRemoved}}
	if q.Location != "" {
		filter["location"] = q.Location
	}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.Author != "" {
		filter["authorIdentity"] = q.Author
		filter["anonymous"] = bson.M{"$ne": true}
	}
	opts := newestFirst(newMongoPaginate(q.Limit, q.Page).getPaginatedOpts())

	cursor, err := c.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var discussions []models.Discussion
	if err := cursor.All(ctx, &discussions); err != nil {
		return nil, err
	}
	return discussions, nil
}

func (c *discussionDatabase) CountByLocation(ctx context.Context, location string) (int64, error) {
	return c.coll().CountDocuments(ctx, bson.M{
		"location": location,
		"status":   bson.M{"$ne": models.DiscussionStatusRemoved},
	})
}

func (c *discussionDatabase) DeleteByAuthor(ctx context.Context, id primitive.ObjectID, authorIdentity string) error {
	n, err := c.coll().DeleteOne(ctx, bson.M{"_id": id, "authorIdentity": authorIdentity})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoMatch
	}
	return nil
}

// apply runs a conditional update and returns the document after it
func (c *discussionDatabase) apply(ctx context.Context, filter bson.M, update bson.M) (*models.Discussion, error) {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = time.Now().UTC()

	d := &models.Discussion{}
	err := c.coll().FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(d)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *discussionDatabase) AddLike(ctx context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{"_id": id, "likes": bson.M{"$ne": identity}},
		bson.M{"$addToSet": bson.M{"likes": identity}},
	)
}

func (c *discussionDatabase) RemoveLike(ctx context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{"_id": id, "likes": identity},
		bson.M{"$pull": bson.M{"likes": identity}},
	)
}

func (c *discussionDatabase) CastVote(ctx context.Context, id primitive.ObjectID, identity string, option int) (*models.Discussion, error) {
	tally := fmt.Sprintf("poll.tallies.%d", option)
	return c.apply(ctx,
		bson.M{
			"_id":                  id,
			"type":                 models.DiscussionTypePoll,
			"poll.voters.identity": bson.M{"$ne": identity},
			tally:                  bson.M{"$exists": true},
		},
		bson.M{
			"$inc":  bson.M{tally: 1},
			"$push": bson.M{"poll.voters": models.PollVoter{Identity: identity, Option: option}},
		},
	)
}

func (c *discussionDatabase) SwitchVote(ctx context.Context, id primitive.ObjectID, identity string, from, to int) (*models.Discussion, error) {
	if from == to {
		return nil, fmt.Errorf("switch vote from %d to itself", from)
	}
	toTally := fmt.Sprintf("poll.tallies.%d", to)
	return c.apply(ctx,
		bson.M{
			"_id":         id,
			"type":        models.DiscussionTypePoll,
			"poll.voters": bson.M{"$elemMatch": bson.M{"identity": identity, "option": from}},
			toTally:       bson.M{"$exists": true},
		},
		bson.M{
			"$inc": bson.M{
				fmt.Sprintf("poll.tallies.%d", from): -1,
				toTally:                              1,
			},
			"$set": bson.M{"poll.voters.$.option": to},
		},
	)
}

func (c *discussionDatabase) JoinRoster(ctx context.Context, id primitive.ObjectID, t models.DiscussionType, identity string) (*models.Discussion, error) {
	list, count, err := rosterFields(t)
	if err != nil {
		return nil, err
	}
	return c.apply(ctx,
		bson.M{"_id": id, "type": t, list: bson.M{"$ne": identity}},
		bson.M{
			"$addToSet": bson.M{list: identity},
			"$inc":      bson.M{count: 1},
		},
	)
}

func (c *discussionDatabase) LeaveRoster(ctx context.Context, id primitive.ObjectID, t models.DiscussionType, identity string) (*models.Discussion, error) {
	list, count, err := rosterFields(t)
	if err != nil {
		return nil, err
	}
	return c.apply(ctx,
		bson.M{"_id": id, "type": t, list: identity},
		bson.M{
			"$pull": bson.M{list: identity},
			"$inc":  bson.M{count: -1},
		},
	)
}

func (c *discussionDatabase) AddDonation(ctx context.Context, id primitive.ObjectID, donor models.Donor) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{
			"_id":                    id,
			"type":                   models.DiscussionTypeDonation,
			"donation.currentAmount": bson.M{"$lte": models.MaxDonationTotal - donor.Amount},
		},
		bson.M{
			"$push": bson.M{"donation.donors": donor},
			"$inc":  bson.M{"donation.currentAmount": donor.Amount},
		},
	)
}

func (c *discussionDatabase) AddHelper(ctx context.Context, id primitive.ObjectID, helper models.Helper) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{"_id": id, "type": models.DiscussionTypeReport, "report.helpers.identity": bson.M{"$ne": helper.Identity}},
		bson.M{"$push": bson.M{"report.helpers": helper}},
	)
}

func (c *discussionDatabase) RemoveHelper(ctx context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{
			"_id":  id,
			"type": models.DiscussionTypeReport,
			"report.helpers": bson.M{"$elemMatch": bson.M{
				"identity": identity,
				"status":   bson.M{"$in": bson.A{models.HelperOffered, models.HelperAccepted}},
			}},
		},
		bson.M{"$pull": bson.M{"report.helpers": bson.M{"identity": identity}}},
	)
}

func (c *discussionDatabase) SetHelperStatus(ctx context.Context, id primitive.ObjectID, identity string, from, to models.HelperStatus) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{
			"_id":            id,
			"type":           models.DiscussionTypeReport,
			"report.helpers": bson.M{"$elemMatch": bson.M{"identity": identity, "status": from}},
		},
		bson.M{"$set": bson.M{
			"report.helpers.$.status":    to,
			"report.helpers.$.updatedAt": time.Now().UTC(),
		}},
	)
}

func (c *discussionDatabase) ResolveHelp(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{"_id": id, "type": models.DiscussionTypeReport},
		bson.M{"$set": bson.M{"report.helpNeeded": false}},
	)
}

func (c *discussionDatabase) AddComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": comment}},
	)
}

// ClaimReward records key as rewarded and reports whether this call was the
// first to do so
func (c *discussionDatabase) ClaimReward(ctx context.Context, id primitive.ObjectID, key string) (bool, error) {
	res, err := c.coll().UpdateOne(ctx,
		bson.M{"_id": id, "rewarded": bson.M{"$ne": key}},
		bson.M{"$addToSet": bson.M{"rewarded": key}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (c *discussionDatabase) ClaimReport(ctx context.Context, id, reportID primitive.ObjectID) (*models.Discussion, error) {
	return c.apply(ctx,
		bson.M{
			"_id":          id,
			"openReportId": nil,
			"status":       bson.M{"$ne": models.DiscussionStatusRemoved},
		},
		bson.M{"$set": bson.M{
			"openReportId": reportID,
			"status":       models.DiscussionStatusFlagged,
		}},
	)
}

func (c *discussionDatabase) SettleReport(ctx context.Context, id, reportID primitive.ObjectID, status models.DiscussionStatus, keepClaim bool) (*models.Discussion, error) {
	update := bson.M{"$set": bson.M{"status": status}}
	if !keepClaim {
		update["$unset"] = bson.M{"openReportId": ""}
	}
	return c.apply(ctx, bson.M{"_id": id, "openReportId": reportID}, update)
}

// EnsureDiscussionIndexes creates the indexes listings and counts rely on
func EnsureDiscussionIndexes(ctx context.Context, db DatabaseHelper) error {
	return db.Collection(discussionName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "authorIdentity", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}}},
	})
}
