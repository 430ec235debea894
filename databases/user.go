package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Was1f/UrbanFix-sub001/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database
type UserDatabase interface {
	FindByIdentity(ctx context.Context, identity string) (*models.User, error)
	InsertOne(ctx context.Context, user models.User) (primitive.ObjectID, error)
	UpdateName(ctx context.Context, identity, name string) (*models.User, error)
	AwardPoints(ctx context.Context, identity string, entry models.PointsEntry) error
	Leaderboard(ctx context.Context, q models.LeaderboardQuery) ([]models.LeaderboardEntry, error)
	PruneHistory(ctx context.Context, before time.Time) (int64, error)
}

type userDatabase struct {
	db DatabaseHelper
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		db: db,
	}
}

func (u *userDatabase) FindByIdentity(ctx context.Context, identity string) (*models.User, error) {
	user := &models.User{}
	if err := u.db.Collection(userName).FindOne(ctx, bson.M{"identity": identity}).Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userDatabase) InsertOne(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Points.History == nil {
		user.Points.History = []models.PointsEntry{}
	}
	if _, err := u.db.Collection(userName).InsertOne(ctx, user); err != nil {
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (u *userDatabase) UpdateName(ctx context.Context, identity, name string) (*models.User, error) {
	user := &models.User{}
	err := u.db.Collection(userName).FindOneAndUpdate(ctx,
		bson.M{"identity": identity},
		bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}},
		afterUpdate(),
	).Decode(user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AwardPoints appends the entry and bumps the total in one update so the
// total always equals the pruned carry plus the history sum
func (u *userDatabase) AwardPoints(ctx context.Context, identity string, entry models.PointsEntry) error {
	res, err := u.db.Collection(userName).UpdateOne(ctx,
		bson.M{"identity": identity},
		bson.M{
			"$push": bson.M{"points.history": entry},
			"$inc":  bson.M{"points.totalPoints": entry.Points},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (u *userDatabase) Leaderboard(ctx context.Context, q models.LeaderboardQuery) ([]models.LeaderboardEntry, error) {
	limit := int64(q.Limit)
	if limit <= 0 {
		limit = 10
	}

	var pipeline mongo.Pipeline
	if q.Since.IsZero() && q.Location == "" {
		pipeline = mongo.Pipeline{
			{{Key: "$project", Value: bson.M{"_id": "$identity", "name": 1, "points": "$points.totalPoints"}}},
		}
	} else {
		match := bson.M{}
		if !q.Since.IsZero() {
			match["points.history.date"] = bson.M{"$gte": q.Since}
		}
		if q.Location != "" {
			match["points.history.location"] = q.Location
		}
		pipeline = mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$unwind", Value: "$points.history"}},
			{{Key: "$match", Value: match}},
			{{Key: "$group", Value: bson.M{
				"_id":    "$identity",
				"name":   bson.M{"$first": "$name"},
				"points": bson.M{"$sum": "$points.history.points"},
			}}},
		}
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: bson.M{"points": bson.M{"$gt": 0}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "points", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	)

	cursor, err := u.db.Collection(userName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// PruneHistory drops history entries older than before and folds their points
// into prunedPoints. The pipeline update keeps both fields consistent per
// document without a read.
func (u *userDatabase) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	old := bson.M{"$filter": bson.M{
		"input": "$points.history",
		"cond":  bson.M{"$lt": bson.A{"$$this.date", before}},
	}}
	kept := bson.M{"$filter": bson.M{
		"input": "$points.history",
		"cond":  bson.M{"$gte": bson.A{"$$this.date", before}},
	}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"points.prunedPoints": bson.M{"$add": bson.A{
				bson.M{"$ifNull": bson.A{"$points.prunedPoints", 0}},
				bson.M{"$sum": bson.M{"$map": bson.M{"input": old, "in": "$$this.points"}}},
			}},
			"points.history": kept,
		}}},
	}

	res, err := u.db.Collection(userName).UpdateMany(ctx,
		bson.M{"points.history.date": bson.M{"$lt": before}},
		update,
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// EnsureUserIndexes makes identity unique
func EnsureUserIndexes(ctx context.Context, db DatabaseHelper) error {
	return db.Collection(userName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "identity", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}

// IsNotFound reports whether err means the document does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
