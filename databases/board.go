package databases

// go generate: mockery --name BoardDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Was1f/UrbanFix-sub001/models"
)

const boardName = "boards"

// BoardDatabase contains the methods to use with the board database
type BoardDatabase interface {
	Ensure(ctx context.Context, title string) (*models.Board, error)
	IncrementPostCount(ctx context.Context, title string, delta int64) error
	SetPostCount(ctx context.Context, title string, count int64) (*models.Board, error)
	FindByTitle(ctx context.Context, title string) (*models.Board, error)
	FindAll(ctx context.Context) ([]models.Board, error)
}

type boardDatabase struct {
	db DatabaseHelper
}

// NewBoardDatabase initializes a new instance of board database with the provided db connection
func NewBoardDatabase(db DatabaseHelper) BoardDatabase {
	return &boardDatabase{
		db: db,
	}
}

func (c *boardDatabase) Ensure(ctx context.Context, title string) (*models.Board, error) {
	b := &models.Board{}
	err := c.db.Collection(boardName).FindOneAndUpdate(ctx,
		bson.M{"title": title},
		bson.M{"$setOnInsert": bson.M{"title": title, "postCount": int64(0), "createdAt": time.Now().UTC()}},
		afterUpdate().SetUpsert(true),
	).Decode(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *boardDatabase) IncrementPostCount(ctx context.Context, title string, delta int64) error {
	_, err := c.db.Collection(boardName).UpdateOne(ctx,
		bson.M{"title": title},
		bson.M{
			"$inc":         bson.M{"postCount": delta},
			"$setOnInsert": bson.M{"title": title, "createdAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (c *boardDatabase) SetPostCount(ctx context.Context, title string, count int64) (*models.Board, error) {
	now := time.Now().UTC()
	b := &models.Board{}
	err := c.db.Collection(boardName).FindOneAndUpdate(ctx,
		bson.M{"title": title},
		bson.M{
			"$set":         bson.M{"postCount": count, "reconciledAt": now},
			"$setOnInsert": bson.M{"title": title, "createdAt": now},
		},
		afterUpdate().SetUpsert(true),
	).Decode(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *boardDatabase) FindByTitle(ctx context.Context, title string) (*models.Board, error) {
	b := &models.Board{}
	if err := c.db.Collection(boardName).FindOne(ctx, bson.M{"title": title}).Decode(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *boardDatabase) FindAll(ctx context.Context) ([]models.Board, error) {
	cursor, err := c.db.Collection(boardName).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var boards []models.Board
	if err := cursor.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// EnsureBoardIndexes makes the board title unique
func EnsureBoardIndexes(ctx context.Context, db DatabaseHelper) error {
	return db.Collection(boardName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}
