package databases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/databases/mocks"
	"github.com/Was1f/UrbanFix-sub001/models"
)

func userDB(coll *mocks.CollectionHelper) databases.UserDatabase {
	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Collection", "users").Return(coll)
	return databases.NewUserDatabase(dbHelper)
}

func TestUserDatabase_FindByIdentity(t *testing.T) {
	srHelperErr := &mocks.SingleResultHelper{}
	srHelperErr.On("Decode", mock.Anything).Return(databases.ErrNotFound)

	srHelperCorrect := &mocks.SingleResultHelper{}
	srHelperCorrect.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.User)
		arg.Identity = "alice"
		arg.Name = "mocked-user"
	})

	coll := &mocks.CollectionHelper{}
	coll.On("FindOne", context.Background(), bson.M{"identity": "nobody"}).Return(srHelperErr)
	coll.On("FindOne", context.Background(), bson.M{"identity": "alice"}).Return(srHelperCorrect)

	db := userDB(coll)

	u, err := db.FindByIdentity(context.Background(), "nobody")
	assert.Nil(t, u)
	assert.True(t, databases.IsNotFound(err))

	u, err = db.FindByIdentity(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "mocked-user", u.Name)
}

func TestUserDatabase_InsertOneDuplicate(t *testing.T) {
	coll := &mocks.CollectionHelper{}
	coll.On("InsertOne", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Points.History != nil && !u.ID.IsZero()
	})).Return(nil, databases.ErrDuplicate)

	_, err := userDB(coll).InsertOne(context.Background(), models.User{Identity: "alice"})
	assert.ErrorIs(t, err, databases.ErrDuplicate)
	coll.AssertExpectations(t)
}

func TestUserDatabase_AwardPointsKeepsTotalInStep(t *testing.T) {
	entry := models.PointsEntry{Date: time.Now().UTC(), Points: 10, Action: models.ActionPostCreated}
	coll := &mocks.CollectionHelper{}
	coll.On("UpdateOne", mock.Anything,
		bson.M{"identity": "alice"},
		bson.M{
			"$push": bson.M{"points.history": entry},
			"$inc":  bson.M{"points.totalPoints": int64(10)},
		},
	).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	coll.On("UpdateOne", mock.Anything, bson.M{"identity": "ghost"}, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)

	db := userDB(coll)
	assert.NoError(t, db.AwardPoints(context.Background(), "alice", entry))
	assert.ErrorIs(t, db.AwardPoints(context.Background(), "ghost", entry), databases.ErrNotFound)
}

func TestUserDatabase_PruneHistory(t *testing.T) {
	before := time.Now().UTC().AddDate(-1, 0, 0)
	coll := &mocks.CollectionHelper{}
	coll.On("UpdateMany", mock.Anything,
		bson.M{"points.history.date": bson.M{"$lt": before}},
		mock.AnythingOfType("mongo.Pipeline"),
	).Return(&mongo.UpdateResult{ModifiedCount: 3}, nil)

	n, err := userDB(coll).PruneHistory(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUserDatabase_LeaderboardRanks(t *testing.T) {
	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.LeaderboardEntry)
		*arg = []models.LeaderboardEntry{{Identity: "alice", Points: 30}, {Identity: "bob", Points: 20}}
	})
	cursor.On("Close", mock.Anything).Return(nil)

	coll := &mocks.CollectionHelper{}
	coll.On("Aggregate", mock.Anything, mock.Anything).Return(cursor, nil)

	entries, err := userDB(coll).Leaderboard(context.Background(), models.LeaderboardQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
}
