package boards_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Was1f/UrbanFix-sub001/boards"
	"github.com/Was1f/UrbanFix-sub001/databases/memstore"
	"github.com/Was1f/UrbanFix-sub001/models"
)

func seed(t *testing.T, store *memstore.Store, reg *boards.Registry, location string) models.Discussion {
	ctx := context.Background()
	_, err := reg.Ensure(ctx, location)
	require.NoError(t, err)
	d := models.Discussion{
		Title:          "post",
		Type:           models.DiscussionTypeEvent,
		AuthorIdentity: "alice",
		Location:       location,
		Status:         models.DiscussionStatusActive,
		Event:          &models.Event{},
	}
	id, err := store.Discussions().InsertOne(ctx, d)
	require.NoError(t, err)
	require.NoError(t, reg.Created(ctx, location))
	d.ID = id
	return d
}

func TestRegistry_ReconcileAfterCreatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	reg := boards.NewRegistry(store.Boards(), store.Discussions())

	var posts []models.Discussion
	for i := 0; i < 5; i++ {
		posts = append(posts, seed(t, store, reg, "X"))
	}
	for _, d := range posts[:2] {
		require.NoError(t, store.Discussions().DeleteByAuthor(ctx, d.ID, "alice"))
		require.NoError(t, reg.Deleted(ctx, "X"))
	}

	// drift the cache on purpose
	require.NoError(t, store.Boards().IncrementPostCount(ctx, "X", 40))

	b, err := reg.Reconcile(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.PostCount)
	assert.NotNil(t, b.ReconciledAt)
}

func TestRegistry_EnsureRejectsBlankTitle(t *testing.T) {
	store := memstore.New()
	reg := boards.NewRegistry(store.Boards(), store.Discussions())

	_, err := reg.Ensure(context.Background(), "  ")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"location"}, verr.Fields)
}

func TestRegistry_GetUnknownBoard(t *testing.T) {
	store := memstore.New()
	reg := boards.NewRegistry(store.Boards(), store.Discussions())

	_, err := reg.Get(context.Background(), "nowhere")
	var nf *models.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRegistry_ReconcileAllCountsDrift(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	reg := boards.NewRegistry(store.Boards(), store.Discussions())

	seed(t, store, reg, "A")
	seed(t, store, reg, "B")
	require.NoError(t, store.Boards().IncrementPostCount(ctx, "B", 2))

	drifted, err := reg.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, drifted)

	list, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)
	assert.Equal(t, int64(1), list[1].PostCount)
}
