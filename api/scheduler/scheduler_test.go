package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Was1f/UrbanFix-sub001/boards"
	"github.com/Was1f/UrbanFix-sub001/databases/memstore"
	"github.com/Was1f/UrbanFix-sub001/ledger"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/notifications"
)

func newTestScheduler(store *memstore.Store) *Scheduler {
	return NewScheduler(
		ledger.New(store.Users()),
		boards.NewRegistry(store.Boards(), store.Discussions()),
		notifications.New(store.Notifications()),
		store.Keys(),
		365*24*time.Hour,
	)
}

func TestWeeklyLeaderboardNotifiesTopThree(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	users := store.Users()
	for i, id := range []string{"a", "b", "c", "d"} {
		_, err := users.InsertOne(ctx, models.User{Identity: id, Name: id})
		require.NoError(t, err)
		require.NoError(t, users.AwardPoints(ctx, id, models.PointsEntry{Date: time.Now().UTC(), Points: int64(10 * (i + 1))}))
	}
	s := newTestScheduler(store)

	require.NoError(t, s.weeklyLeaderboard(ctx))

	all := store.AllNotifications()
	require.Len(t, all, 3)
	var recipients []string
	for _, n := range all {
		recipients = append(recipients, n.Recipient)
		assert.Equal(t, models.PriorityHigh, n.Priority)
		assert.Equal(t, models.NotificationLeaderboard, n.Type)
	}
	assert.ElementsMatch(t, []string{"d", "c", "b"}, recipients)
}

func TestReconcileBoards(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Boards().IncrementPostCount(ctx, "X", 7))
	s := newTestScheduler(store)

	require.NoError(t, s.reconcileBoards(ctx))

	b, err := store.Boards().FindByTitle(ctx, "X")
	require.NoError(t, err)
	assert.Zero(t, b.PostCount)
}

func TestRunLockedSkipsWhenHeld(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newTestScheduler(store)

	ok, err := store.Keys().SetNX(ctx, "lock:job", "other-instance", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ran := false
	s.runLocked("job", func(context.Context) error {
		ran = true
		return nil
	})
	assert.False(t, ran)

	owner, err := store.Keys().Get(ctx, "lock:job")
	require.NoError(t, err)
	assert.Equal(t, "other-instance", owner)
}

func TestRunLockedReleasesLock(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newTestScheduler(store)

	ran := false
	s.runLocked("job", func(context.Context) error {
		ran = true
		return nil
	})
	assert.True(t, ran)

	_, err := store.Keys().Get(ctx, "lock:job")
	assert.Error(t, err)
}
