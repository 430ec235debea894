package engagement_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Was1f/UrbanFix-sub001/boards"
	"github.com/Was1f/UrbanFix-sub001/databases/memstore"
	"github.com/Was1f/UrbanFix-sub001/engagement"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/profiles"
)

type brokenLedger struct {
	calls atomic.Int32
}

func (l *brokenLedger) Award(context.Context, string, models.PointsAction, string) error {
	l.calls.Add(1)
	return errors.New("mocked-error")
}

type brokenNotifier struct {
	calls atomic.Int32
}

func (n *brokenNotifier) Notify(context.Context, models.Notification) (bool, error) {
	n.calls.Add(1)
	return false, errors.New("mocked-error")
}

func TestInteractionsSurviveSideEffectFailures(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	prof := profiles.New(store.Users())
	for _, u := range []string{"alice", "bob"} {
		_, err := prof.Register(ctx, u, "Name "+u, "")
		require.NoError(t, err)
	}
	led, notifier := &brokenLedger{}, &brokenNotifier{}
	svc := engagement.NewService(
		store.Discussions(),
		boards.NewRegistry(store.Boards(), store.Discussions()),
		led,
		notifier,
		prof,
		engagement.Options{},
	)

	poll, err := svc.Create(ctx, "alice", engagement.Draft{
		Title: "Bike lanes", Location: "Dhanmondi", Type: models.DiscussionTypePoll, Options: []string{"Yes", "No"},
	})
	require.NoError(t, err)
	fund, err := svc.Create(ctx, "alice", engagement.Draft{
		Title: "Park benches", Location: "Dhanmondi", Type: models.DiscussionTypeDonation, GoalAmount: 500,
	})
	require.NoError(t, err)

	liked, err := svc.Like(ctx, poll.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.True(t, liked.HasLiked("bob"))

	voted, err := svc.Vote(ctx, poll.ID.Hex(), "bob", "Yes")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bob": "Yes"}, voted.Poll.VoteByUser())

	donated, err := svc.Donate(ctx, fund.ID.Hex(), "bob", 25)
	require.NoError(t, err)
	assert.Equal(t, 25.0, donated.Donation.CurrentAmount)

	svc.Wait()
	// two posts, a like, a vote and a donation were all attempted
	assert.Equal(t, int32(5), led.calls.Load())
	assert.Equal(t, int32(3), notifier.calls.Load())

	stored, err := store.Discussions().FindByID(ctx, poll.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasLiked("bob"))
	assert.Equal(t, map[string]string{"bob": "Yes"}, stored.Poll.VoteByUser())

	stored, err = store.Discussions().FindByID(ctx, fund.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, stored.Donation.CurrentAmount)
	assert.Len(t, stored.Donation.Donors, 1)
}
