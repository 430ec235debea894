package engagement_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Was1f/UrbanFix-sub001/boards"
	"github.com/Was1f/UrbanFix-sub001/databases/memstore"
	"github.com/Was1f/UrbanFix-sub001/engagement"
	"github.com/Was1f/UrbanFix-sub001/ledger"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/notifications"
	"github.com/Was1f/UrbanFix-sub001/profiles"
)

type fixture struct {
	store    *memstore.Store
	svc      *engagement.Service
	profiles *profiles.Resolver
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()
	store := memstore.New()
	prof := profiles.New(store.Users())
	for _, u := range users {
		_, err := prof.Register(context.Background(), u, "Name "+u, "")
		require.NoError(t, err)
	}
	svc := engagement.NewService(
		store.Discussions(),
		boards.NewRegistry(store.Boards(), store.Discussions()),
		ledger.New(store.Users()),
		notifications.New(store.Notifications()),
		prof,
		engagement.Options{},
	)
	return &fixture{store: store, svc: svc, profiles: prof}
}

func (f *fixture) create(t *testing.T, author string, dr engagement.Draft) *models.Discussion {
	t.Helper()
	if dr.Title == "" {
		dr.Title = "Broken streetlight"
	}
	if dr.Location == "" {
		dr.Location = "Dhanmondi"
	}
	d, err := f.svc.Create(context.Background(), author, dr)
	require.NoError(t, err)
	return d
}

// history returns the points entries of identity with the given action
func (f *fixture) history(t *testing.T, identity string, action models.PointsAction) []models.PointsEntry {
	t.Helper()
	u, err := f.store.Users().FindByIdentity(context.Background(), identity)
	require.NoError(t, err)
	var out []models.PointsEntry
	for _, e := range u.Points.History {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) notifications(t *testing.T) []models.Notification {
	t.Helper()
	f.svc.Wait()
	return f.store.AllNotifications()
}

func TestCreate_PollDefaultsAndPoints(t *testing.T) {
	f := newFixture(t, "alice")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypePoll, Options: []string{"Yes", "No"}})

	assert.Equal(t, "Name alice", d.Author)
	assert.Equal(t, models.DefaultPriority, d.Priority)
	assert.Equal(t, models.DiscussionStatusActive, d.Status)
	assert.True(t, d.PayloadMatches())
	assert.Equal(t, map[string]int64{"Yes": 0, "No": 0}, d.Poll.VotesByOption())
	assert.Len(t, f.history(t, "alice", models.ActionPostCreated), 1)

	b, err := f.store.Boards().FindByTitle(context.Background(), "Dhanmondi")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.PostCount)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, "alice")

	_, err := f.svc.Create(context.Background(), "alice", engagement.Draft{
		Type:     models.DiscussionType("Raffle"),
		Priority: "whenever",
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"title", "location", "priority", "type"}, verr.Fields)

	_, err = f.svc.Create(context.Background(), "alice", engagement.Draft{
		Title: "Poll", Location: "X", Type: models.DiscussionTypePoll, Options: []string{"Only"},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"options"}, verr.Fields)

	_, err = f.svc.Create(context.Background(), "alice", engagement.Draft{
		Title: "Fund", Location: "X", Type: models.DiscussionTypeDonation, GoalAmount: -5,
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"goalAmount"}, verr.Fields)
}

func TestCreate_StripsMarkup(t *testing.T) {
	f := newFixture(t, "alice")
	d := f.create(t, "alice", engagement.Draft{
		Title:       "<script>alert(1)</script>Pothole",
		Description: "<p>Deep <em>hole</em></p><img src=x onerror=alert(1)>",
		Type:        models.DiscussionTypeReport,
	})

	assert.Equal(t, "Pothole", d.Title)
	assert.Equal(t, "<p>Deep <em>hole</em></p>", d.Description)
}

func TestCreate_AnonymousHidesAuthor(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent, Anonymous: true})

	assert.Equal(t, models.AnonymousName, d.Author)
	assert.Equal(t, "alice", d.AuthorIdentity)

	_, err := f.svc.Like(context.Background(), d.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Empty(t, f.notifications(t))
}

func TestVote_RepeatIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypePoll, Options: []string{"A", "B"}})

	_, err := f.svc.Vote(ctx, d.ID.Hex(), "bob", "A")
	require.NoError(t, err)
	got, err := f.svc.Vote(ctx, d.ID.Hex(), "bob", "A")
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.Poll.VotesByOption()["A"])
	assert.Equal(t, map[string]string{"bob": "A"}, got.Poll.VoteByUser())
	assert.Len(t, f.history(t, "bob", models.ActionPollVoted), 1)
	assert.Len(t, f.notifications(t), 1)
}

func TestVote_SwitchMovesTallyWithoutPoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypePoll, Options: []string{"A", "B"}})

	_, err := f.svc.Vote(ctx, d.ID.Hex(), "bob", "A")
	require.NoError(t, err)
	got, err := f.svc.Vote(ctx, d.ID.Hex(), "bob", "B")
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"A": 0, "B": 1}, got.Poll.VotesByOption())
	assert.Equal(t, "B", got.Poll.VoteByUser()["bob"])
	assert.Len(t, f.history(t, "bob", models.ActionPollVoted), 1)
}

func TestVote_RejectsUnknownOptionAndWrongType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	poll := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypePoll, Options: []string{"A", "B"}})
	event := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	var verr *models.ValidationError
	_, err := f.svc.Vote(ctx, poll.ID.Hex(), "bob", "C")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"option"}, verr.Fields)

	_, err = f.svc.Vote(ctx, event.ID.Hex(), "bob", "A")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"type"}, verr.Fields)
}

func TestVote_ConcurrentVotersAllCounted(t *testing.T) {
	ctx := context.Background()
	voters := []string{"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8"}
	f := newFixture(t, append([]string{"alice"}, voters...)...)
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypePoll, Options: []string{"A", "B"}})

	var wg sync.WaitGroup
	for _, v := range voters {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			_, err := f.svc.Vote(ctx, d.ID.Hex(), v, "A")
			assert.NoError(t, err)
		}(v)
	}
	wg.Wait()

	got, err := f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(len(voters)), got.Poll.VotesByOption()["A"])
	assert.Len(t, got.Poll.VoteByUser(), len(voters))
}

func TestLike_ToggleAwardsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	got, err := f.svc.Like(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got.Likes)

	got, err = f.svc.Like(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	got, err = f.svc.Like(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got.Likes)

	assert.Len(t, f.history(t, "bob", models.ActionPostLiked), 1)
	n := f.notifications(t)
	require.Len(t, n, 1)
	assert.Equal(t, models.NotificationLike, n[0].Type)
	assert.Equal(t, "alice", n[0].Recipient)
	assert.Equal(t, "bob", n[0].Sender)
}

func TestSelfInteractionsDoNotNotify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	_, err := f.svc.Like(ctx, d.ID.Hex(), "alice")
	require.NoError(t, err)
	_, err = f.svc.Comment(ctx, d.ID.Hex(), "alice", "see you there")
	require.NoError(t, err)

	assert.Empty(t, f.notifications(t))
	assert.Len(t, f.history(t, "alice", models.ActionCommentAdded), 1)
}

func TestRSVP_JoinCancelRejoin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	event := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})
	vol := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeVolunteer, SlotsNeeded: 4})

	got, err := f.svc.RSVP(ctx, event.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Event.AttendeeCount)

	got, err = f.svc.RSVP(ctx, event.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Event.AttendeeCount)

	got, err = f.svc.CancelRSVP(ctx, event.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Zero(t, got.Event.AttendeeCount)
	assert.Empty(t, got.Event.Attendees)

	got, err = f.svc.CancelRSVP(ctx, event.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Zero(t, got.Event.AttendeeCount)

	_, err = f.svc.RSVP(ctx, event.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Len(t, f.history(t, "bob", models.ActionEventRSVP), 1)

	got, err = f.svc.RSVP(ctx, vol.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got.Volunteer.Volunteers)
	assert.Len(t, f.history(t, "bob", models.ActionVolunteerSignup), 1)
}

func TestDonate_Accumulates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob", "carol")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeDonation, GoalAmount: 1000})

	for _, tc := range []struct {
		who    string
		amount float64
	}{{"bob", 100}, {"carol", 250}, {"bob", 50}} {
		_, err := f.svc.Donate(ctx, d.ID.Hex(), tc.who, tc.amount)
		require.NoError(t, err)
	}

	got, err := f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 400.0, got.Donation.CurrentAmount)
	assert.Len(t, got.Donation.Donors, 3)

	events := len(f.history(t, "bob", models.ActionDonationMade)) + len(f.history(t, "carol", models.ActionDonationMade))
	assert.Equal(t, 3, events)
}

func TestDonate_RejectsNonPositive(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeDonation, GoalAmount: 10})

	for _, amount := range []float64{0, -20} {
		_, err := f.svc.Donate(context.Background(), d.ID.Hex(), "bob", amount)
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"amount"}, verr.Fields)
	}
}

func TestOfferHelp_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeReport})

	got, err := f.svc.OfferHelp(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	require.Len(t, got.Report.Helpers, 1)
	assert.Equal(t, models.HelperOffered, got.Report.Helpers[0].Status)
	assert.Equal(t, "Name bob", got.Report.Helpers[0].Name)

	_, err = f.svc.OfferHelp(ctx, d.ID.Hex(), "bob")
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictAlreadyOffered, conflict.Reason)

	got, err = f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, got.Report.Helpers, 1)

	n := f.notifications(t)
	require.Len(t, n, 1)
	assert.Equal(t, models.PriorityHigh, n[0].Priority)
}

func TestWithdrawHelp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeReport})

	_, err := f.svc.WithdrawHelp(ctx, d.ID.Hex(), "bob")
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictNotOffered, conflict.Reason)

	_, err = f.svc.OfferHelp(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	got, err := f.svc.WithdrawHelp(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Empty(t, got.Report.Helpers)

	_, err = f.svc.OfferHelp(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Len(t, f.history(t, "bob", models.ActionHelpOffered), 1)
}

func TestAuthorOnlyTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob", "mallory")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeReport})
	_, err := f.svc.OfferHelp(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	before, err := f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)

	var authz *models.AuthorizationError
	_, err = f.svc.Resolve(ctx, d.ID.Hex(), "mallory")
	assert.ErrorAs(t, err, &authz)
	_, err = f.svc.UpdateHelperStatus(ctx, d.ID.Hex(), "mallory", "bob", models.HelperAccepted)
	assert.ErrorAs(t, err, &authz)
	assert.ErrorAs(t, f.svc.Delete(ctx, d.ID.Hex(), "mallory"), &authz)

	after, err := f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHelperStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeReport})
	_, err := f.svc.OfferHelp(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)

	_, err = f.svc.UpdateHelperStatus(ctx, d.ID.Hex(), "alice", "bob", models.HelperCompleted)
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictInvalidState, conflict.Reason)

	got, err := f.svc.UpdateHelperStatus(ctx, d.ID.Hex(), "alice", "bob", models.HelperAccepted)
	require.NoError(t, err)
	h, _ := got.Report.Helper("bob")
	assert.Equal(t, models.HelperAccepted, h.Status)

	got, err = f.svc.UpdateHelperStatus(ctx, d.ID.Hex(), "alice", "bob", models.HelperCompleted)
	require.NoError(t, err)
	h, _ = got.Report.Helper("bob")
	assert.Equal(t, models.HelperCompleted, h.Status)

	_, err = f.svc.UpdateHelperStatus(ctx, d.ID.Hex(), "alice", "carol", models.HelperAccepted)
	var nf *models.NotFoundError
	assert.ErrorAs(t, err, &nf)

	var toBob []models.NotificationType
	for _, n := range f.notifications(t) {
		switch n.Type {
		case models.NotificationHelpAccepted:
			assert.Equal(t, models.PriorityHigh, n.Priority)
		case models.NotificationHelpStatus:
			assert.Equal(t, models.PriorityNormal, n.Priority)
		default:
			continue
		}
		assert.Equal(t, "bob", n.Recipient)
		toBob = append(toBob, n.Type)
	}
	assert.ElementsMatch(t, []models.NotificationType{models.NotificationHelpAccepted, models.NotificationHelpStatus}, toBob)
}

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeReport})
	assert.True(t, d.Report.HelpNeeded)

	for i := 0; i < 2; i++ {
		got, err := f.svc.Resolve(ctx, d.ID.Hex(), "alice")
		require.NoError(t, err)
		assert.False(t, got.Report.HelpNeeded)
	}
}

func TestComment_SnapshotsName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	c, err := f.svc.Comment(ctx, d.ID.Hex(), "bob", "  <b>count me in</b> ")
	require.NoError(t, err)
	assert.Equal(t, "count me in", c.Content)
	assert.Equal(t, "Name bob", c.AuthorDisplayName)

	_, err = f.profiles.Rename(ctx, "bob", "Robert")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Name bob", got.Comments[0].AuthorDisplayName)
	assert.Len(t, f.notifications(t), 1)
}

func TestComment_WithoutAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	c, err := f.svc.Comment(ctx, d.ID.Hex(), "stranger", "hello")
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousName, c.AuthorDisplayName)
	assert.Empty(t, f.notifications(t))

	_, err = f.svc.Comment(ctx, d.ID.Hex(), "alice", "   ")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDelete_CascadesToBoard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	require.NoError(t, f.svc.Delete(ctx, d.ID.Hex(), "alice"))

	_, err := f.svc.Get(ctx, d.ID.Hex())
	var nf *models.NotFoundError
	assert.ErrorAs(t, err, &nf)

	b, err := f.store.Boards().FindByTitle(ctx, "Dhanmondi")
	require.NoError(t, err)
	assert.Zero(t, b.PostCount)

	assert.ErrorAs(t, f.svc.Delete(ctx, d.ID.Hex(), "alice"), &nf)
}

func TestInvalidIDIsNotFound(t *testing.T) {
	f := newFixture(t, "alice")

	var nf *models.NotFoundError
	_, err := f.svc.Like(context.Background(), "zzz", "alice")
	assert.ErrorAs(t, err, &nf)
	_, err = f.svc.Get(context.Background(), "507f1f77bcf86cd799439011")
	assert.ErrorAs(t, err, &nf)
}

func TestPersistenceSurvivesCancelledCaller(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := f.svc.RSVP(ctx, d.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Event.AttendeeCount)
}

func TestAnonymousPostKeepsIdentityOutOfResponses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "+8801700000001")
	d := f.create(t, "+8801700000001", engagement.Draft{Type: models.DiscussionTypeReport, Anonymous: true})

	got, err := f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.True(t, got.IsAuthor("+8801700000001"))

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "+8801700000001")
	assert.Contains(t, string(b), `"author":"Anonymous"`)

	list, err := f.svc.List(ctx, models.DiscussionQuery{})
	require.NoError(t, err)
	b, err = json.Marshal(list)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "+8801700000001")

	mine, err := f.svc.List(ctx, models.DiscussionQuery{Author: "+8801700000001"})
	require.NoError(t, err)
	assert.Empty(t, mine)

	require.NoError(t, f.svc.Delete(ctx, d.ID.Hex(), "+8801700000001"))
}

func TestDonate_EnforcesLimits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	_, err := f.svc.Create(ctx, "alice", engagement.Draft{
		Title: "Fund", Location: "X", Type: models.DiscussionTypeDonation, GoalAmount: 1e308,
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"goalAmount"}, verr.Fields)

	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeDonation, GoalAmount: 1000})

	_, err = f.svc.Donate(ctx, d.ID.Hex(), "bob", 1e308)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"amount"}, verr.Fields)

	for i := 0; i < int(models.MaxDonationTotal/models.MaxDonationAmount); i++ {
		_, err = f.svc.Donate(ctx, d.ID.Hex(), "bob", models.MaxDonationAmount)
		require.NoError(t, err)
	}
	_, err = f.svc.Donate(ctx, d.ID.Hex(), "bob", 1)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"amount"}, verr.Fields)

	got, err := f.svc.Get(ctx, d.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.MaxDonationTotal, got.Donation.CurrentAmount)
	_, err = json.Marshal(got)
	assert.NoError(t, err)
}

func TestDelete_RemovedPostLeavesBoardAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")
	d := f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})
	f.create(t, "alice", engagement.Draft{Type: models.DiscussionTypeEvent})

	reportID := primitive.NewObjectID()
	_, err := f.store.Discussions().ClaimReport(ctx, d.ID, reportID)
	require.NoError(t, err)
	_, err = f.store.Discussions().SettleReport(ctx, d.ID, reportID, models.DiscussionStatusRemoved, true)
	require.NoError(t, err)
	require.NoError(t, f.store.Boards().IncrementPostCount(ctx, "Dhanmondi", -1))

	require.NoError(t, f.svc.Delete(ctx, d.ID.Hex(), "alice"))

	b, err := f.store.Boards().FindByTitle(ctx, "Dhanmondi")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.PostCount)
}
