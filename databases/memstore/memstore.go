// Package memstore keeps every collection in process memory behind a single
// mutex. It implements the same conditional-update contracts as the mongo
// stores and backs DB_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Store holds all collections
type Store struct {
	mu            sync.Mutex
	now           func() time.Time
	discussions   map[primitive.ObjectID]*models.Discussion
	boards        map[string]*models.Board
	users         map[string]*models.User
	notifications []*models.Notification
	reports       map[primitive.ObjectID]*models.ModerationReport
	keys          map[string]keyEntry
}

type keyEntry struct {
	value   string
	expires time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		discussions: map[primitive.ObjectID]*models.Discussion{},
		boards:      map[string]*models.Board{},
		users:       map[string]*models.User{},
		reports:     map[primitive.ObjectID]*models.ModerationReport{},
		keys:        map[string]keyEntry{},
	}
}

// SetClock replaces the time source, for tests that need fixed dates
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Discussions returns the discussion collection view
func (s *Store) Discussions() databases.DiscussionDatabase { return discussionStore{s} }

// Boards returns the board collection view
func (s *Store) Boards() databases.BoardDatabase { return boardStore{s} }

// Users returns the user collection view
func (s *Store) Users() databases.UserDatabase { return userStore{s} }

// Notifications returns the notification collection view
func (s *Store) Notifications() databases.NotificationDatabase { return notificationStore{s} }

// Reports returns the moderation report collection view
func (s *Store) Reports() databases.ReportDatabase { return reportStore{s} }

// Keys returns the keyed TTL store view
func (s *Store) Keys() databases.KeyStore { return keyStore{s} }

// --- discussions ---

type discussionStore struct{ s *Store }

func (v discussionStore) InsertOne(_ context.Context, d models.Discussion) (primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, ok := v.s.discussions[d.ID]; ok {
		return primitive.NilObjectID, databases.ErrDuplicate
	}
	d.EnsureCollections()
	c := cloneDiscussion(&d)
	v.s.discussions[d.ID] = c
	return d.ID, nil
}

func (v discussionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.discussions[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	return cloneDiscussion(d), nil
}

func (v discussionStore) Find(_ context.Context, q models.DiscussionQuery) ([]models.Discussion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []models.Discussion
	for _, d := range v.s.discussions {
		if d.Status == models.DiscussionStatusRemoved {
			continue
		}
		if q.Location != "" && d.Location != q.Location {
			continue
		}
		if q.Type != "" && d.Type != q.Type {
			continue
		}
		if q.Author != "" && (d.AuthorIdentity != q.Author || d.Anonymous) {
			continue
		}
		out = append(out, *cloneDiscussion(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	start, end := databases.PageWindow(q.Limit, q.Page, len(out))
	return out[start:end], nil
}

func (v discussionStore) CountByLocation(_ context.Context, location string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var n int64
	for _, d := range v.s.discussions {
		if d.Location == location && d.Status != models.DiscussionStatusRemoved {
			n++
		}
	}
	return n, nil
}

func (v discussionStore) DeleteByAuthor(_ context.Context, id primitive.ObjectID, authorIdentity string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.discussions[id]
	if !ok || d.AuthorIdentity != authorIdentity {
		return databases.ErrNoMatch
	}
	delete(v.s.discussions, id)
	return nil
}

// apply runs mutate against the stored document when cond holds, atomically
func (v discussionStore) apply(id primitive.ObjectID, cond func(*models.Discussion) bool, mutate func(*models.Discussion)) (*models.Discussion, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.discussions[id]
	if !ok || !cond(d) {
		return nil, databases.ErrNoMatch
	}
	mutate(d)
	d.UpdatedAt = v.s.now()
	return cloneDiscussion(d), nil
}

func (v discussionStore) AddLike(_ context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool { return !d.HasLiked(identity) },
		func(d *models.Discussion) { d.Likes = append(d.Likes, identity) },
	)
}

func (v discussionStore) RemoveLike(_ context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool { return d.HasLiked(identity) },
		func(d *models.Discussion) { d.Likes = without(d.Likes, identity) },
	)
}

func (v discussionStore) CastVote(_ context.Context, id primitive.ObjectID, identity string, option int) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool {
			if d.Type != models.DiscussionTypePoll || d.Poll == nil || option < 0 || option >= len(d.Poll.Tallies) {
				return false
			}
			_, voted := d.Poll.VoteOf(identity)
			return !voted
		},
		func(d *models.Discussion) {
			d.Poll.Tallies[option]++
			d.Poll.Voters = append(d.Poll.Voters, models.PollVoter{Identity: identity, Option: option})
		},
	)
}

func (v discussionStore) SwitchVote(_ context.Context, id primitive.ObjectID, identity string, from, to int) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool {
			if from == to || d.Type != models.DiscussionTypePoll || d.Poll == nil || to < 0 || to >= len(d.Poll.Tallies) {
				return false
			}
			cur, voted := d.Poll.VoteOf(identity)
			return voted && cur == from
		},
		func(d *models.Discussion) {
			d.Poll.Tallies[from]--
			d.Poll.Tallies[to]++
			for i := range d.Poll.Voters {
				if d.Poll.Voters[i].Identity == identity {
					d.Poll.Voters[i].Option = to
				}
			}
		},
	)
}

func (v discussionStore) JoinRoster(_ context.Context, id primitive.ObjectID, t models.DiscussionType, identity string) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool { return d.Type == t && t.HasRoster() && !d.InRoster(identity) },
		func(d *models.Discussion) {
			switch t {
			case models.DiscussionTypeEvent:
				d.Event.Attendees = append(d.Event.Attendees, identity)
				d.Event.AttendeeCount++
			case models.DiscussionTypeVolunteer:
				d.Volunteer.Volunteers = append(d.Volunteer.Volunteers, identity)
				d.Volunteer.VolunteerCount++
			}
		},
	)
}

func (v discussionStore) LeaveRoster(_ context.Context, id primitive.ObjectID, t models.DiscussionType, identity string) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool { return d.Type == t && t.HasRoster() && d.InRoster(identity) },
		func(d *models.Discussion) {
			switch t {
			case models.DiscussionTypeEvent:
				d.Event.Attendees = without(d.Event.Attendees, identity)
				d.Event.AttendeeCount--
			case models.DiscussionTypeVolunteer:
				d.Volunteer.Volunteers = without(d.Volunteer.Volunteers, identity)
				d.Volunteer.VolunteerCount--
			}
		},
	)
}

func (v discussionStore) AddDonation(_ context.Context, id primitive.ObjectID, donor models.Donor) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool {
			return d.Type == models.DiscussionTypeDonation && d.Donation != nil && d.Donation.Accepts(donor.Amount)
		},
		func(d *models.Discussion) {
			d.Donation.Donors = append(d.Donation.Donors, donor)
			d.Donation.CurrentAmount += donor.Amount
		},
	)
}

func (v discussionStore) AddHelper(_ context.Context, id primitive.ObjectID, helper models.Helper) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool {
			if d.Type != models.DiscussionTypeReport || d.Report == nil {
				return false
			}
			_, exists := d.Report.Helper(helper.Identity)
			return !exists
		},
		func(d *models.Discussion) { d.Report.Helpers = append(d.Report.Helpers, helper) },
	)
}

func (v discussionStore) RemoveHelper(_ context.Context, id primitive.ObjectID, identity string) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool {
			if d.Type != models.DiscussionTypeReport || d.Report == nil {
				return false
			}
			h, ok := d.Report.Helper(identity)
			return ok && (h.Status == models.HelperOffered || h.Status == models.HelperAccepted)
		},
		func(d *models.Discussion) {
			kept := d.Report.Helpers[:0]
			for _, h := range d.Report.Helpers {
				if h.Identity != identity {
					kept = append(kept, h)
				}
			}
			d.Report.Helpers = kept
		},
	)
}

func (v discussionStore) SetHelperStatus(_ context.Context, id primitive.ObjectID, identity string, from, to models.HelperStatus) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool {
			if d.Type != models.DiscussionTypeReport || d.Report == nil {
				return false
			}
			h, ok := d.Report.Helper(identity)
			return ok && h.Status == from
		},
		func(d *models.Discussion) {
			for i := range d.Report.Helpers {
				if d.Report.Helpers[i].Identity == identity {
					d.Report.Helpers[i].Status = to
					d.Report.Helpers[i].UpdatedAt = v.s.now()
				}
			}
		},
	)
}

func (v discussionStore) ResolveHelp(_ context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool { return d.Type == models.DiscussionTypeReport && d.Report != nil },
		func(d *models.Discussion) { d.Report.HelpNeeded = false },
	)
}

func (v discussionStore) AddComment(_ context.Context, id primitive.ObjectID, c models.Comment) (*models.Discussion, error) {
	return v.apply(id,
		func(*models.Discussion) bool { return true },
		func(d *models.Discussion) { d.Comments = append(d.Comments, c) },
	)
}

func (v discussionStore) ClaimReward(_ context.Context, id primitive.ObjectID, key string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.discussions[id]
	if !ok {
		return false, nil
	}
	for _, k := range d.Rewarded {
		if k == key {
			return false, nil
		}
	}
	d.Rewarded = append(d.Rewarded, key)
	return true, nil
}

func (v discussionStore) ClaimReport(_ context.Context, id, reportID primitive.ObjectID) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool {
			return d.OpenReportID == nil && d.Status != models.DiscussionStatusRemoved
		},
		func(d *models.Discussion) {
			rid := reportID
			d.OpenReportID = &rid
			d.Status = models.DiscussionStatusFlagged
		},
	)
}

func (v discussionStore) SettleReport(_ context.Context, id, reportID primitive.ObjectID, status models.DiscussionStatus, keepClaim bool) (*models.Discussion, error) {
	return v.apply(id,
		func(d *models.Discussion) bool { return d.OpenReportID != nil && *d.OpenReportID == reportID },
		func(d *models.Discussion) {
			d.Status = status
			if !keepClaim {
				d.OpenReportID = nil
			}
		},
	)
}

// --- boards ---

type boardStore struct{ s *Store }

func (v boardStore) ensureLocked(title string) *models.Board {
	b, ok := v.s.boards[title]
	if !ok {
		b = &models.Board{Title: title, CreatedAt: v.s.now()}
		v.s.boards[title] = b
	}
	return b
}

func (v boardStore) Ensure(_ context.Context, title string) (*models.Board, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	b := *v.ensureLocked(title)
	return &b, nil
}

func (v boardStore) IncrementPostCount(_ context.Context, title string, delta int64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.ensureLocked(title).PostCount += delta
	return nil
}

func (v boardStore) SetPostCount(_ context.Context, title string, count int64) (*models.Board, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	b := v.ensureLocked(title)
	now := v.s.now()
	b.PostCount = count
	b.ReconciledAt = &now
	out := *b
	return &out, nil
}

func (v boardStore) FindByTitle(_ context.Context, title string) (*models.Board, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	b, ok := v.s.boards[title]
	if !ok {
		return nil, databases.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (v boardStore) FindAll(_ context.Context) ([]models.Board, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]models.Board, 0, len(v.s.boards))
	for _, b := range v.s.boards {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// --- users ---

type userStore struct{ s *Store }

func (v userStore) FindByIdentity(_ context.Context, identity string) (*models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[identity]
	if !ok {
		return nil, databases.ErrNotFound
	}
	return cloneUser(u), nil
}

func (v userStore) InsertOne(_ context.Context, user models.User) (primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.users[user.Identity]; ok {
		return primitive.NilObjectID, databases.ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Points.History == nil {
		user.Points.History = []models.PointsEntry{}
	}
	v.s.users[user.Identity] = cloneUser(&user)
	return user.ID, nil
}

func (v userStore) UpdateName(_ context.Context, identity, name string) (*models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[identity]
	if !ok {
		return nil, databases.ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = v.s.now()
	return cloneUser(u), nil
}

func (v userStore) AwardPoints(_ context.Context, identity string, entry models.PointsEntry) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[identity]
	if !ok {
		return databases.ErrNotFound
	}
	u.Points.History = append(u.Points.History, entry)
	u.Points.TotalPoints += entry.Points
	return nil
}

func (v userStore) Leaderboard(_ context.Context, q models.LeaderboardQuery) ([]models.LeaderboardEntry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	var out []models.LeaderboardEntry
	for _, u := range v.s.users {
		var pts int64
		if q.Since.IsZero() && q.Location == "" {
			pts = u.Points.TotalPoints
		} else {
			for _, e := range u.Points.History {
				if !q.Since.IsZero() && e.Date.Before(q.Since) {
					continue
				}
				if q.Location != "" && e.Location != q.Location {
					continue
				}
				pts += e.Points
			}
		}
		if pts > 0 {
			out = append(out, models.LeaderboardEntry{Identity: u.Identity, Name: u.Name, Points: pts})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Identity < out[j].Identity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (v userStore) PruneHistory(_ context.Context, before time.Time) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var modified int64
	for _, u := range v.s.users {
		kept := make([]models.PointsEntry, 0, len(u.Points.History))
		var pruned int64
		for _, e := range u.Points.History {
			if e.Date.Before(before) {
				pruned += e.Points
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == len(u.Points.History) {
			continue
		}
		u.Points.History = kept
		u.Points.PrunedPoints += pruned
		modified++
	}
	return modified, nil
}

// --- notifications ---

type notificationStore struct{ s *Store }

func (v notificationStore) InsertOne(_ context.Context, n models.Notification) (primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	v.s.notifications = append(v.s.notifications, &n)
	return n.ID, nil
}

func (v notificationStore) FindByRecipient(_ context.Context, recipient string, unreadOnly bool, limit, page int) ([]models.Notification, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []models.Notification
	for i := len(v.s.notifications) - 1; i >= 0; i-- {
		n := v.s.notifications[i]
		if n.Recipient != recipient || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, *n)
	}
	start, end := databases.PageWindow(limit, page, len(out))
	return out[start:end], nil
}

func (v notificationStore) CountUnread(_ context.Context, recipient string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var c int64
	for _, n := range v.s.notifications {
		if n.Recipient == recipient && !n.Read {
			c++
		}
	}
	return c, nil
}

func (v notificationStore) MarkRead(_ context.Context, id primitive.ObjectID, recipient string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, n := range v.s.notifications {
		if n.ID == id && n.Recipient == recipient {
			n.Read = true
			return nil
		}
	}
	return databases.ErrNotFound
}

// AllNotifications returns every stored notification in insertion order
func (s *Store) AllNotifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, *n)
	}
	return out
}

// --- moderation reports ---

type reportStore struct{ s *Store }

func (v reportStore) InsertOne(_ context.Context, r models.ModerationReport) (primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if _, ok := v.s.reports[r.ID]; ok {
		return primitive.NilObjectID, databases.ErrDuplicate
	}
	v.s.reports[r.ID] = cloneReport(&r)
	return r.ID, nil
}

func (v reportStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.ModerationReport, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.reports[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	return cloneReport(r), nil
}

func (v reportStore) FindPendingByReporter(_ context.Context, target primitive.ObjectID, reporter string) (*models.ModerationReport, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, r := range v.s.reports {
		if r.TargetDiscussionID == target && r.ReporterIdentity == reporter && r.Status == models.ReportPending {
			return cloneReport(r), nil
		}
	}
	return nil, databases.ErrNotFound
}

func (v reportStore) Find(_ context.Context, status models.ReportStatus, limit, page int) ([]models.ModerationReport, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []models.ModerationReport
	for _, r := range v.s.reports {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, *cloneReport(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	start, end := databases.PageWindow(limit, page, len(out))
	return out[start:end], nil
}

func (v reportStore) Review(_ context.Context, id primitive.ObjectID, status models.ReportStatus, reviewerID, notes string) (*models.ModerationReport, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.reports[id]
	if !ok || r.Status != models.ReportPending {
		return nil, databases.ErrNoMatch
	}
	now := v.s.now()
	r.Status = status
	r.ReviewerID = reviewerID
	r.ReviewedAt = &now
	if notes != "" {
		r.AdminNotes = notes
	}
	return cloneReport(r), nil
}

func (v reportStore) Revoke(_ context.Context, id primitive.ObjectID, reporter string) (*models.ModerationReport, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.reports[id]
	if !ok || r.Status != models.ReportPending || r.ReporterIdentity != reporter {
		return nil, databases.ErrNoMatch
	}
	now := v.s.now()
	r.Status = models.ReportResolved
	r.AdminNotes = "withdrawn by reporter"
	r.RevokedAt = &now
	return cloneReport(r), nil
}

// --- keys ---

type keyStore struct{ s *Store }

func (v keyStore) liveLocked(key string) (keyEntry, bool) {
	e, ok := v.s.keys[key]
	if !ok {
		return keyEntry{}, false
	}
	if !e.expires.IsZero() && !v.s.now().Before(e.expires) {
		delete(v.s.keys, key)
		return keyEntry{}, false
	}
	return e, true
}

func (v keyStore) entry(value string, ttl time.Duration) keyEntry {
	e := keyEntry{value: value}
	if ttl > 0 {
		e.expires = v.s.now().Add(ttl)
	}
	return e
}

func (v keyStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.keys[key] = v.entry(value, ttl)
	return nil
}

func (v keyStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.liveLocked(key); ok {
		return false, nil
	}
	v.s.keys[key] = v.entry(value, ttl)
	return true, nil
}

func (v keyStore) Get(_ context.Context, key string) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	e, ok := v.liveLocked(key)
	if !ok {
		return "", databases.ErrNotFound
	}
	return e.value, nil
}

func (v keyStore) GetDel(_ context.Context, key string) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	e, ok := v.liveLocked(key)
	if !ok {
		return "", databases.ErrNotFound
	}
	delete(v.s.keys, key)
	return e.value, nil
}

func (v keyStore) Del(_ context.Context, key string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.keys, key)
	return nil
}

// --- copies ---

func without(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func cloneDiscussion(d *models.Discussion) *models.Discussion {
	c := *d
	c.Likes = append([]string{}, d.Likes...)
	c.Comments = append([]models.Comment{}, d.Comments...)
	c.Rewarded = append([]string{}, d.Rewarded...)
	if d.OpenReportID != nil {
		id := *d.OpenReportID
		c.OpenReportID = &id
	}
	if d.Poll != nil {
		p := models.Poll{
			Options: append([]string{}, d.Poll.Options...),
			Tallies: append([]int64{}, d.Poll.Tallies...),
			Voters:  append([]models.PollVoter{}, d.Poll.Voters...),
		}
		c.Poll = &p
	}
	if d.Event != nil {
		e := *d.Event
		e.Attendees = append([]string{}, d.Event.Attendees...)
		c.Event = &e
	}
	if d.Volunteer != nil {
		vol := *d.Volunteer
		vol.Volunteers = append([]string{}, d.Volunteer.Volunteers...)
		c.Volunteer = &vol
	}
	if d.Donation != nil {
		don := *d.Donation
		don.Donors = append([]models.Donor{}, d.Donation.Donors...)
		c.Donation = &don
	}
	if d.Report != nil {
		r := *d.Report
		r.Helpers = append([]models.Helper{}, d.Report.Helpers...)
		c.Report = &r
	}
	return &c
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Points.History = append([]models.PointsEntry{}, u.Points.History...)
	return &c
}

func cloneReport(r *models.ModerationReport) *models.ModerationReport {
	c := *r
	return &c
}
