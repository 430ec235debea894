// Package ledger records reward points. The history is the only source of
// truth: period totals are derived from it on read and never stored.
package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Rewards is the fixed reward table
var Rewards = map[models.PointsAction]int64{
	models.ActionPostCreated:     10,
	models.ActionCommentAdded:    3,
	models.ActionHelpOffered:     15,
	models.ActionPostLiked:       1,
	models.ActionPollVoted:       5,
	models.ActionEventRSVP:       8,
	models.ActionDonationMade:    10,
	models.ActionVolunteerSignup: 12,
}

// Period is a leaderboard window
type Period string

// Leaderboard windows
const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAll     Period = "all"
)

// ParsePeriod accepts daily, weekly, monthly and all. Empty means all.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodAll, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAll:
		return p, nil
	}
	return "", models.NewValidationError("period must be daily, weekly, monthly or all", "period")
}

// Start returns the UTC instant the period begins at relative to now. Weeks
// start on Monday. The zero time is returned for PeriodAll.
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodDaily:
		return day
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

const recentEntries = 10

// Ledger awards and aggregates points
type Ledger struct {
	users databases.UserDatabase
	now   func() time.Time
}

// New creates a ledger over the user collection
func New(users databases.UserDatabase) *Ledger {
	return &Ledger{users: users, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Award appends one reward entry. Callers decide whether the action is the
// first occurrence; the ledger does not deduplicate.
func (l *Ledger) Award(ctx context.Context, identity string, action models.PointsAction, location string) error {
	points, ok := Rewards[action]
	if !ok {
		return models.NewValidationError("unknown points action "+string(action), "action")
	}
	err := l.users.AwardPoints(ctx, identity, models.PointsEntry{
		Date:     l.now(),
		Points:   points,
		Action:   action,
		Location: location,
	})
	if errors.Is(err, databases.ErrNotFound) {
		return &models.NotFoundError{Kind: "user", ID: identity}
	}
	return err
}

// Summary returns the total and the derived period figures for identity
func (l *Ledger) Summary(ctx context.Context, identity string) (*models.PointsSummary, error) {
	u, err := l.users.FindByIdentity(ctx, identity)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, &models.NotFoundError{Kind: "user", ID: identity}
	}
	if err != nil {
		return nil, err
	}
	now := l.now()
	s := &models.PointsSummary{
		Identity:    u.Identity,
		Name:        u.Name,
		TotalPoints: u.Points.TotalPoints,
		Daily:       sumSince(u.Points.History, PeriodDaily.Start(now)),
		Weekly:      sumSince(u.Points.History, PeriodWeekly.Start(now)),
		Monthly:     sumSince(u.Points.History, PeriodMonthly.Start(now)),
	}

	recent := append([]models.PointsEntry{}, u.Points.History...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > recentEntries {
		recent = recent[:recentEntries]
	}
	s.Recent = recent
	return s, nil
}

func sumSince(history []models.PointsEntry, since time.Time) int64 {
	var total int64
	for _, e := range history {
		if !e.Date.Before(since) {
			total += e.Points
		}
	}
	return total
}

// Leaderboard ranks users by points earned in the period, optionally within
// one location
func (l *Ledger) Leaderboard(ctx context.Context, period Period, location string, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries, err := l.users.Leaderboard(ctx, models.LeaderboardQuery{
		Since:    period.Start(l.now()),
		Location: location,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}

// Prune drops history entries older than retention. Their points are folded
// into the pruned carry so totals do not change.
func (l *Ledger) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, models.NewValidationError("retention must be positive", "retention")
	}
	return l.users.PruneHistory(ctx, l.now().Add(-retention))
}
