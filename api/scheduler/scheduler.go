package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/ledger"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Ledger is the part of the points ledger the jobs use
type Ledger interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
	Leaderboard(ctx context.Context, period ledger.Period, location string, limit int) ([]models.LeaderboardEntry, error)
}

// Boards reconciles cached board counts
type Boards interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// Notifier stores notifications
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) (bool, error)
}

// leaderboardAwards is how many of the weekly leaders are notified
const leaderboardAwards = 3

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	ledger     Ledger
	boards     Boards
	notifier   Notifier
	locks      databases.KeyStore
	retention  time.Duration
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(l Ledger, b Boards, n Notifier, locks databases.KeyStore, retention time.Duration) *Scheduler {
	// Heroku style dyno names identify the instance when present
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = "instance-" + uuid.NewString()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		ledger:     l,
		boards:     b,
		notifier:   n,
		locks:      locks,
		retention:  retention,
		instanceID: instanceID,
	}
}

// Start registers all jobs and begins the scheduler
func (s *Scheduler) Start() {
	jobs := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		// daily at 3 AM UTC
		{"0 3 * * *", "prune_points_history", s.pruneHistory},
		// nightly at 2 AM UTC
		{"0 2 * * *", "reconcile_boards", s.reconcileBoards},
		// Sunday 23:55 UTC, before the weekly window rolls over
		{"55 23 * * 0", "weekly_leaderboard", s.weeklyLeaderboard},
	}
	for _, j := range jobs {
		j := j
		if _, err := s.cron.AddFunc(j.spec, func() { s.runLocked(j.name, j.run) }); err != nil {
			zap.S().Errorw("failed to register job", "job", j.name, "error", err)
		}
	}

	s.cron.Start()
	zap.S().Infow("scheduler started", "instance", s.instanceID)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// runLocked runs a job only on the instance that wins its lock
func (s *Scheduler) runLocked(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	key := "lock:" + name
	acquired, err := s.locks.SetNX(ctx, key, s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire job lock", "job", name, "error", err)
		return
	}
	if !acquired {
		zap.S().Debugw("job already running on another instance, skipping", "job", name)
		return
	}
	defer s.releaseLock(key)

	start := time.Now()
	if err := run(ctx); err != nil {
		zap.S().Errorw("job failed", "job", name, "instance", s.instanceID, "error", err)
		return
	}
	zap.S().Infow("job finished", "job", name, "duration", time.Since(start))
}

func (s *Scheduler) releaseLock(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	owner, err := s.locks.Get(ctx, key)
	if errors.Is(err, databases.ErrNotFound) {
		return
	}
	if err != nil {
		zap.S().Warnw("failed to read job lock", "key", key, "error", err)
		return
	}
	if owner != s.instanceID {
		return
	}
	if err := s.locks.Del(ctx, key); err != nil {
		zap.S().Warnw("failed to release job lock", "key", key, "error", err)
	}
}

func (s *Scheduler) pruneHistory(ctx context.Context) error {
	n, err := s.ledger.Prune(ctx, s.retention)
	if err != nil {
		return err
	}
	zap.S().Infow("pruned points history", "users", n, "retention", s.retention)
	return nil
}

func (s *Scheduler) reconcileBoards(ctx context.Context) error {
	n, err := s.boards.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	zap.S().Infow("reconciled boards", "corrected", n)
	return nil
}

func (s *Scheduler) weeklyLeaderboard(ctx context.Context) error {
	leaders, err := s.ledger.Leaderboard(ctx, ledger.PeriodWeekly, "", leaderboardAwards)
	if err != nil {
		return err
	}
	for _, e := range leaders {
		_, err := s.notifier.Notify(ctx, models.Notification{
			Recipient: e.Identity,
			Sender:    models.SystemSender,
			Type:      models.NotificationLeaderboard,
			Title:     "Weekly leaderboard",
			Message:   fmt.Sprintf("You finished #%d this week with %d points", e.Rank, e.Points),
			Priority:  models.PriorityHigh,
		})
		if err != nil {
			zap.S().Errorw("failed to notify leader", "identity", e.Identity, "error", err)
		}
	}
	return nil
}
