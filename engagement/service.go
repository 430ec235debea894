// Package engagement implements the discussion interactions. Each interaction
// decides its transition from the loaded discussion, applies it as one
// conditional store update and then runs its side effects in order: award
// points on the first occurrence, then notify.
package engagement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/notifications"
)

// Ledger awards points
type Ledger interface {
	Award(ctx context.Context, identity string, action models.PointsAction, location string) error
}

// Notifier stores notifications
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) (bool, error)
}

// Profiles resolves display names
type Profiles interface {
	DisplayName(ctx context.Context, identity string) (string, bool, error)
}

// Boards keeps location post counts
type Boards interface {
	Ensure(ctx context.Context, title string) (*models.Board, error)
	Created(ctx context.Context, title string) error
	Deleted(ctx context.Context, title string) error
}

// maxAttempts bounds the reload and retry loop on precondition misses
const maxAttempts = 5

// Options tunes the service timeouts
type Options struct {
	QueryTimeout  time.Duration
	NotifyTimeout time.Duration
}

// Service runs discussion interactions
type Service struct {
	discussions databases.DiscussionDatabase
	boards      Boards
	ledger      Ledger
	notifier    Notifier
	profiles    Profiles

	plain *bluemonday.Policy
	rich  *bluemonday.Policy

	queryTimeout  time.Duration
	notifyTimeout time.Duration
	now           func() time.Time

	wg sync.WaitGroup
}

// NewService wires the interaction service
func NewService(discussions databases.DiscussionDatabase, boards Boards, ledger Ledger, notifier Notifier, profiles Profiles, opts Options) *Service {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 5 * time.Second
	}

	rich := bluemonday.StrictPolicy()
	rich.AllowElements("p", "br", "strong", "em", "ul", "ol", "li")

	return &Service{
		discussions:   discussions,
		boards:        boards,
		ledger:        ledger,
		notifier:      notifier,
		profiles:      profiles,
		plain:         bluemonday.StrictPolicy(),
		rich:          rich,
		queryTimeout:  opts.QueryTimeout,
		notifyTimeout: opts.NotifyTimeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Wait blocks until every in-flight notification has been written or timed out
func (s *Service) Wait() {
	s.wg.Wait()
}

// persistContext keeps the store write alive when the caller goes away
func (s *Service) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.queryTimeout)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &models.NotFoundError{Kind: "discussion", ID: id}
	}
	return oid, nil
}

// load returns a visible discussion
func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	d, err := s.discussions.FindByID(ctx, id)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, &models.NotFoundError{Kind: "discussion", ID: id.Hex()}
	}
	if err != nil {
		return nil, err
	}
	if d.Status == models.DiscussionStatusRemoved {
		return nil, &models.NotFoundError{Kind: "discussion", ID: id.Hex()}
	}
	return d, nil
}

// interact loads the discussion, decides, applies and retries when another
// writer got there first
func (s *Service) interact(ctx context.Context, id, actor string, decide func(*models.Discussion) (plan, error)) (*models.Discussion, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	pctx, cancel := s.persistContext(ctx)
	defer cancel()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		d, err := s.load(pctx, oid)
		if err != nil {
			return nil, err
		}
		p, err := decide(d)
		if err != nil {
			return nil, err
		}
		if p.mutate == nil {
			return d, nil
		}
		updated, err := p.mutate(pctx, s.discussions, oid)
		if errors.Is(err, databases.ErrNoMatch) {
			zap.S().Debugw("discussion changed underneath, retrying", "discussion", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		s.sideEffects(pctx, updated, actor, p)
		return updated, nil
	}
	return nil, &models.ConflictError{Reason: models.ConflictConcurrentUpdate, Msg: "the discussion kept changing, try again"}
}

// sideEffects awards points and then queues the notification. Failures are
// logged and never undo the interaction.
func (s *Service) sideEffects(ctx context.Context, d *models.Discussion, actor string, p plan) {
	if p.reward == "" && p.notice == nil {
		return
	}
	if p.gate != "" {
		first, err := s.discussions.ClaimReward(ctx, d.ID, p.gate)
		if err != nil {
			zap.S().Errorw("failed to claim reward gate", "discussion", d.ID.Hex(), "gate", p.gate, "error", err)
			return
		}
		if !first {
			return
		}
	}
	if p.reward != "" {
		if err := s.ledger.Award(ctx, actor, p.reward, d.Location); err != nil {
			zap.S().Errorw("failed to award points", "identity", actor, "action", p.reward, "error", err)
		}
	}
	if p.notice != nil {
		s.dispatch(actor, d, *p.notice)
	}
}

// dispatch writes the notification in the background with its own deadline
func (s *Service) dispatch(actor string, d *models.Discussion, n notice) {
	if !notifications.Deliverable(n.recipient, actor) {
		return
	}
	discussionID := d.ID
	title := d.Title

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		name, _, err := s.profiles.DisplayName(ctx, actor)
		if err != nil {
			zap.S().Warnw("failed to resolve sender name", "identity", actor, "error", err)
			name = models.AnonymousName
		}
		_, err = s.notifier.Notify(ctx, models.Notification{
			Recipient:           n.recipient,
			Sender:              actor,
			Type:                n.typ,
			RelatedDiscussionID: &discussionID,
			Title:               n.title,
			Message:             n.message(name, title),
			Priority:            notifications.PriorityFor(n.typ),
			CreatedAt:           s.now(),
		})
		if err != nil {
			zap.S().Errorw("failed to write notification", "type", n.typ, "recipient", n.recipient, "error", err)
		}
	}()
}
