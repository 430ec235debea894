// Package moderation handles user reports against discussions and the
// administrator review that settles them.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/notifications"
)

const maxDetailsLength = 1000

// Notifier stores notifications
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) (bool, error)
}

// Boards keeps location post counts
type Boards interface {
	Deleted(ctx context.Context, title string) error
}

// Pipeline files, revokes and reviews moderation reports
type Pipeline struct {
	reports     databases.ReportDatabase
	discussions databases.DiscussionDatabase
	boards      Boards
	notifier    Notifier
	sanitizer   *bluemonday.Policy

	queryTimeout  time.Duration
	notifyTimeout time.Duration
	now           func() time.Time

	wg sync.WaitGroup
}

// New creates a moderation pipeline
func New(reports databases.ReportDatabase, discussions databases.DiscussionDatabase, boards Boards, notifier Notifier, queryTimeout, notifyTimeout time.Duration) *Pipeline {
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &Pipeline{
		reports:       reports,
		discussions:   discussions,
		boards:        boards,
		notifier:      notifier,
		sanitizer:     bluemonday.StrictPolicy(),
		queryTimeout:  queryTimeout,
		notifyTimeout: notifyTimeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Wait blocks until queued notifications are written
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), p.queryTimeout)
}

func objectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &models.NotFoundError{Kind: kind, ID: id}
	}
	return oid, nil
}

// File flags a discussion. A discussion holds at most one open report, so a
// second report while one is pending or approved is rejected.
func (p *Pipeline) File(ctx context.Context, reporter, targetID string, reason models.ReportReason, details string) (*models.ModerationReport, error) {
	target, err := objectID("discussion", targetID)
	if err != nil {
		return nil, err
	}
	var fields []string
	if !reason.Valid() {
		fields = append(fields, "reason")
	}
	details = strings.TrimSpace(p.sanitizer.Sanitize(details))
	if utf8.RuneCountInString(details) > maxDetailsLength {
		fields = append(fields, "details")
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError("invalid report", fields...)
	}

	pctx, cancel := p.persistContext(ctx)
	defer cancel()

	report := models.ModerationReport{
		ID:                 primitive.NewObjectID(),
		TargetDiscussionID: target,
		Reason:             reason,
		Details:            details,
		ReporterIdentity:   reporter,
		Status:             models.ReportPending,
		CreatedAt:          p.now(),
	}

	if _, err := p.discussions.ClaimReport(pctx, target, report.ID); err != nil {
		if errors.Is(err, databases.ErrNoMatch) {
			return nil, p.claimFailure(pctx, target)
		}
		return nil, err
	}
	if _, err := p.reports.InsertOne(pctx, report); err != nil {
		if _, rerr := p.discussions.SettleReport(pctx, target, report.ID, models.DiscussionStatusActive, false); rerr != nil {
			zap.S().Errorw("failed to release report claim", "discussion", targetID, "report", report.ID.Hex(), "error", rerr)
		}
		return nil, err
	}
	zap.S().Infow("discussion reported", "discussion", targetID, "report", report.ID.Hex(), "reason", reason)
	return &report, nil
}

// claimFailure explains why a report could not claim its target
func (p *Pipeline) claimFailure(ctx context.Context, target primitive.ObjectID) error {
	d, err := p.discussions.FindByID(ctx, target)
	if errors.Is(err, databases.ErrNotFound) {
		return &models.NotFoundError{Kind: "discussion", ID: target.Hex()}
	}
	if err != nil {
		return err
	}
	if d.Status == models.DiscussionStatusRemoved {
		return &models.NotFoundError{Kind: "discussion", ID: target.Hex()}
	}
	return &models.ConflictError{Reason: models.ConflictAlreadyReported, Msg: "this discussion has already been reported"}
}

// Revoke withdraws the reporter's own pending report and clears the flag.
// The report is named by reportID, or by the discussion it targets when
// reportID is empty.
func (p *Pipeline) Revoke(ctx context.Context, reporter, reportID, targetID string) (*models.ModerationReport, error) {
	pctx, cancel := p.persistContext(ctx)
	defer cancel()

	var id primitive.ObjectID
	switch {
	case reportID != "":
		oid, err := objectID("report", reportID)
		if err != nil {
			return nil, err
		}
		id = oid
	case targetID != "":
		target, err := objectID("discussion", targetID)
		if err != nil {
			return nil, err
		}
		r, err := p.reports.FindPendingByReporter(pctx, target, reporter)
		if errors.Is(err, databases.ErrNotFound) {
			return nil, &models.NotFoundError{Kind: "pending report on discussion", ID: targetID}
		}
		if err != nil {
			return nil, err
		}
		id = r.ID
	default:
		return nil, models.NewValidationError("reportId or discussionId is required", "reportId", "discussionId")
	}

	r, err := p.reports.Revoke(pctx, id, reporter)
	if errors.Is(err, databases.ErrNoMatch) {
		return nil, p.transitionFailure(pctx, id, reporter)
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.discussions.SettleReport(pctx, r.TargetDiscussionID, r.ID, models.DiscussionStatusActive, false); err != nil {
		zap.S().Warnw("revoked report held no claim", "report", r.ID.Hex(), "discussion", r.TargetDiscussionID.Hex(), "error", err)
	}
	return r, nil
}

// transitionFailure explains why a pending-only transition did not apply.
// An empty reporter skips the ownership check.
func (p *Pipeline) transitionFailure(ctx context.Context, id primitive.ObjectID, reporter string) error {
	r, err := p.reports.FindByID(ctx, id)
	if errors.Is(err, databases.ErrNotFound) {
		return &models.NotFoundError{Kind: "report", ID: id.Hex()}
	}
	if err != nil {
		return err
	}
	if reporter != "" && r.ReporterIdentity != reporter {
		return &models.AuthorizationError{Action: "revoke another user's report"}
	}
	return &models.ConflictError{Reason: models.ConflictAlreadyReviewed, Msg: fmt.Sprintf("report is already %s", r.Status)}
}

// Review settles a pending report and updates the discussion it targets.
// Removal hides the discussion; every other outcome restores it.
func (p *Pipeline) Review(ctx context.Context, reviewerID, reportID string, action models.ModerationAction, notes string) (*models.ModerationReport, error) {
	id, err := objectID("report", reportID)
	if err != nil {
		return nil, err
	}
	status, ok := action.Outcome()
	if !ok {
		return nil, models.NewValidationError("action must be approve, reject, remove or resolve", "action")
	}
	notes = strings.TrimSpace(p.sanitizer.Sanitize(notes))

	pctx, cancel := p.persistContext(ctx)
	defer cancel()

	r, err := p.reports.Review(pctx, id, status, reviewerID, notes)
	if errors.Is(err, databases.ErrNoMatch) {
		return nil, p.transitionFailure(pctx, id, "")
	}
	if err != nil {
		return nil, err
	}

	discussionStatus := models.DiscussionStatusActive
	if status == models.ReportRemoved {
		discussionStatus = models.DiscussionStatusRemoved
	}
	d, err := p.discussions.SettleReport(pctx, r.TargetDiscussionID, r.ID, discussionStatus, status.KeepsClaim())
	if err != nil {
		zap.S().Warnw("reviewed report held no claim", "report", r.ID.Hex(), "discussion", r.TargetDiscussionID.Hex(), "error", err)
	}
	if d != nil && status == models.ReportRemoved {
		if err := p.boards.Deleted(pctx, d.Location); err != nil {
			zap.S().Errorw("failed to decrement board count", "board", d.Location, "error", err)
		}
	}

	p.dispatch(models.Notification{
		Recipient:           r.ReporterIdentity,
		Sender:              models.SystemSender,
		Type:                models.NotificationModeration,
		RelatedDiscussionID: &r.TargetDiscussionID,
		Title:               "Report reviewed",
		Message:             fmt.Sprintf("Your report was %s", status),
	})
	if d != nil && status == models.ReportRemoved {
		p.dispatch(models.Notification{
			Recipient:           d.Recipient(),
			Sender:              models.SystemSender,
			Type:                models.NotificationModeration,
			RelatedDiscussionID: &r.TargetDiscussionID,
			Title:               "Post removed",
			Message:             fmt.Sprintf("Your post %q was removed by a moderator", d.Title),
		})
	}
	zap.S().Infow("report reviewed", "report", reportID, "status", status, "reviewer", reviewerID)
	return r, nil
}

func (p *Pipeline) dispatch(n models.Notification) {
	if !notifications.Deliverable(n.Recipient, n.Sender) {
		return
	}
	n.CreatedAt = p.now()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.notifyTimeout)
		defer cancel()
		if _, err := p.notifier.Notify(ctx, n); err != nil {
			zap.S().Errorw("failed to write notification", "type", n.Type, "recipient", n.Recipient, "error", err)
		}
	}()
}

// List returns reports, optionally filtered by status
func (p *Pipeline) List(ctx context.Context, status models.ReportStatus, limit, page int) ([]models.ModerationReport, error) {
	if status != "" && status != models.ReportPending && !status.Terminal() {
		return nil, models.NewValidationError("unknown report status", "status")
	}
	list, err := p.reports.Find(ctx, status, limit, page)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.ModerationReport{}
	}
	return list, nil
}

// Get returns one report
func (p *Pipeline) Get(ctx context.Context, reportID string) (*models.ModerationReport, error) {
	id, err := objectID("report", reportID)
	if err != nil {
		return nil, err
	}
	r, err := p.reports.FindByID(ctx, id)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, &models.NotFoundError{Kind: "report", ID: reportID}
	}
	return r, err
}
