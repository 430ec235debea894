package engagement

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

const maxCommentLength = 2000

// Like toggles the actor's like
func (s *Service) Like(ctx context.Context, id, actor string) (*models.Discussion, error) {
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideLike(d, actor)
	})
}

// Vote records or moves the actor's poll vote
func (s *Service) Vote(ctx context.Context, id, actor, option string) (*models.Discussion, error) {
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideVote(d, actor, option)
	})
}

// RSVP joins an event or volunteer roster
func (s *Service) RSVP(ctx context.Context, id, actor string) (*models.Discussion, error) {
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideRSVP(d, actor)
	})
}

// CancelRSVP leaves an event or volunteer roster
func (s *Service) CancelRSVP(ctx context.Context, id, actor string) (*models.Discussion, error) {
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideCancelRSVP(d, actor)
	})
}

// Donate adds a donation. Every donation is rewarded.
func (s *Service) Donate(ctx context.Context, id, actor string, amount float64) (*models.Discussion, error) {
	at := s.now()
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideDonate(d, actor, amount, at)
	})
}

// OfferHelp adds the actor as a helper on an incident
func (s *Service) OfferHelp(ctx context.Context, id, actor string) (*models.Discussion, error) {
	name, _, err := s.profiles.DisplayName(ctx, actor)
	if err != nil {
		return nil, err
	}
	at := s.now()
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideOfferHelp(d, actor, name, at)
	})
}

// WithdrawHelp removes the actor from the helpers of an incident
func (s *Service) WithdrawHelp(ctx context.Context, id, actor string) (*models.Discussion, error) {
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideWithdrawHelp(d, actor)
	})
}

// UpdateHelperStatus moves a helper through offered, accepted or declined,
// and completed. Only the author may do this.
func (s *Service) UpdateHelperStatus(ctx context.Context, id, actor, helperIdentity string, status models.HelperStatus) (*models.Discussion, error) {
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideHelperStatus(d, actor, helperIdentity, status)
	})
}

// Resolve marks an incident as no longer needing help. Only the author may
// do this and it cannot be undone.
func (s *Service) Resolve(ctx context.Context, id, actor string) (*models.Discussion, error) {
	return s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideResolve(d, actor)
	})
}

// Comment appends a comment carrying the actor's name as it is now
func (s *Service) Comment(ctx context.Context, id, actor, content string) (*models.Comment, error) {
	content = strings.TrimSpace(s.plain.Sanitize(content))
	if content == "" || utf8.RuneCountInString(content) > maxCommentLength {
		return nil, models.NewValidationError("content must be 1 to 2000 characters", "content")
	}
	name, registered, err := s.profiles.DisplayName(ctx, actor)
	if err != nil {
		return nil, err
	}
	c := models.Comment{
		ID:                primitive.NewObjectID(),
		Content:           content,
		AuthorIdentity:    actor,
		AuthorDisplayName: name,
		CreatedAt:         s.now(),
	}
	if _, err := s.interact(ctx, id, actor, func(d *models.Discussion) (plan, error) {
		return decideComment(d, actor, registered, c)
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a discussion. Only its author may do so, matched on the
// stable identity.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	pctx, cancel := s.persistContext(ctx)
	defer cancel()

	d, err := s.discussions.FindByID(pctx, oid)
	if errors.Is(err, databases.ErrNotFound) {
		return &models.NotFoundError{Kind: "discussion", ID: id}
	}
	if err != nil {
		return err
	}
	if err := requireAuthor(d, actor, "delete this discussion"); err != nil {
		return err
	}
	if err := s.discussions.DeleteByAuthor(pctx, oid, actor); err != nil {
		if errors.Is(err, databases.ErrNoMatch) {
			return &models.NotFoundError{Kind: "discussion", ID: id}
		}
		return err
	}
	// removal already took the post off its board
	if d.Status == models.DiscussionStatusRemoved {
		return nil
	}
	if err := s.boards.Deleted(pctx, d.Location); err != nil {
		zap.S().Errorw("failed to decrement board count", "board", d.Location, "error", err)
	}
	return nil
}
