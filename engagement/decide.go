package engagement

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// mutation is a single conditional update. It fails with ErrNoMatch when the
// document no longer looks like the one the decision was made on.
type mutation func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error)

// notice describes the notification an interaction emits
type notice struct {
	recipient string
	typ       models.NotificationType
	title     string
	message   func(actorName, discussionTitle string) string
}

// plan is the outcome of a decision. A nil mutate means there is nothing to
// change. When gate is set, the reward and notice only fire the first time
// the gate is claimed.
type plan struct {
	mutate mutation
	gate   string
	reward models.PointsAction
	notice *notice
}

func requireType(d *models.Discussion, types ...models.DiscussionType) error {
	for _, t := range types {
		if d.Type == t {
			return nil
		}
	}
	return models.NewValidationError(fmt.Sprintf("not supported on %s discussions", d.Type), "type")
}

func requireAuthor(d *models.Discussion, actor, action string) error {
	if !d.IsAuthor(actor) {
		return &models.AuthorizationError{Action: action}
	}
	return nil
}

func decideLike(d *models.Discussion, actor string) (plan, error) {
	if d.HasLiked(actor) {
		return plan{mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.RemoveLike(ctx, id, actor)
		}}, nil
	}
	return plan{
		mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.AddLike(ctx, id, actor)
		},
		gate:   models.RewardKey(models.ActionPostLiked, actor),
		reward: models.ActionPostLiked,
		notice: &notice{
			recipient: d.Recipient(),
			typ:       models.NotificationLike,
			title:     "New like",
			message: func(name, title string) string {
				return fmt.Sprintf("%s liked your post %q", name, title)
			},
		},
	}, nil
}

func decideVote(d *models.Discussion, actor, option string) (plan, error) {
	if err := requireType(d, models.DiscussionTypePoll); err != nil {
		return plan{}, err
	}
	if d.Poll == nil {
		return plan{}, models.NewValidationError("poll has no options", "poll")
	}
	to := d.Poll.OptionIndex(option)
	if to < 0 {
		return plan{}, models.NewValidationError(fmt.Sprintf("%q is not an option of this poll", option), "option")
	}
	from, voted := d.Poll.VoteOf(actor)
	if voted && from == to {
		return plan{}, nil
	}
	if voted {
		return plan{mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.SwitchVote(ctx, id, actor, from, to)
		}}, nil
	}
	return plan{
		mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.CastVote(ctx, id, actor, to)
		},
		reward: models.ActionPollVoted,
		notice: &notice{
			recipient: d.Recipient(),
			typ:       models.NotificationPollVote,
			title:     "New vote",
			message: func(name, title string) string {
				return fmt.Sprintf("%s voted on your poll %q", name, title)
			},
		},
	}, nil
}

func decideRSVP(d *models.Discussion, actor string) (plan, error) {
	if err := requireType(d, models.DiscussionTypeEvent, models.DiscussionTypeVolunteer); err != nil {
		return plan{}, err
	}
	if d.InRoster(actor) {
		return plan{}, nil
	}
	t := d.Type
	p := plan{
		mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.JoinRoster(ctx, id, t, actor)
		},
	}
	if t == models.DiscussionTypeEvent {
		p.reward = models.ActionEventRSVP
		p.notice = &notice{
			recipient: d.Recipient(),
			typ:       models.NotificationEventRSVP,
			title:     "New RSVP",
			message: func(name, title string) string {
				return fmt.Sprintf("%s is attending %q", name, title)
			},
		}
	} else {
		p.reward = models.ActionVolunteerSignup
		p.notice = &notice{
			recipient: d.Recipient(),
			typ:       models.NotificationVolunteer,
			title:     "New volunteer",
			message: func(name, title string) string {
				return fmt.Sprintf("%s volunteered for %q", name, title)
			},
		}
	}
	p.gate = models.RewardKey(p.reward, actor)
	return p, nil
}

func decideCancelRSVP(d *models.Discussion, actor string) (plan, error) {
	if err := requireType(d, models.DiscussionTypeEvent, models.DiscussionTypeVolunteer); err != nil {
		return plan{}, err
	}
	if !d.InRoster(actor) {
		return plan{}, nil
	}
	t := d.Type
	return plan{mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
		return db.LeaveRoster(ctx, id, t, actor)
	}}, nil
}

// validAmount accepts positive amounts up to the single donation cap. NaN
// fails both comparisons.
func validAmount(amount float64) bool {
	return amount > 0 && amount <= models.MaxDonationAmount
}

func decideDonate(d *models.Discussion, actor string, amount float64, at time.Time) (plan, error) {
	if err := requireType(d, models.DiscussionTypeDonation); err != nil {
		return plan{}, err
	}
	if !validAmount(amount) {
		return plan{}, models.NewValidationError(fmt.Sprintf("amount must be positive and at most %.0f", models.MaxDonationAmount), "amount")
	}
	if d.Donation != nil && !d.Donation.Accepts(amount) {
		return plan{}, models.NewValidationError("this fundraiser cannot take any more donations", "amount")
	}
	donor := models.Donor{Identity: actor, Amount: amount, DonatedAt: at}
	return plan{
		mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.AddDonation(ctx, id, donor)
		},
		reward: models.ActionDonationMade,
		notice: &notice{
			recipient: d.Recipient(),
			typ:       models.NotificationDonation,
			title:     "New donation",
			message: func(name, title string) string {
				return fmt.Sprintf("%s donated %.2f to %q", name, amount, title)
			},
		},
	}, nil
}

func decideOfferHelp(d *models.Discussion, actor, actorName string, at time.Time) (plan, error) {
	if err := requireType(d, models.DiscussionTypeReport); err != nil {
		return plan{}, err
	}
	if d.Report == nil {
		return plan{}, models.NewValidationError("report has no helper list", "report")
	}
	if _, ok := d.Report.Helper(actor); ok {
		return plan{}, &models.ConflictError{Reason: models.ConflictAlreadyOffered, Msg: "you already offered help on this report"}
	}
	helper := models.Helper{
		Identity:  actor,
		Name:      actorName,
		Status:    models.HelperOffered,
		OfferedAt: at,
		UpdatedAt: at,
	}
	return plan{
		mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.AddHelper(ctx, id, helper)
		},
		gate:   models.RewardKey(models.ActionHelpOffered, actor),
		reward: models.ActionHelpOffered,
		notice: &notice{
			recipient: d.Recipient(),
			typ:       models.NotificationHelpOffered,
			title:     "Help offered",
			message: func(name, title string) string {
				return fmt.Sprintf("%s offered to help with %q", name, title)
			},
		},
	}, nil
}

func decideWithdrawHelp(d *models.Discussion, actor string) (plan, error) {
	if err := requireType(d, models.DiscussionTypeReport); err != nil {
		return plan{}, err
	}
	if d.Report == nil {
		return plan{}, &models.ConflictError{Reason: models.ConflictNotOffered, Msg: "you have not offered help on this report"}
	}
	h, ok := d.Report.Helper(actor)
	if !ok {
		return plan{}, &models.ConflictError{Reason: models.ConflictNotOffered, Msg: "you have not offered help on this report"}
	}
	if h.Status != models.HelperOffered && h.Status != models.HelperAccepted {
		return plan{}, &models.ConflictError{Reason: models.ConflictInvalidState, Msg: fmt.Sprintf("help that is %s cannot be withdrawn", h.Status)}
	}
	return plan{mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
		return db.RemoveHelper(ctx, id, actor)
	}}, nil
}

func decideHelperStatus(d *models.Discussion, actor, helperIdentity string, next models.HelperStatus) (plan, error) {
	if err := requireType(d, models.DiscussionTypeReport); err != nil {
		return plan{}, err
	}
	if err := requireAuthor(d, actor, "update helper status"); err != nil {
		return plan{}, err
	}
	switch next {
	case models.HelperAccepted, models.HelperDeclined, models.HelperCompleted:
	default:
		return plan{}, models.NewValidationError("status must be accepted, declined or completed", "status")
	}
	if d.Report == nil {
		return plan{}, &models.NotFoundError{Kind: "helper", ID: helperIdentity}
	}
	h, ok := d.Report.Helper(helperIdentity)
	if !ok {
		return plan{}, &models.NotFoundError{Kind: "helper", ID: helperIdentity}
	}
	if h.Status == next {
		return plan{}, nil
	}
	if !h.Status.CanTransition(next) {
		return plan{}, &models.ConflictError{Reason: models.ConflictInvalidState, Msg: fmt.Sprintf("helper cannot move from %s to %s", h.Status, next)}
	}

	from := h.Status
	typ := models.NotificationHelpStatus
	if next == models.HelperAccepted {
		typ = models.NotificationHelpAccepted
	}
	return plan{
		mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
			return db.SetHelperStatus(ctx, id, helperIdentity, from, next)
		},
		notice: &notice{
			recipient: helperIdentity,
			typ:       typ,
			title:     "Help " + string(next),
			message: func(_, title string) string {
				return fmt.Sprintf("Your help on %q was marked %s", title, next)
			},
		},
	}, nil
}

func decideResolve(d *models.Discussion, actor string) (plan, error) {
	if err := requireType(d, models.DiscussionTypeReport); err != nil {
		return plan{}, err
	}
	if err := requireAuthor(d, actor, "resolve this report"); err != nil {
		return plan{}, err
	}
	if d.Report == nil || !d.Report.HelpNeeded {
		return plan{}, nil
	}
	return plan{mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
		return db.ResolveHelp(ctx, id)
	}}, nil
}

func decideComment(d *models.Discussion, actor string, registered bool, c models.Comment) (plan, error) {
	p := plan{mutate: func(ctx context.Context, db databases.DiscussionDatabase, id primitive.ObjectID) (*models.Discussion, error) {
		return db.AddComment(ctx, id, c)
	}}
	if !registered {
		return p, nil
	}
	p.reward = models.ActionCommentAdded
	p.notice = &notice{
		recipient: d.Recipient(),
		typ:       models.NotificationComment,
		title:     "New comment",
		message: func(name, title string) string {
			return fmt.Sprintf("%s commented on %q", name, title)
		},
	}
	return p, nil
}
