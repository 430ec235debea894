package engagement

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxPollOptions       = 10
)

// Draft is a discussion as submitted. Only the fields of Type are read.
type Draft struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Type        models.DiscussionType `json:"type"`
	Location    string                `json:"location"`
	Priority    string                `json:"priority"`
	Image       string                `json:"image"`
	Anonymous   bool                  `json:"anonymous"`

	Options     []string   `json:"options"`
	Date        *time.Time `json:"date"`
	Venue       string     `json:"venue"`
	SlotsNeeded int        `json:"slotsNeeded"`
	GoalAmount  float64    `json:"goalAmount"`
}

// build validates the draft and returns the discussion it describes
func (s *Service) build(dr Draft, author, authorIdentity string) (*models.Discussion, error) {
	var fields []string
	title := strings.TrimSpace(s.plain.Sanitize(dr.Title))
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		fields = append(fields, "title")
	}
	description := strings.TrimSpace(s.rich.Sanitize(dr.Description))
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		fields = append(fields, "description")
	}
	location := strings.TrimSpace(dr.Location)
	if location == "" {
		fields = append(fields, "location")
	}
	priority := strings.ToLower(strings.TrimSpace(dr.Priority))
	if priority == "" {
		priority = models.DefaultPriority
	} else if !validPriority(priority) {
		fields = append(fields, "priority")
	}
	if !dr.Type.Valid() {
		fields = append(fields, "type")
	}

	now := s.now()
	d := &models.Discussion{
		Title:          title,
		Description:    description,
		Type:           dr.Type,
		Author:         author,
		AuthorIdentity: authorIdentity,
		Anonymous:      dr.Anonymous,
		Location:       location,
		Priority:       priority,
		Image:          strings.TrimSpace(dr.Image),
		Status:         models.DiscussionStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch dr.Type {
	case models.DiscussionTypePoll:
		options, ok := s.pollOptions(dr.Options)
		if !ok {
			fields = append(fields, "options")
		}
		d.Poll = &models.Poll{Options: options, Tallies: make([]int64, len(options))}
	case models.DiscussionTypeEvent:
		d.Event = &models.Event{Date: dr.Date, Venue: strings.TrimSpace(dr.Venue)}
	case models.DiscussionTypeVolunteer:
		if dr.SlotsNeeded < 0 {
			fields = append(fields, "slotsNeeded")
		}
		d.Volunteer = &models.Volunteer{Date: dr.Date, SlotsNeeded: dr.SlotsNeeded}
	case models.DiscussionTypeDonation:
		if !validAmount(dr.GoalAmount) {
			fields = append(fields, "goalAmount")
		}
		d.Donation = &models.Donation{GoalAmount: dr.GoalAmount}
	case models.DiscussionTypeReport:
		d.Report = &models.Incident{HelpNeeded: true}
	}

	if len(fields) > 0 {
		return nil, models.NewValidationError("invalid discussion", fields...)
	}
	d.EnsureCollections()
	return d, nil
}

func validPriority(p string) bool {
	for _, v := range models.Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// pollOptions requires two to ten distinct non-empty options
func (s *Service) pollOptions(raw []string) ([]string, bool) {
	seen := map[string]bool{}
	var out []string
	for _, o := range raw {
		o = strings.TrimSpace(s.plain.Sanitize(o))
		if o == "" || seen[o] {
			return nil, false
		}
		seen[o] = true
		out = append(out, o)
	}
	return out, len(out) >= 2 && len(out) <= maxPollOptions
}

// Create posts a new discussion for the actor and counts it on its board
func (s *Service) Create(ctx context.Context, actor string, dr Draft) (*models.Discussion, error) {
	author := models.AnonymousName
	if !dr.Anonymous {
		name, _, err := s.profiles.DisplayName(ctx, actor)
		if err != nil {
			return nil, err
		}
		author = name
	}
	d, err := s.build(dr, author, actor)
	if err != nil {
		return nil, err
	}

	pctx, cancel := s.persistContext(ctx)
	defer cancel()

	if _, err := s.boards.Ensure(pctx, d.Location); err != nil {
		return nil, err
	}
	id, err := s.discussions.InsertOne(pctx, *d)
	if err != nil {
		return nil, err
	}
	d.ID = id

	if err := s.boards.Created(pctx, d.Location); err != nil {
		zap.S().Errorw("failed to increment board count", "board", d.Location, "error", err)
	}
	if err := s.ledger.Award(pctx, actor, models.ActionPostCreated, d.Location); err != nil {
		zap.S().Errorw("failed to award points", "identity", actor, "action", models.ActionPostCreated, "error", err)
	}
	return d, nil
}

// Get returns a visible discussion
func (s *Service) Get(ctx context.Context, id string) (*models.Discussion, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, oid)
}

// List returns a page of visible discussions, newest first
func (s *Service) List(ctx context.Context, q models.DiscussionQuery) ([]models.Discussion, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, models.NewValidationError("unknown discussion type", "type")
	}
	list, err := s.discussions.Find(ctx, q)
	if err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return []models.Discussion{}, nil
		}
		return nil, err
	}
	if list == nil {
		list = []models.Discussion{}
	}
	return list, nil
}
