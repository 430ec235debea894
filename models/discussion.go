package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnonymousName is the display name and notification recipient used for
// content posted without a visible author
const AnonymousName = "Anonymous"

// DiscussionType is the closed set of post variants
type DiscussionType string

// Discussion types
const (
	DiscussionTypePoll      DiscussionType = "Poll"
	DiscussionTypeEvent     DiscussionType = "Event"
	DiscussionTypeDonation  DiscussionType = "Donation"
	DiscussionTypeVolunteer DiscussionType = "Volunteer"
	DiscussionTypeReport    DiscussionType = "Report"
)

// Valid reports whether t is one of the known discussion types
func (t DiscussionType) Valid() bool {
	switch t {
	case DiscussionTypePoll, DiscussionTypeEvent, DiscussionTypeDonation, DiscussionTypeVolunteer, DiscussionTypeReport:
		return true
	}
	return false
}

// HasRoster reports whether the type keeps a participant set joined by RSVP
func (t DiscussionType) HasRoster() bool {
	return t == DiscussionTypeEvent || t == DiscussionTypeVolunteer
}

// DiscussionStatus is the moderation visibility of a discussion
type DiscussionStatus string

// Discussion statuses
const (
	DiscussionStatusActive  DiscussionStatus = "active"
	DiscussionStatusFlagged DiscussionStatus = "flagged"
	DiscussionStatusRemoved DiscussionStatus = "removed"
)

// Priorities accepted on a discussion
var Priorities = []string{"low", "medium", "high", "urgent"}

// DefaultPriority is used when a post does not name one
const DefaultPriority = "medium"

// Discussion holds the structure for the discussions collection in mongo.
// Exactly one of the payload pointers is set and it matches Type.
type Discussion struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Title          string              `json:"title" bson:"title"`
	Description    string              `json:"description" bson:"description"`
	Type           DiscussionType      `json:"type" bson:"type"`
	Author         string              `json:"author" bson:"author"`
	AuthorIdentity string              `json:"authorIdentity,omitempty" bson:"authorIdentity"`
	Anonymous      bool                `json:"anonymous" bson:"anonymous"`
	Location       string              `json:"location" bson:"location"`
	Priority       string              `json:"priority" bson:"priority"`
	Image          string              `json:"image,omitempty" bson:"image,omitempty"`
	Likes          []string            `json:"likes" bson:"likes"`
	Comments       []Comment           `json:"comments" bson:"comments"`
	Status         DiscussionStatus    `json:"status" bson:"status"`
	OpenReportID   *primitive.ObjectID `json:"-" bson:"openReportId,omitempty"`
	Rewarded       []string            `json:"-" bson:"rewarded"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`

	Poll      *Poll      `json:"poll,omitempty" bson:"poll,omitempty"`
	Event     *Event     `json:"event,omitempty" bson:"event,omitempty"`
	Volunteer *Volunteer `json:"volunteer,omitempty" bson:"volunteer,omitempty"`
	Donation  *Donation  `json:"donation,omitempty" bson:"donation,omitempty"`
	Report    *Incident  `json:"report,omitempty" bson:"report,omitempty"`
}

// MarshalJSON leaves the author's identity out of anonymous posts
func (d Discussion) MarshalJSON() ([]byte, error) {
	type discussion Discussion
	out := discussion(d)
	if out.Anonymous {
		out.AuthorIdentity = ""
	}
	return json.Marshal(out)
}

// Recipient is the identity that receives notifications about this discussion
func (d *Discussion) Recipient() string {
	if d.Anonymous {
		return AnonymousName
	}
	return d.AuthorIdentity
}

// IsAuthor compares against the stable identity, never the display name
func (d *Discussion) IsAuthor(identity string) bool {
	return identity != "" && d.AuthorIdentity == identity
}

// HasLiked reports whether identity is in the like set
func (d *Discussion) HasLiked(identity string) bool {
	return contains(d.Likes, identity)
}

// InRoster reports whether identity is an attendee or volunteer
func (d *Discussion) InRoster(identity string) bool {
	switch {
	case d.Event != nil:
		return contains(d.Event.Attendees, identity)
	case d.Volunteer != nil:
		return contains(d.Volunteer.Volunteers, identity)
	}
	return false
}

// PayloadMatches checks that exactly one payload is set and that it belongs to Type
func (d *Discussion) PayloadMatches() bool {
	set := 0
	for _, p := range []bool{d.Poll != nil, d.Event != nil, d.Volunteer != nil, d.Donation != nil, d.Report != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return false
	}
	switch d.Type {
	case DiscussionTypePoll:
		return d.Poll != nil
	case DiscussionTypeEvent:
		return d.Event != nil
	case DiscussionTypeVolunteer:
		return d.Volunteer != nil
	case DiscussionTypeDonation:
		return d.Donation != nil
	case DiscussionTypeReport:
		return d.Report != nil
	}
	return false
}

// Comment is a snapshot of what was said and by whom at the time it was said
type Comment struct {
	ID                primitive.ObjectID `json:"id" bson:"_id"`
	Content           string             `json:"content" bson:"content"`
	AuthorIdentity    string             `json:"authorIdentity" bson:"authorIdentity"`
	AuthorDisplayName string             `json:"authorDisplayName" bson:"authorDisplayName"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
}

// Poll payload. Tallies runs parallel to Options and Voters holds one record
// per identity, so no user supplied text ever becomes a document path.
type Poll struct {
	Options []string    `bson:"options"`
	Tallies []int64     `bson:"tallies"`
	Voters  []PollVoter `bson:"voters"`
}

// PollVoter records which option an identity picked
type PollVoter struct {
	Identity string `json:"identity" bson:"identity"`
	Option   int    `json:"option" bson:"option"`
}

// OptionIndex returns the index of option or -1
func (p *Poll) OptionIndex(option string) int {
	for i, o := range p.Options {
		if o == option {
			return i
		}
	}
	return -1
}

// VoteOf returns the option index identity voted for
func (p *Poll) VoteOf(identity string) (int, bool) {
	for _, v := range p.Voters {
		if v.Identity == identity {
			return v.Option, true
		}
	}
	return -1, false
}

// VotesByOption maps each option to its tally
func (p *Poll) VotesByOption() map[string]int64 {
	m := make(map[string]int64, len(p.Options))
	for i, o := range p.Options {
		var n int64
		if i < len(p.Tallies) {
			n = p.Tallies[i]
		}
		m[o] = n
	}
	return m
}

// VoteByUser maps each voter to the option text they chose
func (p *Poll) VoteByUser() map[string]string {
	m := make(map[string]string, len(p.Voters))
	for _, v := range p.Voters {
		if v.Option >= 0 && v.Option < len(p.Options) {
			m[v.Identity] = p.Options[v.Option]
		}
	}
	return m
}

// MarshalJSON exposes the poll in its option-keyed form
func (p Poll) MarshalJSON() ([]byte, error) {
	options := p.Options
	if options == nil {
		options = []string{}
	}
	return json.Marshal(struct {
		Options       []string          `json:"options"`
		VotesByOption map[string]int64  `json:"votesByOption"`
		VoteByUser    map[string]string `json:"voteByUser"`
		TotalVotes    int               `json:"totalVotes"`
	}{
		Options:       options,
		VotesByOption: p.VotesByOption(),
		VoteByUser:    p.VoteByUser(),
		TotalVotes:    len(p.Voters),
	})
}

// Event payload
type Event struct {
	Date          *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	Venue         string     `json:"venue,omitempty" bson:"venue,omitempty"`
	Attendees     []string   `json:"attendees" bson:"attendees"`
	AttendeeCount int        `json:"attendeeCount" bson:"attendeeCount"`
}

// Volunteer payload
type Volunteer struct {
	Date           *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	SlotsNeeded    int        `json:"slotsNeeded,omitempty" bson:"slotsNeeded,omitempty"`
	Volunteers     []string   `json:"volunteers" bson:"volunteers"`
	VolunteerCount int        `json:"volunteerCount" bson:"volunteerCount"`
}

// Donation limits. A goal or a single donation is at most MaxDonationAmount
// and the running total never passes MaxDonationTotal.
const (
	MaxDonationAmount = 1e9
	MaxDonationTotal  = 1e12
)

// Donation payload. CurrentAmount is the sum of Donors[].Amount.
type Donation struct {
	GoalAmount    float64 `json:"goalAmount" bson:"goalAmount"`
	CurrentAmount float64 `json:"currentAmount" bson:"currentAmount"`
	Donors        []Donor `json:"donors" bson:"donors"`
}

// Accepts reports whether amount fits under the total limit
func (d *Donation) Accepts(amount float64) bool {
	return d.CurrentAmount+amount <= MaxDonationTotal
}

// Donor is a single donation record
type Donor struct {
	Identity  string    `json:"identity" bson:"identity"`
	Amount    float64   `json:"amount" bson:"amount"`
	DonatedAt time.Time `json:"donatedAt" bson:"donatedAt"`
}

// Incident is the payload of a Report discussion (a community incident, not a
// moderation report)
type Incident struct {
	Helpers    []Helper `json:"helpers" bson:"helpers"`
	HelpNeeded bool     `json:"helpNeeded" bson:"helpNeeded"`
}

// Helper returns the helper entry for identity
func (i *Incident) Helper(identity string) (Helper, bool) {
	for _, h := range i.Helpers {
		if h.Identity == identity {
			return h, true
		}
	}
	return Helper{}, false
}

// HelperStatus is the sub-state of a helper on an incident
type HelperStatus string

// Helper statuses
const (
	HelperOffered   HelperStatus = "offered"
	HelperAccepted  HelperStatus = "accepted"
	HelperDeclined  HelperStatus = "declined"
	HelperCompleted HelperStatus = "completed"
)

// CanTransition reports whether a helper may move from s to next
func (s HelperStatus) CanTransition(next HelperStatus) bool {
	switch s {
	case HelperOffered:
		return next == HelperAccepted || next == HelperDeclined
	case HelperAccepted:
		return next == HelperCompleted
	}
	return false
}

// Helper is a user offering assistance on an incident
type Helper struct {
	Identity  string       `json:"identity" bson:"identity"`
	Name      string       `json:"name" bson:"name"`
	Status    HelperStatus `json:"status" bson:"status"`
	OfferedAt time.Time    `json:"offeredAt" bson:"offeredAt"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// RewardKey names the first-occurrence gate of an interaction by an identity
func RewardKey(action PointsAction, identity string) string {
	return string(action) + ":" + identity
}

// DiscussionQuery filters listings
type DiscussionQuery struct {
	Location string
	Type     DiscussionType
	Author   string
	Limit    int
	Page     int
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// EnsureCollections replaces nil slices with empty ones so array update
// operators always find an array to work on
func (d *Discussion) EnsureCollections() {
	if d.Likes == nil {
		d.Likes = []string{}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	if d.Rewarded == nil {
		d.Rewarded = []string{}
	}
	if d.Poll != nil {
		if d.Voters() == nil {
			d.Poll.Voters = []PollVoter{}
		}
		if len(d.Poll.Tallies) != len(d.Poll.Options) {
			t := make([]int64, len(d.Poll.Options))
			copy(t, d.Poll.Tallies)
			d.Poll.Tallies = t
		}
	}
	if d.Event != nil && d.Event.Attendees == nil {
		d.Event.Attendees = []string{}
	}
	if d.Volunteer != nil && d.Volunteer.Volunteers == nil {
		d.Volunteer.Volunteers = []string{}
	}
	if d.Donation != nil && d.Donation.Donors == nil {
		d.Donation.Donors = []Donor{}
	}
	if d.Report != nil && d.Report.Helpers == nil {
		d.Report.Helpers = []Helper{}
	}
}

// Voters returns the poll voter records, or nil for non-poll discussions
func (d *Discussion) Voters() []PollVoter {
	if d.Poll == nil {
		return nil
	}
	return d.Poll.Voters
}
