// Package profiles resolves stable identities to display names
package profiles

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

const maxNameLength = 64

// Resolver looks up and maintains user profiles
type Resolver struct {
	users databases.UserDatabase
	now   func() time.Time
}

// New creates a resolver
func New(users databases.UserDatabase) *Resolver {
	return &Resolver{users: users, now: func() time.Time { return time.Now().UTC() }}
}

// DisplayName returns the current name for identity. Identities without an
// account resolve to Anonymous with registered false.
func (r *Resolver) DisplayName(ctx context.Context, identity string) (string, bool, error) {
	if identity == "" {
		return models.AnonymousName, false, nil
	}
	u, err := r.users.FindByIdentity(ctx, identity)
	if errors.Is(err, databases.ErrNotFound) {
		return models.AnonymousName, false, nil
	}
	if err != nil {
		return "", false, err
	}
	if u.Name == "" {
		return models.AnonymousName, true, nil
	}
	return u.Name, true, nil
}

// Get returns the profile of identity
func (r *Resolver) Get(ctx context.Context, identity string) (*models.User, error) {
	u, err := r.users.FindByIdentity(ctx, identity)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, &models.NotFoundError{Kind: "user", ID: identity}
	}
	return u, err
}

// Register creates an account for identity
func (r *Resolver) Register(ctx context.Context, identity, name, email string) (*models.User, error) {
	identity = strings.TrimSpace(identity)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	var fields []string
	if identity == "" {
		fields = append(fields, "identity")
	}
	if !validName(name) {
		fields = append(fields, "name")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			fields = append(fields, "email")
		}
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError("invalid profile", fields...)
	}

	now := r.now()
	u := models.User{
		Identity:  identity,
		Name:      name,
		Email:     email,
		Points:    models.PointsAccount{History: []models.PointsEntry{}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := r.users.InsertOne(ctx, u)
	if errors.Is(err, databases.ErrDuplicate) {
		return nil, &models.ConflictError{Reason: models.ConflictAlreadyExists, Msg: "an account already exists for this identity"}
	}
	if err != nil {
		return nil, err
	}
	u.ID = id
	return &u, nil
}

// Rename changes the display name. Comments written earlier keep the name
// they were written under.
func (r *Resolver) Rename(ctx context.Context, identity, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if !validName(name) {
		return nil, models.NewValidationError("name must be 1 to 64 characters and not reserved", "name")
	}
	u, err := r.users.UpdateName(ctx, identity, name)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, &models.NotFoundError{Kind: "user", ID: identity}
	}
	return u, err
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n > 0 && n <= maxNameLength && !strings.EqualFold(name, models.AnonymousName) && !strings.EqualFold(name, models.SystemSender)
}
