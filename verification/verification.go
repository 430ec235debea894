// Package verification issues one-time login codes and the session tokens
// they are exchanged for. Both live in the keyed store with a TTL.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

const (
	codeDigits    = 6
	codePrefix    = "otp:"
	sessionPrefix = "session:"
)

// Users finds the account a code is requested for
type Users interface {
	FindByIdentity(ctx context.Context, identity string) (*models.User, error)
}

// Service issues codes and sessions
type Service struct {
	keys       databases.KeyStore
	users      Users
	sender     Sender
	codeTTL    time.Duration
	sessionTTL time.Duration
}

// New creates the verification service
func New(keys databases.KeyStore, users Users, sender Sender, codeTTL, sessionTTL time.Duration) *Service {
	return &Service{keys: keys, users: users, sender: sender, codeTTL: codeTTL, sessionTTL: sessionTTL}
}

func newCode() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// RequestCode generates a code for identity, keeps its hash and sends it.
// A new request replaces any earlier code.
func (s *Service) RequestCode(ctx context.Context, identity string) error {
	u, err := s.users.FindByIdentity(ctx, identity)
	if errors.Is(err, databases.ErrNotFound) {
		return &models.NotFoundError{Kind: "user", ID: identity}
	}
	if err != nil {
		return err
	}
	code, err := newCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.keys.Set(ctx, codePrefix+identity, string(hash), s.codeTTL); err != nil {
		return err
	}
	return s.sender.Send(ctx, u, code)
}

// Exchange consumes the code and returns a new session token. A wrong code
// burns the pending one.
func (s *Service) Exchange(ctx context.Context, identity, code string) (string, error) {
	hash, err := s.keys.GetDel(ctx, codePrefix+identity)
	if errors.Is(err, databases.ErrNotFound) {
		return "", &models.AuthorizationError{Action: "sign in without a pending code"}
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return "", &models.AuthorizationError{Action: "sign in with this code"}
	}
	token := uuid.NewString()
	if err := s.keys.Set(ctx, sessionPrefix+token, identity, s.sessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

// Identity returns the identity a session token belongs to
func (s *Service) Identity(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", databases.ErrNotFound
	}
	return s.keys.Get(ctx, sessionPrefix+token)
}

// Revoke ends a session
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.keys.Del(ctx, sessionPrefix+token)
}
