package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/config"
)

// sessionCacheTTL bounds how long a revoked token can still be accepted by
// another instance.
const sessionCacheTTL = time.Minute

// Sessions resolves session tokens to identities
type Sessions interface {
	Identity(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// SessionAuth authenticates bearer session tokens
type SessionAuth struct {
	authenticator auth.Authenticator
	strategy      auth.Strategy
	sessions      Sessions
}

// NewSessionAuth sets up go-guardian with a cached bearer strategy whose
// misses are looked up in the session store
func NewSessionAuth(sessions Sessions) *SessionAuth {
	s := &SessionAuth{sessions: sessions}
	cache := sessionCache{store.NewFIFO(context.Background(), sessionCacheTTL)}
	s.strategy = bearer.New(s.lookup, cache)
	s.authenticator = auth.New()
	s.authenticator.EnableStrategy(bearer.CachedStrategyKey, s.strategy)
	return s
}

// sessionCache treats an expired entry as a miss so the token is looked up
// again instead of rejected
type sessionCache struct {
	*store.FIFO
}

func (c sessionCache) Load(key string, r *http.Request) (interface{}, bool, error) {
	v, ok, err := c.FIFO.Load(key, r)
	if errors.Is(err, store.ErrCachedExp) {
		return nil, false, nil
	}
	return v, ok, err
}

func (s *SessionAuth) lookup(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	identity, err := s.sessions.Identity(ctx, token)
	if err != nil {
		return nil, err
	}
	return auth.NewDefaultUser(identity, identity, nil, nil), nil
}

// Middleware rejects requests without a live session and stores the
// identity on the request context
func (s *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.String())
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		ctx := WithIdentity(r.Context(), user.UserName())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Revoke ends the session carried by the request
func (s *SessionAuth) Revoke(r *http.Request) error {
	token := BearerToken(r)
	if token == "" {
		return errors.New("missing bearer token")
	}
	if err := auth.Revoke(s.strategy, token, r); err != nil {
		zap.S().Debugw("token was not cached", "error", err)
	}
	return s.sessions.Revoke(r.Context(), token)
}

// AdminMiddleware accepts HS256 tokens signed with secret that carry
// scope=admin. The subject becomes the reviewer id.
func AdminMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				config.ErrorStatus("admin access is not configured", http.StatusUnauthorized, w, nil)
				return
			}
			raw := BearerToken(r)
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				config.ErrorStatus("invalid admin token", http.StatusUnauthorized, w, err)
				return
			}
			if scope, _ := claims["scope"].(string); scope != "admin" {
				config.ErrorStatus("admin scope required", http.StatusForbidden, w, nil)
				return
			}
			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				config.ErrorStatus("admin token has no subject", http.StatusUnauthorized, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithReviewer(r.Context(), sub)))
		})
	}
}
