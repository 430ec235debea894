package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Was1f/UrbanFix-sub001/api"
)

type fakeSessions struct {
	tokens  map[string]string
	lookups int
}

func (f *fakeSessions) Identity(_ context.Context, token string) (string, error) {
	f.lookups++
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return "", errors.New("no session")
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	id, _ := api.IdentityFrom(r.Context())
	_, _ = w.Write([]byte(id))
}

func TestSessionAuth(t *testing.T) {
	sessions := &fakeSessions{tokens: map[string]string{"tok-1": "alice"}}
	auth := api.NewSessionAuth(sessions)
	h := auth.Middleware(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "alice", rr.Body.String())
	assert.Equal(t, 1, sessions.lookups, "second request is served from the cache")

	require.NoError(t, auth.Revoke(req))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminMiddleware(t *testing.T) {
	const secret = "s3cret"
	sign := func(claims jwt.MapClaims, key string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"admin", sign(jwt.MapClaims{"sub": "admin-1", "scope": "admin", "exp": exp}, secret), http.StatusOK},
		{"wrong scope", sign(jwt.MapClaims{"sub": "admin-1", "scope": "user", "exp": exp}, secret), http.StatusForbidden},
		{"wrong key", sign(jwt.MapClaims{"sub": "admin-1", "scope": "admin", "exp": exp}, "other"), http.StatusUnauthorized},
		{"expired", sign(jwt.MapClaims{"sub": "admin-1", "scope": "admin", "exp": time.Now().Add(-time.Hour).Unix()}, secret), http.StatusUnauthorized},
		{"no expiry", sign(jwt.MapClaims{"sub": "admin-1", "scope": "admin"}, secret), http.StatusUnauthorized},
		{"no subject", sign(jwt.MapClaims{"scope": "admin", "exp": exp}, secret), http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	h := api.AdminMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := api.ReviewerFrom(r.Context())
		_, _ = w.Write([]byte(id))
	}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "admin-1", rr.Body.String())
			}
		})
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tests[0].token)
	api.AdminMiddleware("")(http.HandlerFunc(whoAmI)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestLogger(t *testing.T) {
	var seen string
	h := api.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = api.RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-Id"))
}

func TestTimeoutMiddleware(t *testing.T) {
	h := api.TimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, api.BearerToken(req))
	req.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", api.BearerToken(req))
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, api.BearerToken(req))
}
