package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/config"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/verification"
)

// Auth exported for testing purposes
type Auth struct {
	Verification *verification.Service
	Sessions     *api.SessionAuth
}

type codeRequest struct {
	Identity string `json:"identity"`
	Code     string `json:"code"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	Identity string `json:"identity"`
}

// RequestCodeHandler sends a one-time login code to the identity's email
func (a Auth) RequestCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decode(w, r, &req) {
		return
	}
	req.Identity = strings.TrimSpace(req.Identity)
	if req.Identity == "" {
		writeError(w, "identity is required", models.NewValidationError("identity is required", "identity"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.Verification.RequestCode(ctx, req.Identity); err != nil {
		writeError(w, "failed to send code", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}

// TokenHandler exchanges a login code for a session token
func (a Auth) TokenHandler(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decode(w, r, &req) {
		return
	}
	req.Identity = strings.TrimSpace(req.Identity)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	token, err := a.Verification.Exchange(ctx, req.Identity, strings.TrimSpace(req.Code))
	var authz *models.AuthorizationError
	if errors.As(err, &authz) {
		config.ErrorStatus("invalid or expired code", http.StatusUnauthorized, w, err)
		return
	}
	if err != nil {
		writeError(w, "failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Identity: req.Identity})
}

// RevokeHandler ends the caller's session
func (a Auth) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Revoke(r); err != nil {
		writeError(w, "failed to revoke token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}
