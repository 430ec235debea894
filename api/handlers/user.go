package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/ledger"
	"github.com/Was1f/UrbanFix-sub001/profiles"
)

// User exported for testing purposes
type User struct {
	Profiles *profiles.Resolver
	Ledger   *ledger.Ledger
}

type registerRequest struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// RegisterHandler creates an account for an identity
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Profiles.Register(ctx, req.Identity, req.Name, req.Email)
	if err != nil {
		writeError(w, "failed to register user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// RenameHandler changes the caller's display name
func (u User) RenameHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Profiles.Rename(ctx, actor, req.Name)
	if err != nil {
		writeError(w, "failed to rename user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// PointsHandler returns a user's points summary
func (u User) PointsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["identity"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	summary, err := u.Ledger.Summary(ctx, id)
	if err != nil {
		writeError(w, "failed to get points", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
