package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/engagement"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Discussion exported for testing purposes
type Discussion struct {
	Svc *engagement.Service
}

// CreateHandler posts a new discussion
func (d Discussion) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	var draft engagement.Draft
	if !decode(w, r, &draft) {
		return
	}
	created, err := d.Svc.Create(r.Context(), actor, draft)
	if err != nil {
		writeError(w, "failed to create discussion", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListHandler returns discussions filtered by location and type
func (d Discussion) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := models.DiscussionQuery{
		Location: r.URL.Query().Get("location"),
		Type:     models.DiscussionType(r.URL.Query().Get("type")),
		Author:   r.URL.Query().Get("author"),
		Limit:    getLimit(r),
		Page:     getPage(r),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := d.Svc.List(ctx, q)
	if err != nil {
		writeError(w, "failed to get discussions", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetHandler returns a discussion by id
func (d Discussion) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	zap.S().Debugf("discussion id: %v", id)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	disc, err := d.Svc.Get(ctx, id)
	if err != nil {
		writeError(w, "failed to get discussion", err)
		return
	}
	writeJSON(w, http.StatusOK, disc)
}

// DeleteHandler deletes the caller's own discussion
func (d Discussion) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	if err := d.Svc.Delete(r.Context(), mux.Vars(r)["id"], actor); err != nil {
		writeError(w, "failed to delete discussion", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// interaction runs a discussion operation for the session identity and
// answers with the updated discussion
func (d Discussion) interaction(w http.ResponseWriter, r *http.Request, message string, run func(ctx context.Context, id, actor string) (*models.Discussion, error)) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	updated, err := run(r.Context(), mux.Vars(r)["id"], actor)
	if err != nil {
		writeError(w, message, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// LikeHandler toggles the caller's like
func (d Discussion) LikeHandler(w http.ResponseWriter, r *http.Request) {
	d.interaction(w, r, "failed to like discussion", d.Svc.Like)
}

// VoteHandler casts or switches the caller's poll vote
func (d Discussion) VoteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option string `json:"option"`
	}
	if !decode(w, r, &req) {
		return
	}
	d.interaction(w, r, "failed to vote", func(ctx context.Context, id, actor string) (*models.Discussion, error) {
		return d.Svc.Vote(ctx, id, actor, req.Option)
	})
}

// RSVPHandler joins an event or volunteer roster
func (d Discussion) RSVPHandler(w http.ResponseWriter, r *http.Request) {
	d.interaction(w, r, "failed to rsvp", d.Svc.RSVP)
}

// CancelRSVPHandler leaves an event or volunteer roster
func (d Discussion) CancelRSVPHandler(w http.ResponseWriter, r *http.Request) {
	d.interaction(w, r, "failed to cancel rsvp", d.Svc.CancelRSVP)
}

// DonateHandler records a donation pledge
func (d Discussion) DonateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	d.interaction(w, r, "failed to donate", func(ctx context.Context, id, actor string) (*models.Discussion, error) {
		return d.Svc.Donate(ctx, id, actor, req.Amount)
	})
}

// OfferHelpHandler adds the caller as a helper on a report
func (d Discussion) OfferHelpHandler(w http.ResponseWriter, r *http.Request) {
	d.interaction(w, r, "failed to offer help", d.Svc.OfferHelp)
}

// WithdrawHelpHandler removes the caller's help offer
func (d Discussion) WithdrawHelpHandler(w http.ResponseWriter, r *http.Request) {
	d.interaction(w, r, "failed to withdraw help", d.Svc.WithdrawHelp)
}

// HelperStatusHandler lets the author accept, decline or complete a helper
func (d Discussion) HelperStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.HelperStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	helper := mux.Vars(r)["helperId"]
	d.interaction(w, r, "failed to update helper status", func(ctx context.Context, id, actor string) (*models.Discussion, error) {
		return d.Svc.UpdateHelperStatus(ctx, id, actor, helper, req.Status)
	})
}

// ResolveHandler marks a report as no longer needing help
func (d Discussion) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	d.interaction(w, r, "failed to resolve discussion", d.Svc.Resolve)
}

// CommentHandler appends a comment
func (d Discussion) CommentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := d.Svc.Comment(r.Context(), mux.Vars(r)["id"], actor, req.Content)
	if err != nil {
		writeError(w, "failed to add comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
