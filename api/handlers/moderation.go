package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/config"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/moderation"
)

// Moderation exported for testing purposes
type Moderation struct {
	Pipeline *moderation.Pipeline
}

type reportRequest struct {
	DiscussionID string              `json:"discussionId"`
	Reason       models.ReportReason `json:"reason"`
	Details      string              `json:"details"`
}

type revokeRequest struct {
	ReportID     string `json:"reportId"`
	DiscussionID string `json:"discussionId"`
}

type actionRequest struct {
	Action models.ModerationAction `json:"action"`
	Notes  string                  `json:"notes"`
}

// ReportHandler files a report against a discussion
func (m Moderation) ReportHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	var req reportRequest
	if !decode(w, r, &req) {
		return
	}
	report, err := m.Pipeline.File(r.Context(), actor, req.DiscussionID, req.Reason, req.Details)
	if err != nil {
		writeError(w, "failed to report discussion", err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// RevokeHandler withdraws the caller's pending report
func (m Moderation) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	var req revokeRequest
	if !decode(w, r, &req) {
		return
	}
	report, err := m.Pipeline.Revoke(r.Context(), actor, req.ReportID, req.DiscussionID)
	if err != nil {
		writeError(w, "failed to revoke report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListHandler returns reports for review, optionally filtered by status
func (m Moderation) ListHandler(w http.ResponseWriter, r *http.Request) {
	status := models.ReportStatus(r.URL.Query().Get("status"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := m.Pipeline.List(ctx, status, getLimit(r), getPage(r))
	if err != nil {
		writeError(w, "failed to get reports", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetHandler returns one report
func (m Moderation) GetHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := m.Pipeline.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "failed to get report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ActionHandler settles a pending report
func (m Moderation) ActionHandler(w http.ResponseWriter, r *http.Request) {
	reviewer, ok := api.ReviewerFrom(r.Context())
	if !ok {
		config.ErrorStatus("admin token required", http.StatusUnauthorized, w, nil)
		return
	}
	var req actionRequest
	if !decode(w, r, &req) {
		return
	}
	report, err := m.Pipeline.Review(r.Context(), reviewer, mux.Vars(r)["id"], req.Action, req.Notes)
	if err != nil {
		writeError(w, "failed to review report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
