package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/models"
	"github.com/Was1f/UrbanFix-sub001/notifications"
)

// Notification exported for testing purposes
type Notification struct {
	Dispatcher *notifications.Dispatcher
}

type notificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

// ListHandler returns the caller's notifications, newest first
func (n Notification) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := n.Dispatcher.List(ctx, actor, unreadOnly, getLimit(r), getPage(r))
	if err != nil {
		writeError(w, "failed to get notifications", err)
		return
	}
	unread, err := n.Dispatcher.UnreadCount(ctx, actor)
	if err != nil {
		writeError(w, "failed to count notifications", err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: list, UnreadCount: unread})
}

// MarkReadHandler marks one of the caller's notifications as read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.Dispatcher.MarkRead(ctx, mux.Vars(r)["id"], actor); err != nil {
		writeError(w, "failed to mark notification read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}
