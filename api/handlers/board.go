package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/boards"
	"github.com/Was1f/UrbanFix-sub001/ledger"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Board exported for testing purposes
type Board struct {
	Registry *boards.Registry
	Ledger   *ledger.Ledger
}

// ListHandler returns every board
func (b Board) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := b.Registry.List(ctx)
	if err != nil {
		writeError(w, "failed to get boards", err)
		return
	}
	if list == nil {
		list = []models.Board{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetHandler returns one board with its post count recounted
func (b Board) GetHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	board, err := b.Registry.Get(ctx, mux.Vars(r)["title"])
	if err != nil {
		writeError(w, "failed to get board", err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// LeaderboardHandler ranks users by points earned in a period, optionally
// on one board
func (b Board) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	period, err := ledger.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, "invalid period", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	entries, err := b.Ledger.Leaderboard(ctx, period, r.URL.Query().Get("location"), getLimit(r))
	if err != nil {
		writeError(w, "failed to get leaderboard", err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
