// Package boards keeps the per-location post counters. The stored count is a
// cache of the live discussion count and Reconcile corrects any drift.
package boards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Registry manages location boards
type Registry struct {
	boards      databases.BoardDatabase
	discussions databases.DiscussionDatabase
}

// NewRegistry creates a board registry
func NewRegistry(boards databases.BoardDatabase, discussions databases.DiscussionDatabase) *Registry {
	return &Registry{boards: boards, discussions: discussions}
}

// Ensure returns the board for title, creating it on first use
func (r *Registry) Ensure(ctx context.Context, title string) (*models.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewValidationError("board title is required", "location")
	}
	return r.boards.Ensure(ctx, title)
}

// Created counts a new discussion on the board
func (r *Registry) Created(ctx context.Context, title string) error {
	return r.boards.IncrementPostCount(ctx, title, 1)
}

// Deleted uncounts a removed discussion from the board
func (r *Registry) Deleted(ctx context.Context, title string) error {
	return r.boards.IncrementPostCount(ctx, title, -1)
}

// Reconcile recomputes the live discussion count for title and stores it
func (r *Registry) Reconcile(ctx context.Context, title string) (*models.Board, error) {
	count, err := r.discussions.CountByLocation(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("count discussions in %q: %w", title, err)
	}
	return r.boards.SetPostCount(ctx, title, count)
}

// ReconcileAll reconciles every board and returns how many had drifted
func (r *Registry) ReconcileAll(ctx context.Context) (int, error) {
	all, err := r.boards.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	drifted := 0
	for _, b := range all {
		fixed, err := r.Reconcile(ctx, b.Title)
		if err != nil {
			return drifted, err
		}
		if fixed.PostCount != b.PostCount {
			zap.S().Infow("board count corrected", "board", b.Title, "cached", b.PostCount, "live", fixed.PostCount)
			drifted++
		}
	}
	return drifted, nil
}

// List returns every board sorted by title
func (r *Registry) List(ctx context.Context) ([]models.Board, error) {
	return r.boards.FindAll(ctx)
}

// Get returns a reconciled view of one board
func (r *Registry) Get(ctx context.Context, title string) (*models.Board, error) {
	if _, err := r.boards.FindByTitle(ctx, title); err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return nil, &models.NotFoundError{Kind: "board", ID: title}
		}
		return nil, err
	}
	return r.Reconcile(ctx, title)
}
