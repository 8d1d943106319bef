// Package repository stores each user's materialized evidence, parsed play
// records and rating-target snapshots, and hands it to the engine
// deduplicated and time-ordered. Collection (sessions, scraping, scheduling)
// happens elsewhere; this package begins at already-structured records.
package repository

import (
	"context"

	"github.com/otogelab/constprop/internal/domain/model"
	"github.com/otogelab/constprop/internal/estimate"
)

// Store provides write access for collectors and read access for the engine.
type Store interface {
	// AddPlayRecords ingests a batch of plays, assigning stable IDs and
	// dropping records seen before. Returns the number actually added.
	AddPlayRecords(ctx context.Context, recs []model.PlayRecord) (int, error)

	// AddRatingTargets ingests a batch of snapshots with the same
	// idempotency guarantees as AddPlayRecords.
	AddRatingTargets(ctx context.Context, targets []model.RatingTarget) (int, error)

	// Users lists every user with data, in first-seen order.
	Users(ctx context.Context) []model.UserID

	// Dataset returns one user's evidence, records time-ordered and
	// snapshots chronological. Returns ErrUnknownUser for absent users.
	Dataset(ctx context.Context, user model.UserID) (estimate.Dataset, error)

	// Datasets returns every user's evidence in first-seen user order.
	Datasets(ctx context.Context) []estimate.Dataset
}
