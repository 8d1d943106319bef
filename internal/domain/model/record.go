// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
)

// UserID identifies one player whose dataset feeds the engine.
type UserID string

// PlayRecord is a single parsed play: the chart, the achievement earned, and
// the rating delta the game displayed for it. Records are immutable once
// collected.
type PlayRecord struct {
	ID          string // stable id for idempotent dataset merges
	User        UserID
	Chart       catalog.ChartKey
	Achievement formula.AchievementValue
	// RatingDelta is the observed change in the player's overall rating
	// attributable to this play. Zero means the play displaced nothing.
	RatingDelta formula.RatingValue
	// Version is the game version the play happened in.
	Version  catalog.Version
	PlayedAt time.Time
}

// TargetEntry is one row of a rating-target list: a chart and the best
// achievement counted for it. The entry's true rating is hidden.
type TargetEntry struct {
	Chart       catalog.ChartKey
	Achievement formula.AchievementValue
}

// TargetList is one ranked list from a rating-target snapshot. Target holds
// the entries inside the cutoff, Candidates the entries the game shows just
// below it. Both are ordered descending by the hidden true rating; ties may
// appear in either and carry no order information.
type TargetList struct {
	Target     []TargetEntry
	Candidates []TargetEntry
}

// Len returns the total number of entries, listed and below-cutoff.
func (l TargetList) Len() int {
	return len(l.Target) + len(l.Candidates)
}

// RatingTarget is one snapshot of a user's rating-target page: the
// current-version list and the older-version list, taken at one instant.
type RatingTarget struct {
	ID      string // stable id for idempotent dataset merges
	User    UserID
	TakenAt time.Time
	New     TargetList // charts from the current version
	Old     TargetList // charts from older versions
}
