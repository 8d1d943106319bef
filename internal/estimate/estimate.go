// Package estimate is the constraint-propagation engine. It narrows each
// chart's candidate score constants by fusing two kinds of evidence across
// every user sharing the catalog: direct achievement/rating-delta
// observations (new evidence) and ranking-order constraints from
// rating-target snapshots (order evidence), iterated to a global fixpoint.
package estimate

import (
	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
)

// Dataset is one user's fully materialized evidence. Records must be
// time-ordered and Targets chronological; collaborators guarantee both.
type Dataset struct {
	User    model.UserID
	Records []model.PlayRecord
	Targets []model.RatingTarget
}

// narrower is the surface extractors mutate through. The live store satisfies
// it directly; parallel passes substitute a proposal buffer so that all real
// mutation stays with a single owner.
type narrower interface {
	Candidates(chart catalog.ChartKey) ([]formula.ScoreConstant, error)
	Narrow(chart catalog.ChartKey, proposed []formula.ScoreConstant) (bool, error)
}
