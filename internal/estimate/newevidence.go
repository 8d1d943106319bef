package estimate

import (
	"fmt"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
	"github.com/otogelab/constprop/pkg/metrics"
)

// NewEvidence narrows charts directly from play observations.
//
// Only plays on charts debuting in the version they were played in are used:
// first-version evidence cannot be skewed by a later cross-version revision
// of the constant, so it is applied once, before iterative refinement. A play
// with no rating delta displaced nothing and carries no signal.
//
// Records must be time-ordered. Returns whether any chart changed.
func NewEvidence(st narrower, cat *catalog.Catalog, records []model.PlayRecord) (bool, error) {
	changed := false
	for _, rec := range records {
		if !rec.Achievement.Valid() {
			return changed, fmt.Errorf("play %s: %w: %d", rec.ID, formula.ErrAchievementOutOfRange, int(rec.Achievement))
		}
		entry, ok := cat.Entry(rec.Chart)
		if !ok {
			return changed, fmt.Errorf("play %s: %w: %s", rec.ID, catalog.ErrUnknownChart, rec.Chart)
		}
		if rec.RatingDelta <= 0 || !entry.NewIn(rec.Version) {
			continue
		}

		// resolved charts go through Narrow too: a play disagreeing with a
		// seeded constant must still surface as a contradiction
		proposed := formula.CandidatesForDelta(rec.RatingDelta, rec.Achievement)
		shrunk, err := st.Narrow(rec.Chart, proposed)
		if err != nil {
			return changed, err
		}
		if shrunk {
			metrics.IncNarrowing()
			changed = true
		}
	}
	return changed, nil
}
