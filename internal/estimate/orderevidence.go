package estimate

import (
	"fmt"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
	"github.com/otogelab/constprop/pkg/metrics"
)

// unboundedRating is above any value the formula can produce, so it works as
// the "no ceiling yet" sentinel in the backward sweep.
const unboundedRating = formula.RatingValue(1 << 30)

// OrderEvidence narrows candidates from the ranking order inside
// rating-target snapshots.
//
// Each snapshot's two lists are processed independently. A list is ordered
// descending by the entries' hidden true ratings, with below-cutoff entries
// continuing the order after the listed ones, so both segments run through
// the same sweep as one sequence. Ties are allowed anywhere and yield no
// strict inequality.
//
// Targets must be chronological. Returns whether any chart changed.
func OrderEvidence(st narrower, cat *catalog.Catalog, targets []model.RatingTarget) (bool, error) {
	changed := false
	for _, t := range targets {
		for _, list := range []model.TargetList{t.New, t.Old} {
			shrunk, err := applyList(st, cat, flatten(list))
			if err != nil {
				return changed, fmt.Errorf("snapshot %s: %w", t.ID, err)
			}
			changed = changed || shrunk
		}
	}
	return changed, nil
}

// flatten joins a list's in-cutoff and below-cutoff segments. The cutoff
// itself carries no extra information once the segments are concatenated:
// every listed entry still ranks at or above every below-cutoff entry.
func flatten(list model.TargetList) []model.TargetEntry {
	out := make([]model.TargetEntry, 0, list.Len())
	out = append(out, list.Target...)
	out = append(out, list.Candidates...)
	return out
}

// slot is one list entry with its frozen candidate set and feasible interval.
type slot struct {
	entry model.TargetEntry
	coef  formula.RankCoefficient
	cands []formula.ScoreConstant // ascending snapshot of the store's set
	lo    formula.RatingValue     // floor imposed by entries ranked below
	hi    formula.RatingValue     // ceiling imposed by entries ranked above
}

// minRating is the lowest rating the entry can achieve with its current
// candidates. Monotonicity in the constant makes this the first candidate.
func (s *slot) minRating() formula.RatingValue {
	return formula.SingleSongRating(s.cands[0], s.entry.Achievement, s.coef)
}

// maxRating is the highest achievable rating, i.e. the last candidate's.
func (s *slot) maxRating() formula.RatingValue {
	return formula.SingleSongRating(s.cands[len(s.cands)-1], s.entry.Achievement, s.coef)
}

// applyList runs two-sweep bound propagation over one descending list and
// narrows every entry to the candidates whose rating fits its interval.
//
// Forward sweep, bottom of the list upward: an entry's rating must not be
// below any lower-ranked entry's minimum achievable rating, so a running
// floor accumulates as the maximum of those minima. Backward sweep, top
// downward: symmetric, a running ceiling accumulates as the minimum of the
// higher-ranked maxima. Both bounds are inclusive, so equal-rating ties
// survive in either order.
func applyList(st narrower, cat *catalog.Catalog, entries []model.TargetEntry) (bool, error) {
	slots := make([]slot, 0, len(entries))
	for _, en := range entries {
		if !en.Achievement.Valid() {
			return false, fmt.Errorf("%w: %d on %s", formula.ErrAchievementOutOfRange, int(en.Achievement), en.Chart)
		}
		if _, ok := cat.Entry(en.Chart); !ok {
			return false, fmt.Errorf("%w: %s", catalog.ErrUnknownChart, en.Chart)
		}
		cands, err := st.Candidates(en.Chart)
		if err != nil {
			return false, err
		}
		slots = append(slots, slot{
			entry: en,
			coef:  formula.RankCoef(en.Achievement),
			cands: cands,
		})
	}

	floor := formula.RatingValue(0)
	for i := len(slots) - 1; i >= 0; i-- {
		slots[i].lo = floor
		if mn := slots[i].minRating(); mn > floor {
			floor = mn
		}
	}

	ceiling := unboundedRating
	for i := range slots {
		slots[i].hi = ceiling
		if mx := slots[i].maxRating(); mx < ceiling {
			ceiling = mx
		}
	}

	changed := false
	for i := range slots {
		s := &slots[i]
		survivors := make([]formula.ScoreConstant, 0, len(s.cands))
		for _, c := range s.cands {
			r := formula.SingleSongRating(c, s.entry.Achievement, s.coef)
			if r >= s.lo && r <= s.hi {
				survivors = append(survivors, c)
			}
		}
		if len(survivors) == len(s.cands) {
			continue
		}
		shrunk, err := st.Narrow(s.entry.Chart, survivors)
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
