package estimate

import (
	"slices"

	"github.com/otogelab/constprop/internal/domain/candidates"
	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
)

// proposalBuffer lets one worker run extractors against a frozen clone of the
// store without mutating it. Accepted narrowings accumulate locally; the pass
// owner later replays them serially with apply, so the live store has exactly
// one mutator. A narrow that would empty a set is parked in conflicts and
// replayed verbatim, letting the live store raise the contradiction itself.
type proposalBuffer struct {
	base      *candidates.Store
	proposals map[catalog.ChartKey][]formula.ScoreConstant
	conflicts map[catalog.ChartKey][]formula.ScoreConstant
	order     []catalog.ChartKey // first-touch order, for deterministic replay
}

func newProposalBuffer(base *candidates.Store) *proposalBuffer {
	return &proposalBuffer{
		base:      base,
		proposals: make(map[catalog.ChartKey][]formula.ScoreConstant),
		conflicts: make(map[catalog.ChartKey][]formula.ScoreConstant),
	}
}

func (b *proposalBuffer) Candidates(chart catalog.ChartKey) ([]formula.ScoreConstant, error) {
	if p, ok := b.proposals[chart]; ok {
		return slices.Clone(p), nil
	}
	return b.base.Candidates(chart)
}

func (b *proposalBuffer) Narrow(chart catalog.ChartKey, proposed []formula.ScoreConstant) (bool, error) {
	if _, poisoned := b.conflicts[chart]; poisoned {
		return false, nil
	}
	cur, err := b.Candidates(chart)
	if err != nil {
		return false, err
	}

	inter := candidates.Intersect(cur, proposed)
	switch {
	case len(inter) == len(cur):
		return false, nil
	case len(inter) == 0:
		b.conflicts[chart] = slices.Clone(proposed)
		b.touch(chart)
		return false, nil
	default:
		b.proposals[chart] = inter
		b.touch(chart)
		return true, nil
	}
}

func (b *proposalBuffer) touch(chart catalog.ChartKey) {
	if !slices.Contains(b.order, chart) {
		b.order = append(b.order, chart)
	}
}

// apply replays the buffered narrowings against the live store in first-touch
// order. Contradictions, if still applicable, are recorded by the store.
func (b *proposalBuffer) apply(store *candidates.Store) error {
	for _, chart := range b.order {
		set, ok := b.proposals[chart]
		if !ok {
			set = b.conflicts[chart]
		}
		if _, err := store.Narrow(chart, set); err != nil {
			return err
		}
	}
	return nil
}
