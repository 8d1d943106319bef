// Package candidates implements the per-chart candidate store: for every
// chart a shrinking set of possible score constants, plus the bookkeeping
// that turns an emptying narrow into a reported contradiction instead of a
// corrupted state.
//
// The store is the only mutable object in the inference pipeline. It is not
// safe for concurrent use; callers that parallelize must funnel all mutation
// through a single owner.
package candidates

import (
	"fmt"
	"slices"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
)

// Status is a chart's position in the narrowing state machine.
type Status int

const (
	// StatusUnconstrained means no evidence has touched the chart yet; its
	// set is still the full range its display level allows.
	StatusUnconstrained Status = iota
	// StatusNarrowed means evidence shrank the set but more than one
	// candidate survives.
	StatusNarrowed
	// StatusKnown is terminal: exactly one candidate remains.
	StatusKnown
	// StatusRemoved excludes a retired or unrateable chart from narrowing.
	StatusRemoved
	// StatusContradicted is terminal: some narrow would have emptied the
	// set. The pre-contradiction set is retained for review.
	StatusContradicted
)

func (s Status) String() string {
	switch s {
	case StatusUnconstrained:
		return "unconstrained"
	case StatusNarrowed:
		return "narrowed"
	case StatusKnown:
		return "known"
	case StatusRemoved:
		return "removed"
	case StatusContradicted:
		return "contradicted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Contradiction records a narrow that would have emptied a chart's set.
// Prior is the set the chart held (and still holds) at the time; Attempted is
// the proposal that conflicted with it.
type Contradiction struct {
	Chart     catalog.ChartKey
	Prior     []formula.ScoreConstant
	Attempted []formula.ScoreConstant
}

func (c Contradiction) String() string {
	return fmt.Sprintf("%s: prior %v vs attempted %v", c.Chart, c.Prior, c.Attempted)
}

// ChartState is the queryable view of one chart.
type ChartState struct {
	Status Status
	// Set is the current candidate set, ascending. For StatusKnown it is the
	// singleton; for StatusContradicted it is the pre-contradiction set.
	Set []formula.ScoreConstant
}

// Constant returns the resolved constant for a Known chart.
func (s ChartState) Constant() (formula.ScoreConstant, bool) {
	if s.Status == StatusKnown && len(s.Set) == 1 {
		return s.Set[0], true
	}
	return 0, false
}

type entry struct {
	set    []formula.ScoreConstant // ascending, never empty
	status Status
}

// Store holds candidate state for every chart in one catalog.
type Store struct {
	entries        map[catalog.ChartKey]*entry
	order          []catalog.ChartKey
	contradictions []Contradiction
	changed        bool
}

// Option applies a configuration option to the Store.
type Option func(*storeConfig)

type storeConfig struct {
	fullDomain bool
}

// WithFullDomain seeds every chart with the entire constant domain instead of
// the range its display level allows. Distrust runs use this to re-derive
// constants from evidence alone.
func WithFullDomain() Option {
	return func(c *storeConfig) {
		c.fullDomain = true
	}
}

// New builds a store seeded from the catalog: one entry per chart, each
// starting Unconstrained with its level range (or the full domain).
func New(cat *catalog.Catalog, opts ...Option) *Store {
	var cfg storeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		entries: make(map[catalog.ChartKey]*entry, cat.Len()),
		order:   cat.Charts(),
	}
	for _, key := range s.order {
		ce, _ := cat.Entry(key)
		set := ce.Level.Candidates()
		if cfg.fullDomain {
			set = formula.Domain()
		}
		s.entries[key] = &entry{set: set, status: StatusUnconstrained}
	}
	return s
}

// Candidates returns a copy of the chart's current set.
func (s *Store) Candidates(chart catalog.ChartKey) ([]formula.ScoreConstant, error) {
	e, ok := s.entries[chart]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownChart, chart)
	}
	return slices.Clone(e.set), nil
}

// State returns the chart's queryable state.
func (s *Store) State(chart catalog.ChartKey) (ChartState, error) {
	e, ok := s.entries[chart]
	if !ok {
		return ChartState{}, fmt.Errorf("%w: %s", catalog.ErrUnknownChart, chart)
	}
	return ChartState{Status: e.status, Set: slices.Clone(e.set)}, nil
}

// Narrow replaces the chart's set with its intersection with proposed.
//
// An empty intersection never reaches the store: it is recorded as a
// Contradiction, the prior set stays in place, and the chart moves to
// StatusContradicted. Removed, Known and Contradicted charts accept no
// further narrowing. The returned bool reports whether the set shrank.
func (s *Store) Narrow(chart catalog.ChartKey, proposed []formula.ScoreConstant) (bool, error) {
	e, ok := s.entries[chart]
	if !ok {
		return false, fmt.Errorf("%w: %s", catalog.ErrUnknownChart, chart)
	}
	switch e.status {
	case StatusRemoved, StatusContradicted:
		return false, nil
	}

	inter := Intersect(e.set, proposed)
	switch {
	case len(inter) == len(e.set):
		// proposed is a superset of the current set
		return false, nil
	case len(inter) == 0:
		s.contradictions = append(s.contradictions, Contradiction{
			Chart:     chart,
			Prior:     slices.Clone(e.set),
			Attempted: normalize(proposed),
		})
		e.status = StatusContradicted
		s.changed = true
		return false, nil
	default:
		e.set = inter
		if len(inter) == 1 {
			e.status = StatusKnown
		} else {
			e.status = StatusNarrowed
		}
		s.changed = true
		return true, nil
	}
}

// MarkKnown forces a chart to a singleton. It seeds externally confirmed
// constants and is skipped entirely in distrust runs.
func (s *Store) MarkKnown(chart catalog.ChartKey, c formula.ScoreConstant) error {
	e, ok := s.entries[chart]
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownChart, chart)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %s", ErrConstantOutOfDomain, c)
	}
	if e.status == StatusKnown && e.set[0] == c {
		return nil
	}
	e.set = []formula.ScoreConstant{c}
	e.status = StatusKnown
	s.changed = true
	return nil
}

// MarkRemoved excludes a chart from further narrowing.
func (s *Store) MarkRemoved(chart catalog.ChartKey) error {
	e, ok := s.entries[chart]
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownChart, chart)
	}
	if e.status != StatusRemoved {
		e.status = StatusRemoved
		s.changed = true
	}
	return nil
}

// ResetPass clears the pass-scoped changed flag. Candidate data is untouched.
func (s *Store) ResetPass() {
	s.changed = false
}

// Changed reports whether any chart's state changed since the last ResetPass.
func (s *Store) Changed() bool {
	return s.changed
}

// Contradictions returns every contradiction recorded so far.
func (s *Store) Contradictions() []Contradiction {
	return slices.Clone(s.contradictions)
}

// Charts returns every chart key in catalog order.
func (s *Store) Charts() []catalog.ChartKey {
	return slices.Clone(s.order)
}

// CountByStatus tallies charts per status, for reporting and metrics.
func (s *Store) CountByStatus() map[Status]int {
	out := make(map[Status]int)
	for _, e := range s.entries {
		out[e.status]++
	}
	return out
}

// Clone deep-copies the store's candidate data. Parallel pass evaluation
// reads from a clone while the original remains the single mutation owner.
func (s *Store) Clone() *Store {
	c := &Store{
		entries: make(map[catalog.ChartKey]*entry, len(s.entries)),
		order:   slices.Clone(s.order),
		changed: s.changed,
	}
	for k, e := range s.entries {
		c.entries[k] = &entry{set: slices.Clone(e.set), status: e.status}
	}
	c.contradictions = slices.Clone(s.contradictions)
	return c
}

// normalize returns proposed sorted ascending with duplicates removed.
func normalize(proposed []formula.ScoreConstant) []formula.ScoreConstant {
	out := slices.Clone(proposed)
	slices.Sort(out)
	return slices.Compact(out)
}

// Intersect returns the intersection of current and proposed, ascending.
// current must already be sorted; proposed may be in any order.
func Intersect(current, proposed []formula.ScoreConstant) []formula.ScoreConstant {
	p := normalize(proposed)
	out := make([]formula.ScoreConstant, 0, min(len(current), len(p)))
	i, j := 0, 0
	for i < len(current) && j < len(p) {
		switch {
		case current[i] == p[j]:
			out = append(out, current[i])
			i++
			j++
		case current[i] < p[j]:
			i++
		default:
			j++
		}
	}
	return out
}
