package estimate

import (
	"context"
	"fmt"
	"slices"

	"github.com/otogelab/constprop/internal/domain/candidates"
	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
)

// DistrustReport is the outcome of a distrust run: the converged store and
// every chart whose evidence-only set excludes the trusted constant.
type DistrustReport struct {
	Result Result
	Store  *candidates.Store
	// Exclusions are trusted constants the evidence ruled out; Prior holds
	// the converged set, Attempted the trusted singleton.
	Exclusions []candidates.Contradiction
}

// Distrust is a correctness probe for the evidence pipeline, not an
// inference path. It discards every externally supplied constant, seeds each
// chart with the full domain, converges the identical driver, and then
// checks the result against the trusted values: a trusted constant missing
// from its chart's converged set means either bad evidence or a propagation
// defect, and is reported for manual investigation.
func Distrust(ctx context.Context, cat *catalog.Catalog, datasets []Dataset,
	trusted map[catalog.ChartKey]formula.ScoreConstant, opts ...Option) (*DistrustReport, error) {

	for chart := range trusted {
		if _, ok := cat.Entry(chart); !ok {
			return nil, fmt.Errorf("trusted constant: %w: %s", catalog.ErrUnknownChart, chart)
		}
	}

	store := candidates.New(cat, candidates.WithFullDomain())
	driver := NewDriver(cat, store, opts...)
	res, err := driver.Run(ctx, datasets)
	if err != nil {
		return nil, err
	}

	report := &DistrustReport{Result: res, Store: store}
	for _, chart := range store.Charts() {
		want, ok := trusted[chart]
		if !ok {
			continue
		}
		state, err := store.State(chart)
		if err != nil {
			return nil, err
		}
		if state.Status == candidates.StatusRemoved {
			continue
		}
		if !slices.Contains(state.Set, want) {
			report.Exclusions = append(report.Exclusions, candidates.Contradiction{
				Chart:     chart,
				Prior:     state.Set,
				Attempted: []formula.ScoreConstant{want},
			})
		}
	}
	return report, nil
}
