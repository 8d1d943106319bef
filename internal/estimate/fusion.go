package estimate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/otogelab/constprop/internal/domain/candidates"
	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/pkg/logger"
	"github.com/otogelab/constprop/pkg/metrics"
)

// defaultMaxPasses is the defensive cap on fixpoint passes. Convergence is
// bounded by the sum of initial candidate-set sizes, far below this.
const defaultMaxPasses = 1000

// Driver runs the extractors over every user's dataset until the shared
// store reaches a fixpoint.
type Driver struct {
	cat       *catalog.Catalog
	store     *candidates.Store
	maxPasses int
	parallel  int
	log       logger.Logger
}

// Option applies a configuration option to the Driver.
type Option func(*Driver)

// WithMaxPasses overrides the defensive pass cap.
func WithMaxPasses(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxPasses = n
		}
	}
}

// WithParallelism evaluates up to n users concurrently within one pass.
// Workers read a frozen clone of the store and buffer proposals; the driver
// remains the only mutator. Values below 2 keep the pass serial.
func WithParallelism(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.parallel = n
		}
	}
}

// WithLogger sets a custom logger for the driver.
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDriver builds a driver over a shared store. The store's seed (level
// ranges, known constants, or the full domain) is the caller's choice.
func NewDriver(cat *catalog.Catalog, store *candidates.Store, opts ...Option) *Driver {
	d := &Driver{
		cat:       cat,
		store:     store,
		maxPasses: defaultMaxPasses,
		parallel:  1,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result summarizes a converged run.
type Result struct {
	// Passes is the number of order-evidence passes, including the final
	// quiescent one that confirmed the fixpoint.
	Passes int
	// Resolved counts charts whose constant is now a singleton.
	Resolved int
	// Contradictions counts conflict records accumulated in the store.
	Contradictions int
}

// Run applies new evidence once per user, then iterates order evidence over
// all users until nothing changes. Evidence is fused globally: a narrowing
// from one user's snapshot immediately constrains every other user's view of
// the same chart.
func (d *Driver) Run(ctx context.Context, datasets []Dataset) (Result, error) {
	for _, ds := range datasets {
		if _, err := NewEvidence(d.store, d.cat, ds.Records); err != nil {
			return Result{}, fmt.Errorf("new evidence for %s: %w", ds.User, err)
		}
		metrics.AddPlayRecords(len(ds.Records))
	}

	passes := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if passes >= d.maxPasses {
			return Result{}, fmt.Errorf("%w: %d passes", ErrPassBudgetExhausted, d.maxPasses)
		}
		passes++

		start := time.Now()
		d.store.ResetPass()
		priorConflicts := len(d.store.Contradictions())

		var err error
		if d.parallel > 1 {
			err = d.parallelPass(ctx, datasets)
		} else {
			err = d.serialPass(datasets)
		}
		if err != nil {
			return Result{}, err
		}

		metrics.IncPass(time.Since(start))
		metrics.AddContradictions(len(d.store.Contradictions()) - priorConflicts)
		d.log.Debug(ctx, "pass finished",
			logger.Int("pass", passes),
			logger.Any("changed", d.store.Changed()))

		if !d.store.Changed() {
			break
		}
	}

	counts := d.store.CountByStatus()
	for status, n := range counts {
		metrics.SetChartsByStatus(status.String(), n)
	}
	return Result{
		Passes:         passes,
		Resolved:       counts[candidates.StatusKnown],
		Contradictions: len(d.store.Contradictions()),
	}, nil
}

func (d *Driver) serialPass(datasets []Dataset) error {
	for _, ds := range datasets {
		if _, err := OrderEvidence(d.store, d.cat, ds.Targets); err != nil {
			return fmt.Errorf("order evidence for %s: %w", ds.User, err)
		}
		metrics.AddSnapshots(len(ds.Targets))
	}
	return nil
}

// parallelPass fans user datasets out to workers that narrow against a
// frozen clone, then replays their proposals serially in dataset order so
// the outcome is deterministic and the live store has a single owner.
func (d *Driver) parallelPass(ctx context.Context, datasets []Dataset) error {
	frozen := d.store.Clone()
	buffers := make([]*proposalBuffer, len(datasets))
	errs := make([]error, len(datasets))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(d.parallel, len(datasets)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				buf := newProposalBuffer(frozen)
				if _, err := OrderEvidence(buf, d.cat, datasets[i].Targets); err != nil {
					errs[i] = err
					continue
				}
				buffers[i] = buf
			}
		}()
	}
	for i := range datasets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("order evidence for %s: %w", datasets[i].User, err)
		}
	}
	for i, buf := range buffers {
		if err := buf.apply(d.store); err != nil {
			return fmt.Errorf("applying proposals for %s: %w", datasets[i].User, err)
		}
		metrics.AddSnapshots(len(datasets[i].Targets))
	}
	return nil
}
