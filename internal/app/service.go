// Package service wires the catalog, the dataset store, and the estimation
// driver into one runnable inference pipeline.
package service

import (
	"context"
	"fmt"

	"github.com/otogelab/constprop/internal/adapters/repository"
	"github.com/otogelab/constprop/internal/domain/candidates"
	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/estimate"
	"github.com/otogelab/constprop/pkg/logger"
)

// Service runs the inference pipeline over all collected datasets.
type Service struct {
	cat      *catalog.Catalog
	datasets repository.Store

	seed        map[catalog.ChartKey]formula.ScoreConstant
	maxPasses   int
	parallelism int
	distrust    bool
	log         logger.Logger

	store *candidates.Store // populated by Run
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSeedConstants pre-populates externally confirmed constants. The seed is
// ignored when distrust mode is on.
func WithSeedConstants(seed map[catalog.ChartKey]formula.ScoreConstant) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithMaxPasses caps the fixpoint loop.
func WithMaxPasses(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPasses = n
		}
	}
}

// WithParallelism evaluates up to n users concurrently per pass.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithDistrust switches the run to the evidence-only validation mode.
func WithDistrust(on bool) Option {
	return func(s *Service) {
		s.distrust = on
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs a Service over a shared catalog and dataset store.
func New(cat *catalog.Catalog, datasets repository.Store, opts ...Option) *Service {
	s := &Service{
		cat:         cat,
		datasets:    datasets,
		maxPasses:   1000,
		parallelism: 1,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome is the converged result of one run.
type Outcome struct {
	Result estimate.Result
	// States maps every chart to its converged state.
	States map[catalog.ChartKey]candidates.ChartState
	// Contradictions lists every conflict the store recorded.
	Contradictions []candidates.Contradiction
	// Exclusions is distrust-only: seeded constants the evidence ruled out.
	Exclusions []candidates.Contradiction
}

// Run executes the pipeline to its fixpoint and returns the outcome.
func (s *Service) Run(ctx context.Context) (*Outcome, error) {
	datasets := s.datasets.Datasets(ctx)
	driverOpts := []estimate.Option{
		estimate.WithMaxPasses(s.maxPasses),
		estimate.WithParallelism(s.parallelism),
		estimate.WithLogger(s.log.Named("estimate")),
	}

	out := &Outcome{}
	if s.distrust {
		report, err := estimate.Distrust(ctx, s.cat, datasets, s.seed, driverOpts...)
		if err != nil {
			return nil, err
		}
		s.store = report.Store
		out.Result = report.Result
		out.Exclusions = report.Exclusions
	} else {
		store := candidates.New(s.cat)
		if err := s.seedStore(store); err != nil {
			return nil, err
		}
		driver := estimate.NewDriver(s.cat, store, driverOpts...)
		res, err := driver.Run(ctx, datasets)
		if err != nil {
			return nil, err
		}
		s.store = store
		out.Result = res
	}

	out.States = make(map[catalog.ChartKey]candidates.ChartState, s.cat.Len())
	for _, chart := range s.store.Charts() {
		state, err := s.store.State(chart)
		if err != nil {
			return nil, err
		}
		out.States[chart] = state
	}
	out.Contradictions = s.store.Contradictions()
	return out, nil
}

// seedStore marks retired charts removed, then seeds known constants.
// Removal wins: a seed entry for a retired chart is skipped.
func (s *Service) seedStore(store *candidates.Store) error {
	latest := s.cat.Latest()
	for _, chart := range s.cat.Charts() {
		entry, _ := s.cat.Entry(chart)
		if entry.Removed != catalog.VersionNone && entry.Removed <= latest {
			if err := store.MarkRemoved(chart); err != nil {
				return err
			}
		}
	}
	for _, chart := range s.cat.Charts() {
		c, ok := s.seed[chart]
		if !ok {
			continue
		}
		state, err := store.State(chart)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		if state.Status == candidates.StatusRemoved {
			continue
		}
		if err := store.MarkKnown(chart, c); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}
	for chart := range s.seed {
		if _, ok := s.cat.Entry(chart); !ok {
			return fmt.Errorf("seeding: %w: %s", catalog.ErrUnknownChart, chart)
		}
	}
	return nil
}

// State exposes one chart's converged state after Run.
func (s *Service) State(chart catalog.ChartKey) (candidates.ChartState, error) {
	if s.store == nil {
		return candidates.ChartState{}, ErrNotRun
	}
	return s.store.State(chart)
}

// Contradictions exposes the full conflict list after Run.
func (s *Service) Contradictions() ([]candidates.Contradiction, error) {
	if s.store == nil {
		return nil, ErrNotRun
	}
	return s.store.Contradictions(), nil
}
