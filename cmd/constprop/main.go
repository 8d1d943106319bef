package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/otogelab/constprop/internal/adapters/repository"
	service "github.com/otogelab/constprop/internal/app"
	"github.com/otogelab/constprop/internal/config"
	"github.com/otogelab/constprop/internal/domain/candidates"
	"github.com/otogelab/constprop/pkg/logger"
	"github.com/otogelab/constprop/pkg/metrics"
)

// HTTP server timeout constants for the optional metrics listener.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	cat, err := repository.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return err
	}
	log.Info(ctx, "catalog loaded", logger.Int("charts", cat.Len()))

	store := repository.NewInMemoryStore()
	files, err := repository.LoadDatasetDir(ctx, store, cfg.DatasetDir)
	if err != nil {
		return err
	}
	log.Info(ctx, "datasets loaded",
		logger.Int("files", files),
		logger.Int("users", len(store.Users(ctx))))

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMaxPasses(cfg.MaxPasses),
		service.WithParallelism(cfg.Parallelism),
		service.WithDistrust(cfg.Distrust),
	}
	if cfg.SeedFile != "" {
		seed, err := repository.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		log.Info(ctx, "seed constants loaded", logger.Int("charts", len(seed)))
		opts = append(opts, service.WithSeedConstants(seed))
	}

	svc := service.New(cat, store, opts...)
	outcome, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	report(ctx, log, outcome)
	return nil
}

func report(ctx context.Context, log logger.Logger, outcome *service.Outcome) {
	counts := make(map[candidates.Status]int)
	for _, state := range outcome.States {
		counts[state.Status]++
	}
	log.Info(ctx, "converged",
		logger.Int("passes", outcome.Result.Passes),
		logger.Int("known", counts[candidates.StatusKnown]),
		logger.Int("narrowed", counts[candidates.StatusNarrowed]),
		logger.Int("unconstrained", counts[candidates.StatusUnconstrained]),
		logger.Int("removed", counts[candidates.StatusRemoved]),
		logger.Int("contradicted", counts[candidates.StatusContradicted]))

	for chart, state := range outcome.States {
		if c, ok := state.Constant(); ok {
			log.Debug(ctx, "resolved", logger.Stringer("chart", chart), logger.Stringer("constant", c))
		}
	}
	for _, c := range outcome.Contradictions {
		log.Warn(ctx, "contradiction", logger.Stringer("detail", c))
	}
	for _, e := range outcome.Exclusions {
		log.Warn(ctx, "distrust exclusion", logger.Stringer("detail", e))
	}
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	logger.Get().Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Get().Error(ctx, "metrics server failed", logger.Error(err))
	}
}
