// Command synth-dataset writes a deterministic synthetic world (catalog,
// truth seed, and per-user datasets) in the formats the constprop command
// loads. Useful for trying the pipeline without collected data.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/otogelab/constprop/internal/adapters/repository"
	"github.com/otogelab/constprop/internal/synth"
	"github.com/otogelab/constprop/pkg/logger"
)

const dirMode = 0o755

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	ctx := context.Background()

	outDir := os.Getenv("CONSTPROP_SYNTH_DIR")
	if outDir == "" {
		outDir = "synth-out"
	}

	if err := run(ctx, outDir); err != nil {
		log.Error(ctx, "generation failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "synthetic world written", logger.String("dir", outDir))
}

func run(_ context.Context, outDir string) error {
	world, err := synth.Generate(synth.Config{})
	if err != nil {
		return err
	}

	datasetDir := filepath.Join(outDir, "datasets")
	if err := os.MkdirAll(datasetDir, dirMode); err != nil {
		return err
	}
	if err := repository.WriteCatalogFile(filepath.Join(outDir, "catalog.json"), world.Catalog); err != nil {
		return err
	}
	if err := repository.WriteSeedFile(filepath.Join(outDir, "seed.json"), world.Catalog, world.Truth); err != nil {
		return err
	}
	for _, ds := range world.Datasets {
		path := filepath.Join(datasetDir, string(ds.User)+".json")
		if err := repository.WriteDatasetFile(path, ds); err != nil {
			return err
		}
	}
	return nil
}
