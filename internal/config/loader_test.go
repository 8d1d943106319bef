package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/otogelab/constprop/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	convey.Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then defaults apply", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.CatalogFile, convey.ShouldEqual, "catalog.json")
			convey.So(cfg.DatasetDir, convey.ShouldEqual, "datasets")
			convey.So(cfg.SeedFile, convey.ShouldBeEmpty)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			convey.So(cfg.MaxPasses, convey.ShouldEqual, 1000)
			convey.So(cfg.Parallelism, convey.ShouldEqual, 1)
			convey.So(cfg.Distrust, convey.ShouldBeFalse)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONSTPROP_LOG_LEVEL", "debug")
	t.Setenv("CONSTPROP_DATASET_DIR", "/data/sets")
	t.Setenv("CONSTPROP_MAX_PASSES", "25")
	t.Setenv("CONSTPROP_DISTRUST", "true")

	convey.Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then they win over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			convey.So(cfg.DatasetDir, convey.ShouldEqual, "/data/sets")
			convey.So(cfg.MaxPasses, convey.ShouldEqual, 25)
			convey.So(cfg.Distrust, convey.ShouldBeTrue)
			convey.So(cfg.CatalogFile, convey.ShouldEqual, "catalog.json")
		})
	})
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("log_level: warn\nmax_passes: 7\nseed_file: seed.json\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONSTPROP_CONFIG", path)
	t.Setenv("CONSTPROP_LOG_LEVEL", "error")

	convey.Convey("Given a config file and a conflicting env var", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then the file loads and env takes precedence", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.MaxPasses, convey.ShouldEqual, 7)
			convey.So(cfg.SeedFile, convey.ShouldEqual, "seed.json")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "error")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONSTPROP_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	convey.Convey("Given a config path that does not exist", t, func() {
		_, err := config.Load(context.Background())

		convey.Convey("Then loading fails", func() {
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("CONSTPROP_MAX_PASSES", "0")

	convey.Convey("Given a non-positive pass budget", t, func() {
		_, err := config.Load(context.Background())

		convey.Convey("Then validation rejects it", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
