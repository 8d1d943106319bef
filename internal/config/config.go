// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Layer file and environment overrides in Load.
// - External errors are wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr exposes /metrics when non-empty, e.g. ":9091".
	MetricsAddr string `koanf:"metrics_addr"`

	// CatalogFile is the shared chart catalog JSON.
	CatalogFile string `koanf:"catalog_file"`

	// DatasetDir holds one JSON dataset file per user.
	DatasetDir string `koanf:"dataset_dir"`

	// SeedFile optionally pre-populates known constants. Ignored in
	// distrust runs.
	SeedFile string `koanf:"seed_file"`

	// MaxPasses caps the fixpoint loop defensively.
	MaxPasses int `koanf:"max_passes"`

	// Parallelism evaluates up to N users concurrently per pass; 1 keeps
	// the engine fully serial.
	Parallelism int `koanf:"parallelism"`

	// Distrust re-derives every constant from evidence alone and reports
	// charts whose result excludes the seeded value.
	Distrust bool `koanf:"distrust"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		CatalogFile: "catalog.json",
		DatasetDir:  "datasets",
		MaxPasses:   1000,
		Parallelism: 1,
	}
}
