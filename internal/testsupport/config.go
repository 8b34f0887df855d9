package testsupport

import (
	"path/filepath"
	"testing"

	"speteval/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Root = filepath.Join(base, "audio")
	cfgVal.Dataset.Workers = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers overrides the row evaluation concurrency.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.Workers = n
	}
}

// WithOnError sets the record error policy.
func WithOnError(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.OnError = policy
	}
}

// WithTextChecks enables the text-to-speech and text-to-frame ratio rules.
func WithTextChecks() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Validators.TextToSpeech.Enabled = true
		b.cfg.Validators.TextToFrame.Enabled = true
	}
}

// AudioDir returns the storage root backing the generated config.
func AudioDir(cfg *config.Config) string {
	return cfg.Storage.Root
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
