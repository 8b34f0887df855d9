package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"speteval/internal/config"
	"speteval/internal/services"
)

// Source resolves audio references to readable content.
type Source interface {
	// Exists reports whether ref names a regular file or object.
	Exists(ctx context.Context, ref string) (bool, error)
	// Open returns a seekable reader over ref and its size in bytes. The
	// caller closes the reader. A missing ref yields an error matching
	// fs.ErrNotExist.
	Open(ctx context.Context, ref string) (io.ReadSeekCloser, int64, error)
	// Describe returns a human readable location for ref, used in logs.
	Describe(ref string) string
}

// New builds the Source selected by cfg.Storage.Backend.
func New(cfg *config.Config) (Source, error) {
	if cfg == nil {
		return NewLocal(""), nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "", config.StorageLocal:
		return NewLocal(cfg.Storage.Root), nil
	case config.StorageS3:
		return NewS3(cfg.Storage.S3)
	default:
		return nil, services.Wrap(
			services.ErrConfiguration,
			"storage",
			"select backend",
			fmt.Sprintf("unsupported backend %q", cfg.Storage.Backend),
			nil,
		)
	}
}
