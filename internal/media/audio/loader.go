package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"speteval/internal/storage"
)

// Loader decodes clips from a storage source.
type Loader struct {
	source storage.Source
}

// NewLoader returns a Loader reading through source.
func NewLoader(source storage.Source) *Loader {
	return &Loader{source: source}
}

// Load resolves ref and decodes it. A missing reference yields ErrNotFound;
// undecodable content yields ErrCorrupt.
func (l *Loader) Load(ctx context.Context, ref string) (*Clip, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	rc, size, err := l.source.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l.source.Describe(ref))
		}
		return nil, fmt.Errorf("open %s: %w", l.source.Describe(ref), err)
	}
	defer rc.Close()

	clip, err := Decode(rc, size)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.source.Describe(ref), err)
	}
	return clip, nil
}
