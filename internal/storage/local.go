package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local reads references from the filesystem.
type Local struct {
	root string
}

// NewLocal returns a Local source. Relative references are joined to root
// when root is non-empty, otherwise they resolve against the working
// directory.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) resolve(ref string) string {
	if ref == "" || filepath.IsAbs(ref) || l.root == "" {
		return ref
	}
	return filepath.Join(l.root, ref)
}

// Exists reports whether ref is a regular file. Directories and other
// special files report false.
func (l *Local) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if ref == "" {
		return false, nil
	}
	info, err := os.Stat(l.resolve(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", ref, err)
	}
	return info.Mode().IsRegular(), nil
}

// Open opens ref for reading.
func (l *Local) Open(ctx context.Context, ref string) (io.ReadSeekCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	path := l.resolve(ref)
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, 0, fmt.Errorf("open %s: is a directory", path)
	}
	return file, info.Size(), nil
}

// Describe returns the resolved filesystem path.
func (l *Local) Describe(ref string) string {
	return l.resolve(ref)
}
