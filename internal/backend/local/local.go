// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"

	"github.com/staranto/idmapgo/internal/cacheutil"
)

// BackendLocal keeps each table as a file in Dir.
type BackendLocal struct {
	Dir string
}

// Option customizes a BackendLocal.
type Option func(*BackendLocal) error

// WithDir stores tables in dir instead of the cache directory.
func WithDir(dir string) Option {
	return func(be *BackendLocal) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		be.Dir = abs
		return nil
	}
}

// NewBackendLocal returns a backend rooted at the cache directory unless
// WithDir says otherwise. The directory is created lazily, on first Write.
func NewBackendLocal(opts ...Option) (*BackendLocal, error) {
	be := &BackendLocal{}
	if dir, ok := cacheutil.Dir(); ok {
		be.Dir = dir
	}

	for _, opt := range opts {
		if err := opt(be); err != nil {
			return nil, err
		}
	}

	if be.Dir == "" {
		return nil, errors.New("no table directory: set IDMAP_CACHE_DIR or cache.dir")
	}

	log.Debugf("local backend in %s", be.Dir)
	return be, nil
}

func (be *BackendLocal) Read(_ context.Context, name string) ([]byte, error) {
	p, err := be.path(name)
	if err != nil {
		return nil, err
	}
	// os errors already match fs.ErrNotExist when the file is absent.
	return os.ReadFile(p)
}

func (be *BackendLocal) Write(_ context.Context, name string, data []byte) error {
	p, err := be.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(be.Dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	// Write next to the target and rename so a crash never leaves a
	// truncated table behind.
	tmp, err := os.CreateTemp(be.Dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to replace table: %w", err)
	}
	return nil
}

func (be *BackendLocal) String() string {
	return "local:" + be.Dir
}

// path keeps names inside Dir.
func (be *BackendLocal) path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return filepath.Join(be.Dir, name), nil
}
