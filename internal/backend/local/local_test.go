// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendLocal_ReadMissing(t *testing.T) {
	be, err := NewBackendLocal(WithDir(t.TempDir()))
	require.NoError(t, err)

	_, err = be.Read(context.Background(), "protein_to_genenames.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestBackendLocal_WriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tables")
	be, err := NewBackendLocal(WithDir(dir))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, be.Write(ctx, "a.csv", []byte("x\n1\n")))

	info, err := os.Stat(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := be.Read(ctx, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(got))
}

func TestBackendLocal_WriteReplaces(t *testing.T) {
	dir := t.TempDir()
	be, err := NewBackendLocal(WithDir(dir))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, be.Write(ctx, "a.csv", []byte("x\n1\n")))
	require.NoError(t, be.Write(ctx, "a.csv", []byte("x\n2\n")))

	got, err := be.Read(ctx, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "x\n2\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Name())
}

func TestBackendLocal_FailedWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	be, err := NewBackendLocal(WithDir(dir))
	require.NoError(t, err)

	// A non-empty directory in the way makes the final rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a.csv", "keep"), 0o755))

	err = be.Write(context.Background(), "a.csv", []byte("x\n1\n"))
	assert.ErrorContains(t, err, "failed to replace table")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}

func TestBackendLocal_DefaultsToCacheDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IDMAP_CACHE_DIR", dir)

	be, err := NewBackendLocal()
	require.NoError(t, err)
	assert.Equal(t, dir, be.Dir)
	assert.Equal(t, "local:"+dir, be.String())
}

func TestBackendLocal_RejectsPathNames(t *testing.T) {
	be, err := NewBackendLocal(WithDir(t.TempDir()))
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.csv", "sub/dir.csv"} {
		_, err := be.Read(context.Background(), name)
		assert.Error(t, err, name)
		assert.Error(t, be.Write(context.Background(), name, nil), name)
	}
}
