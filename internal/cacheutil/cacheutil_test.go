// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_EnvOverride(t *testing.T) {
	t.Setenv("IDMAP_CACHE_DIR", "/tmp/idmap-test")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/idmap-test", dir)
}

func TestDir_UserCacheDir(t *testing.T) {
	t.Setenv("IDMAP_CACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, ok := Dir()
	if !ok {
		t.Skip("no user cache dir on this platform")
	}
	assert.Equal(t, "idmap", filepath.Base(dir))
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
	}

	for _, tt := range tests {
		t.Run("IDMAP_CACHE="+tt.value, func(t *testing.T) {
			t.Setenv("IDMAP_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "cache")
	t.Setenv("IDMAP_CACHE_DIR", base)
	t.Setenv("IDMAP_CACHE", "")

	got, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)
}

func TestEnsureBaseDir_Disabled(t *testing.T) {
	t.Setenv("IDMAP_CACHE_DIR", filepath.Join(t.TempDir(), "cache"))
	t.Setenv("IDMAP_CACHE", "0")

	_, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.False(t, ok)
}
