// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)

	got, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, dir, got)
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
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv(EnvEnabled, tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestWriteRead(t *testing.T) {
	t.Setenv(EnvDir, t.TempDir())
	t.Setenv(EnvEnabled, "")

	_, ok := Read([]string{"paramfile"}, "s3://bucket/key")
	assert.False(t, ok)

	require.NoError(t, Write([]string{"paramfile"}, "s3://bucket/key", []byte("payload\n")))

	entry, ok := Read([]string{"paramfile"}, "s3://bucket/key")
	require.True(t, ok)
	assert.Equal(t, "payload", string(entry.Data))
	assert.Equal(t, "s3://bucket/key", entry.Key)
	assert.Len(t, entry.EncodedKey, 64)
	assert.Equal(t, entry.EncodedKey, filepath.Base(entry.Path))
}

func TestWriteDisabled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)
	t.Setenv(EnvEnabled, "0")

	require.NoError(t, Write([]string{"paramfile"}, "k", []byte("v")))

	_, err := os.Stat(filepath.Join(dir, "paramfile"))
	assert.True(t, os.IsNotExist(err))
}

func TestPurge(t *testing.T) {
	t.Setenv(EnvDir, t.TempDir())
	t.Setenv(EnvEnabled, "")

	require.NoError(t, Write(nil, "old", []byte("old")))
	require.NoError(t, Write(nil, "new", []byte("new")))

	oldPath, ok := EntryPath(nil, "old")
	require.True(t, ok)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	require.NoError(t, Purge(24))

	_, ok = EntryPath(nil, "old")
	assert.False(t, ok)
	_, ok = EntryPath(nil, "new")
	assert.True(t, ok)

	assert.NoError(t, Purge(0))
}
