package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	opts := Default()
	assert.False(t, opts.SinkChecks)
	assert.True(t, opts.Hints)
	assert.Empty(t, opts.CacheDir)
}

func TestLoadMissingFile(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "soren.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soren.yaml")
	data := "sink_checks: true\nhints: false\ncache_dir: /tmp/soren-cache\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.True(t, opts.SinkChecks)
	assert.False(t, opts.Hints)
	assert.Equal(t, "/tmp/soren-cache", opts.CacheDir)
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soren.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sink_checks: true\n"), 0644))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.True(t, opts.SinkChecks)
	// Unset keys keep their defaults.
	assert.True(t, opts.Hints)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soren.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sink_checks: [\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
