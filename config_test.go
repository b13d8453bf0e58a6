package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/runlen/runlen"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	counter, err := cfg.Counter()
	require.NoError(t, err)
	require.Equal(t, runlen.Default, counter)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runlen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "8080"
weight: 5
policy: runs
trim: 2s
debug: true
`), 0644))

	cfg, err := parseConfig([]string{"-config", path, "-port", "9090"})
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, uint32(5), cfg.Weight)
	require.Equal(t, "runs", cfg.Policy)
	require.Equal(t, 2*time.Second, cfg.Trim)
	require.True(t, cfg.Debug)
	require.Equal(t, "/tmp/data/data.zip", cfg.Data)

	counter, err := cfg.Counter()
	require.NoError(t, err)
	require.Equal(t, runlen.Counter{Weight: 5, Policy: runlen.Runs}, counter)
}

func TestParseConfigMissingFile(t *testing.T) {
	cfg, err := parseConfig([]string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "-onlyload"})
	require.NoError(t, err)
	require.True(t, cfg.OnlyLoad)
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := parseConfig([]string{"-policy", "first"})
	require.Error(t, err)

	_, err = parseConfig([]string{"-weight", "0"})
	require.Error(t, err)

	_, err = parseConfig([]string{"-weight", "4294967299"})
	require.Error(t, err)

	_, err = parseConfig([]string{"-weight", "4294967296"})
	require.Error(t, err)

	cfg, err := parseConfig([]string{"-weight", "4294967295"})
	require.NoError(t, err)
	require.Equal(t, uint32(4294967295), cfg.Weight)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weight: [1"), 0644))
	_, err = parseConfig([]string{"-config", path})
	require.Error(t, err)
}
