package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skx/minic/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	require.Equal(t, ".", cfg.Output.Dir)
	require.False(t, cfg.Linkage.StrictExtern)
	require.Equal(t, "11.0", cfg.Target.SDKVersion)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minic.toml")
	contents := `
[output]
dir = "build"

[linkage]
strict_extern = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "build", cfg.Output.Dir)
	require.True(t, cfg.Linkage.StrictExtern)
	// Untouched sections keep their default value.
	require.Equal(t, "11.0", cfg.Target.SDKVersion)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minic.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
