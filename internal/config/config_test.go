package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketfuldev/artag/internal/registry"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gto-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, err := Load(filepath.Join(t.TempDir(), "gto-config.yaml"))
	require.Error(t, err, "an explicit but missing config file is a ConfigError, not silently defaulted")
	assert.Equal(t, registry.ConventionNumbered, cfg.VersionConvention)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
version_convention: semver
sort: by_semver
stages:
  - dev
  - prod
kanban: true
multi_version_stage: true
index: custom-index.yaml
`)
	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, registry.ConventionSemver, cfg.VersionConvention)
	assert.Equal(t, registry.SortBySemver, cfg.Sort)
	assert.Equal(t, []string{"dev", "prod"}, cfg.Stages)
	assert.True(t, cfg.Kanban)
	assert.True(t, cfg.MultiVersionStage)
	assert.Equal(t, "custom-index.yaml", cfg.IndexPath)
}

func TestLoadRejectsUnknownVersionConvention(t *testing.T) {
	path := writeConfig(t, "version_convention: bogus\n")
	_, _, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, registry.KindConfig, err.(*registry.Error).Kind)
}

func TestLoadRejectsUnknownSort(t *testing.T) {
	path := writeConfig(t, "sort: bogus\n")
	_, _, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, registry.KindConfig, err.(*registry.Error).Kind)
}

func TestDescribeRendersEffectiveConfig(t *testing.T) {
	cfg := registry.DefaultConfig()
	out := Describe(cfg)
	assert.Contains(t, out, "version_convention=numbers")
	assert.Contains(t, out, "index=artifacts.yaml")
}
