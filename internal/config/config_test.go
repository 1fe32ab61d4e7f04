package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geosite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
sites:
  - region: regions/gulfmex/region.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "gulfmex", cfg.Sites[0].Name)
	assert.Equal(t, "./output", cfg.Output.Directory)
	assert.Equal(t, "2s", cfg.Watch.Debounce)
}

func TestLoadBundleDefaults(t *testing.T) {
	path := writeConfig(t, `
sites:
  - name: demo
    region: demo/region.json
bundles:
  - name: core-plugins
    url: https://example.com/core-plugins.git
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Bundles, 1)
	assert.Equal(t, "main", cfg.Bundles[0].Branch)
	assert.Equal(t, filepath.Join("bundles", "core-plugins"), cfg.Bundles[0].Target)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("GEOSITE_TEST_TOKEN", "sekrit")
	path := writeConfig(t, `
sites:
  - name: demo
    region: demo/region.json
bundles:
  - name: private
    url: https://example.com/private.git
    auth:
      type: token
      token: ${GEOSITE_TEST_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Bundles[0].Auth)
	assert.Equal(t, "sekrit", cfg.Bundles[0].Auth.Token)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "sites: [\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestEventsSubjectDefault(t *testing.T) {
	path := writeConfig(t, `
sites:
  - name: demo
    region: demo/region.json
events:
  nats_url: nats://localhost:4222
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "geosite.assembly", cfg.Events.Subject)
}

func TestInitWritesExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geosite.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))
	assert.NotEmpty(t, cfg.Sites)

	// A second init without force refuses to overwrite.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}

func TestWatchDurations(t *testing.T) {
	w := WatchConfig{Debounce: "1500ms", RebuildInterval: "10m"}

	debounce, err := w.DebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, debounce)

	interval, err := w.RebuildIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, interval)

	_, err = WatchConfig{Debounce: "soon"}.DebounceDuration()
	require.Error(t, err)
}
