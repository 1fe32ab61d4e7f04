package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prusikmapping/GeositeFramework/internal/schema"
)

func newDiscoverer(t *testing.T) *Discoverer {
	t.Helper()
	v, err := schema.NewValidator("")
	require.NoError(t, err)
	return NewDiscoverer(v)
}

func writePlugin(t *testing.T, sourceDir, name string, descriptor string) {
	t.Helper()
	folder := filepath.Join(sourceDir, name)
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, EntryPointFile), []byte("define([], function(){});\n"), 0o644))
	if descriptor != "" {
		require.NoError(t, os.WriteFile(filepath.Join(folder, DescriptorFile), []byte(descriptor), 0o644))
	}
}

func TestDiscoverOrdersLexically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"measure", "layer_selector", "search"} {
		writePlugin(t, dir, name, "")
	}

	descs, err := newDiscoverer(t).Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"layer_selector", "measure", "search"}, folders(descs))
	assert.Equal(t, "layer_selector/main", descs[0].ModuleID)
	assert.Equal(t, "Layer Selector", descs[0].DisplayName)
	assert.Equal(t, filepath.Join(dir, "layer_selector"), descs[0].Dir)
	assert.Nil(t, descs[0].Config)
}

func TestDiscoverSourceDirectoryOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writePlugin(t, first, "zebra", "")
	writePlugin(t, second, "aardvark", "")

	descs, err := newDiscoverer(t).Discover([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "aardvark"}, folders(descs))
}

func TestDiscoverSkipsFiles(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "real", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a plugin"), 0o644))

	descs, err := newDiscoverer(t).Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, folders(descs))
}

func TestDiscoverMissingEntryPoint(t *testing.T) {
	dir := t.TempDir()
	// Nine valid siblings do not soften the failure.
	for i := 0; i < 9; i++ {
		writePlugin(t, dir, fmt.Sprintf("plugin_%d", i), "")
	}
	broken := filepath.Join(dir, "broken")
	require.NoError(t, os.MkdirAll(broken, 0o755))

	_, err := newDiscoverer(t).Discover([]string{dir})
	require.Error(t, err)

	var missing *MissingEntryPointError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "broken", missing.Folder)
	assert.Equal(t, broken, missing.Dir)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), EntryPointFile)
}

func TestDiscoverLoadsDescriptor(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "styled", `{"css": ["styled.css"], "use": {"underscore": "_"}}`)

	descs, err := newDiscoverer(t).Discover([]string{dir})
	require.NoError(t, err)
	require.Len(t, descs, 1)
	require.NotNil(t, descs[0].Config)
	assert.Equal(t, schema.KindPlugin, descs[0].Config.Kind)

	merged, err := MergeConfigs(descs)
	require.NoError(t, err)
	assert.Equal(t, []string{"styled.css"}, merged.CSS)
}

func TestDiscoverInvalidDescriptor(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "bad", `{"css": "not-an-array"}`)

	_, err := newDiscoverer(t).Discover([]string{dir})
	require.Error(t, err)

	var invalid *schema.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, schema.KindPlugin, invalid.Kind)
}

func TestDiscoverDuplicateFolderAcrossSources(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writePlugin(t, first, "measure", "")
	writePlugin(t, second, "measure", "")

	_, err := newDiscoverer(t).Discover([]string{first, second})
	require.Error(t, err)

	var dup *DuplicatePluginError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "measure", dup.Folder)
	assert.Equal(t, first, dup.FirstDir)
	assert.Equal(t, second, dup.SecondDir)
}

func TestDiscoverMissingSourceDirectory(t *testing.T) {
	_, err := newDiscoverer(t).Discover([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}

func TestDiscoverEmptySourceDirectory(t *testing.T) {
	descs, err := newDiscoverer(t).Discover([]string{t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, descs)
	assert.Empty(t, descs)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"layer_selector", "Layer Selector"},
		{"measure", "Measure"},
		{"street-view", "Street View"},
		{"explorer2", "Explorer2"},
	}
	for _, tc := range tests {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
