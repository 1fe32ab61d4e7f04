// Package region provides a typed view over a validated region document.
//
// The view stays close to the raw JSON: link-bearing fields keep their
// untyped values so the navigation package can extract trees from them
// later, while path-valued fields are resolved against the directory that
// contains the region file.
package region

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/prusikmapping/GeositeFramework/internal/schema"
)

// ErrNotRegion is returned when Parse is handed a document of another kind.
var ErrNotRegion = errors.New("document is not a region document")

// Document is the typed view of a validated region configuration file.
type Document struct {
	// Source is the validated document the view was built from. Raw bytes
	// stay available for re-encoding.
	Source *schema.Document

	// PluginDirectories lists the plugin source directories, resolved
	// against the region file's directory. At least one entry.
	PluginDirectories []string

	// PluginOrder is the optional preferred ordering of plugin folder
	// names or module identifiers. Nil when absent.
	PluginOrder []string

	// TitleMain and TitleDetail carry the raw link objects for the two
	// site titles. Nil when absent.
	TitleMain   any
	TitleDetail any

	// HeaderLinks and RegionLinks carry the raw link arrays. Nil when
	// absent.
	HeaderLinks any
	RegionLinks any

	// Colors is the raw "colors" block. Nil when absent, which the color
	// resolver maps to the defaults.
	Colors map[string]any

	// GoogleAnalyticsID is the optional tracking property id.
	GoogleAnalyticsID string

	// AboutPage is the optional markdown about page, resolved against the
	// region file's directory. Empty when absent.
	AboutPage string
}

// Parse extracts the typed fields from a validated region document,
// resolving relative paths against the region file's directory.
func Parse(src *schema.Document) (*Document, error) {
	return ParseWithBase(src, "")
}

// ParseWithBase is Parse with an explicit base directory for resolving
// relative paths. An empty base falls back to the region file's directory.
func ParseWithBase(src *schema.Document, base string) (*Document, error) {
	if src == nil {
		return nil, fmt.Errorf("region: nil document")
	}
	if src.Kind != schema.KindRegion {
		return nil, fmt.Errorf("region %s: %w", src.Path, ErrNotRegion)
	}

	baseDir := base
	if baseDir == "" {
		baseDir = filepath.Dir(src.Path)
	}

	dirs, err := stringSlice(src.Data["pluginDirectories"])
	if err != nil {
		return nil, fmt.Errorf("region %s: pluginDirectories: %w", src.Path, err)
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("region %s: pluginDirectories must name at least one directory", src.Path)
	}
	resolved := make([]string, len(dirs))
	for i, dir := range dirs {
		resolved[i] = resolvePath(baseDir, dir)
	}

	order, err := stringSlice(src.Data["pluginOrder"])
	if err != nil {
		return nil, fmt.Errorf("region %s: pluginOrder: %w", src.Path, err)
	}

	doc := &Document{
		Source:            src,
		PluginDirectories: resolved,
		PluginOrder:       order,
		TitleMain:         src.Data["titleMain"],
		TitleDetail:       src.Data["titleDetail"],
		HeaderLinks:       src.Data["headerLinks"],
		RegionLinks:       src.Data["regionLinks"],
	}

	if block, ok := src.Data["colors"].(map[string]any); ok {
		doc.Colors = block
	}
	if id, ok := src.Data["googleAnalyticsPropertyId"].(string); ok {
		doc.GoogleAnalyticsID = id
	}
	if page, ok := src.Data["aboutPage"].(string); ok && page != "" {
		doc.AboutPage = resolvePath(baseDir, page)
	}

	return doc, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func stringSlice(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected string, got %T", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}
