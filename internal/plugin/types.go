// Package plugin discovers map-viewer plugins on disk, orders them, and
// merges their per-plugin configuration into the aggregate the site
// assembler embeds in generated pages.
package plugin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/prusikmapping/GeositeFramework/internal/schema"
)

// Well-known files inside a plugin folder.
const (
	// EntryPointFile is the AMD entry script every plugin must ship.
	EntryPointFile = "main.js"
	// DescriptorFile is the optional per-plugin configuration document.
	DescriptorFile = "plugin.json"

	entryModule = "main"
)

// Descriptor identifies one discovered plugin.
type Descriptor struct {
	// FolderName is the plugin's subdirectory name, unique across all
	// plugin source directories of a site.
	FolderName string `json:"folderName"`

	// ModuleID is the AMD module identifier loaded by the viewer,
	// forward-slash form with the entry module appended, for example
	// "layer_selector/main".
	ModuleID string `json:"moduleId"`

	// DisplayName is a human-readable label derived from the folder name,
	// used for launchpad entries.
	DisplayName string `json:"displayName"`

	// Dir is the absolute path of the plugin folder.
	Dir string `json:"-"`

	// Config is the validated plugin.json document, nil when the plugin
	// ships none.
	Config *schema.Document `json:"-"`
}

// DisplayName derives a label from a plugin folder name, replacing
// separator characters with spaces and title-casing the words, so
// "layer_selector" becomes "Layer Selector".
func DisplayName(folder string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(folder)
	return cases.Title(language.English).String(cleaned)
}
