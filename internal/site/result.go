package site

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/prusikmapping/GeositeFramework/internal/about"
	"github.com/prusikmapping/GeositeFramework/internal/colors"
	"github.com/prusikmapping/GeositeFramework/internal/navigation"
	"github.com/prusikmapping/GeositeFramework/internal/plugin"
)

// Result is the immutable aggregate one assembly run produces: everything
// the page template needs to render a site. A failed run produces no Result
// at all.
type Result struct {
	// Site is the site name the result was assembled for.
	Site string `json:"site"`

	// PluginFolderNames and PluginModuleIDs list the plugins in final
	// order, index-aligned.
	PluginFolderNames []string `json:"pluginFolderNames"`
	PluginModuleIDs   []string `json:"pluginModuleIds"`

	// ModuleIDList is the quoted, comma-separated module identifier list
	// spliced into the generated loader script, for example
	// "layer_selector/main","measure/main".
	ModuleIDList string `json:"moduleIdList"`

	// VariableNameList names one generated variable per plugin, index
	// aligned with the module list: p0,p1,p2.
	VariableNameList string `json:"variableNameList"`

	// RegionJSON is the region document re-encoded with the resolved
	// pluginFolderNames injected for client-side reuse.
	RegionJSON string `json:"regionJson"`

	Colors colors.Pair `json:"colors"`

	// CSSURLs lists every plugin stylesheet in plugin order, duplicates
	// preserved.
	CSSURLs []string `json:"cssUrls"`

	// UseClauses holds the reconciled loader clauses in first-seen order;
	// UseClauseText is their rendered one-line-per-clause form.
	UseClauses    []plugin.UseClause `json:"useClauses"`
	UseClauseText string             `json:"useClauseText"`

	TitleMain   navigation.Link   `json:"titleMain"`
	TitleDetail navigation.Link   `json:"titleDetail"`
	HeaderLinks []navigation.Link `json:"headerLinks"`
	RegionLinks []navigation.Link `json:"regionLinks"`

	GoogleAnalyticsID string `json:"googleAnalyticsId,omitempty"`

	// Plugins carries the full descriptors, launchpad labels included.
	Plugins []plugin.Descriptor `json:"plugins"`

	// About is the rendered about page, nil when the region document
	// names none.
	About *about.Page `json:"about,omitempty"`

	// Report describes the run that produced this result.
	Report *Report `json:"report"`
}

// moduleIDList renders the quoted, comma-separated module identifier list.
func moduleIDList(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return `"` + strings.Join(ids, `","`) + `"`
}

// variableNameList renders p0,p1,... aligned by index to the plugin order.
func variableNameList(n int) string {
	if n == 0 {
		return ""
	}
	names := make([]string, n)
	for i := range names {
		names[i] = "p" + strconv.Itoa(i)
	}
	return strings.Join(names, ",")
}

// augmentRegionJSON re-encodes the raw region document with the resolved
// plugin folder list injected under "pluginFolderNames". The source document
// is never mutated.
func augmentRegionJSON(raw []byte, folderNames []string) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("re-encoding region document: %w", err)
	}
	doc["pluginFolderNames"] = folderNames
	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("re-encoding region document: %w", err)
	}
	return string(out), nil
}
