package plugin

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// UseClause is one named AMD loader configuration entry contributed by a
// plugin descriptor.
type UseClause struct {
	// Name is the clause key, for example "underscore".
	Name string `json:"name"`
	// Value is the clause value as whitespace-free JSON text. Two clauses
	// are considered identical exactly when their Values match.
	Value string `json:"value"`
	// Raw is the clause value as first declared, kept for conflict
	// reporting.
	Raw string `json:"-"`
}

// MergedConfig aggregates the css and use contributions of all plugin
// descriptors of a site.
type MergedConfig struct {
	// CSS lists every stylesheet URL in descriptor order. Duplicates are
	// preserved; the page may rely on load order and repeated includes are
	// harmless.
	CSS []string

	// UseClauses holds the reconciled clauses in first-seen order.
	UseClauses []UseClause

	index map[string]int
}

// MergeConfigs folds the descriptors' configuration documents, in the given
// descriptor order, into one MergedConfig. Descriptors without a
// configuration document contribute nothing. A use clause redeclared with an
// identical value is a no-op; a differing value aborts the merge with a
// ConflictingUseClauseError.
func MergeConfigs(descriptors []Descriptor) (*MergedConfig, error) {
	merged := &MergedConfig{
		CSS:        []string{},
		UseClauses: []UseClause{},
		index:      map[string]int{},
	}
	for _, desc := range descriptors {
		if desc.Config == nil {
			continue
		}
		if err := merged.add(desc); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func (m *MergedConfig) add(desc Descriptor) error {
	data := desc.Config.Data

	if css, ok := data["css"].([]any); ok {
		for _, v := range css {
			if url, ok := v.(string); ok {
				m.CSS = append(m.CSS, url)
			}
		}
	}

	use, ok := data["use"].(map[string]any)
	if !ok {
		return nil
	}
	// Deterministic pass over the clause map.
	names := make([]string, 0, len(use))
	for name := range use {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := json.Marshal(use[name])
		if err != nil {
			return fmt.Errorf("plugin %s: encoding use clause %q: %w", desc.FolderName, name, err)
		}
		value := stripWhitespace(string(raw))

		if i, exists := m.index[name]; exists {
			if m.UseClauses[i].Value != value {
				return &ConflictingUseClauseError{
					Clause: name,
					First:  m.UseClauses[i].Raw,
					Second: string(raw),
				}
			}
			continue
		}
		m.index[name] = len(m.UseClauses)
		m.UseClauses = append(m.UseClauses, UseClause{Name: name, Value: value, Raw: string(raw)})
	}
	return nil
}

// UseClauseText renders the clauses as one "name: value" line per clause in
// first-seen order, the form embedded in the generated loader script.
func (m *MergedConfig) UseClauseText() string {
	var b strings.Builder
	for i, clause := range m.UseClauses {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(clause.Name)
		b.WriteString(": ")
		b.WriteString(clause.Value)
	}
	return b.String()
}

// Clause comparison must not depend on how an author formatted a value, so
// whitespace is removed everywhere, string literals included.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
