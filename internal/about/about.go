// Package about renders a region's markdown about page into the HTML and
// metadata the assembler hands to the template layer.
package about

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/inful/mdfp"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Page is a rendered about page.
type Page struct {
	// Path is the source markdown file.
	Path string `json:"path"`

	// Title comes from the frontmatter "title" field, falling back to the
	// first level-one heading of the body.
	Title string `json:"title"`

	// HTML is the rendered markdown body.
	HTML string `json:"html"`

	// Fingerprint is the canonical content fingerprint, stable across
	// rebuilds of unchanged content.
	Fingerprint string `json:"fingerprint"`

	// Links lists every reference the rendered page makes.
	Links []Link `json:"links"`
}

// Load reads, renders and fingerprints the markdown file at path.
func Load(path string) (*Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading about page %s: %w", path, err)
	}

	rawFields, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("about page %s: %w", path, err)
	}
	fields, err := parseFields(rawFields)
	if err != nil {
		return nil, fmt.Errorf("about page %s: parsing frontmatter: %w", path, err)
	}

	md := goldmark.New()

	var rendered bytes.Buffer
	if err := md.Convert(body, &rendered); err != nil {
		return nil, fmt.Errorf("about page %s: rendering markdown: %w", path, err)
	}

	title, _ := fields["title"].(string)
	if title == "" {
		title = firstHeading(md, body)
	}

	fingerprint, err := computeFingerprint(fields, body)
	if err != nil {
		return nil, fmt.Errorf("about page %s: %w", path, err)
	}

	links, err := extractLinks(bytes.NewReader(rendered.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("about page %s: extracting links: %w", path, err)
	}

	return &Page{
		Path:        path,
		Title:       title,
		HTML:        rendered.String(),
		Fingerprint: fingerprint,
		Links:       links,
	}, nil
}

// firstHeading returns the text of the first level-one heading, or "".
func firstHeading(md goldmark.Markdown, body []byte) string {
	root := md.Parser().Parse(gmtext.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering || title != "" {
			return gmast.WalkContinue, nil
		}
		heading, ok := n.(*gmast.Heading)
		if !ok || heading.Level != 1 {
			return gmast.WalkContinue, nil
		}
		var b strings.Builder
		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*gmast.Text); ok {
				b.Write(t.Segment.Value(body))
			}
		}
		title = strings.TrimSpace(b.String())
		return gmast.WalkStop, nil
	})
	return title
}

// computeFingerprint canonicalizes the frontmatter (fingerprint field
// excluded, LF newlines, single trailing newline trimmed) and hashes it
// together with the body.
func computeFingerprint(fields map[string]any, body []byte) (string, error) {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		forHash[k] = v
	}

	serialized := ""
	if len(forHash) > 0 {
		out, err := yaml.Marshal(forHash)
		if err != nil {
			return "", fmt.Errorf("serializing frontmatter: %w", err)
		}
		serialized = strings.TrimSuffix(string(out), "\n")
	}

	return mdfp.CalculateFingerprintFromParts(serialized, string(body)), nil
}
