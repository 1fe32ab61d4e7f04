package about

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrUnclosedFrontmatter indicates a document that opens a YAML frontmatter
// block without closing it.
var ErrUnclosedFrontmatter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

// splitFrontmatter separates an optional leading `---` delimited YAML block
// from the markdown body. Documents without one return the full input as
// body. Both LF and CRLF documents are accepted.
func splitFrontmatter(content []byte) (frontmatter, body []byte, err error) {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}

	open := []byte("---" + newline)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], nil
	}

	closeSeq := []byte(newline + "---" + newline)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, ErrUnclosedFrontmatter
	}
	return rest[:idx+len(newline)], rest[idx+len(closeSeq):], nil
}

// parseFields parses raw YAML frontmatter into a map. Empty input yields an
// empty map, never nil.
func parseFields(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
