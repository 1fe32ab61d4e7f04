// Package schema loads and validates the JSON configuration documents that
// drive site assembly: the per-site region document and the per-plugin
// descriptor document. Validation is JSON-Schema based; the built-in schemas
// can be overridden by a schema directory, in which case relative $ref
// entries resolve against that directory.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// Kind identifies which document class a file must conform to.
type Kind string

const (
	KindRegion Kind = "region"
	KindPlugin Kind = "plugin"
)

// schemaFile returns the on-disk file name for a kind inside a schema directory.
func (k Kind) schemaFile() string {
	return string(k) + "-schema.json"
}

//go:embed schemas/region-schema.json
var regionSchemaJSON []byte

//go:embed schemas/plugin-schema.json
var pluginSchemaJSON []byte

// Document is a loaded, schema-validated JSON document. Raw preserves the
// exact bytes read from disk so callers can round-trip the original text.
// Data is shared, not copied; callers must treat it as read-only.
type Document struct {
	Path string
	Kind Kind
	Raw  []byte
	Data map[string]any
}

// Validator validates documents against compiled JSON Schemas.
type Validator struct {
	schemaDir string
	compiled  map[Kind]*gojsonschema.Schema
}

// NewValidator compiles the region and plugin schemas. When schemaDir is
// empty the embedded schemas are used; otherwise region-schema.json and
// plugin-schema.json are loaded from the directory and relative $ref
// entries resolve against it.
func NewValidator(schemaDir string) (*Validator, error) {
	v := &Validator{
		schemaDir: schemaDir,
		compiled:  make(map[Kind]*gojsonschema.Schema, 2),
	}
	for _, kind := range []Kind{KindRegion, KindPlugin} {
		loader, err := v.schemaLoader(kind)
		if err != nil {
			return nil, err
		}
		compiled, err := gojsonschema.NewSchema(loader)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", kind, err)
		}
		v.compiled[kind] = compiled
	}
	return v, nil
}

// schemaLoader selects the embedded schema or the on-disk override for a kind.
func (v *Validator) schemaLoader(kind Kind) (gojsonschema.JSONLoader, error) {
	if v.schemaDir == "" {
		switch kind {
		case KindRegion:
			return gojsonschema.NewBytesLoader(regionSchemaJSON), nil
		case KindPlugin:
			return gojsonschema.NewBytesLoader(pluginSchemaJSON), nil
		default:
			return nil, fmt.Errorf("unknown schema kind: %s", kind)
		}
	}
	abs, err := filepath.Abs(filepath.Join(v.schemaDir, kind.schemaFile()))
	if err != nil {
		return nil, fmt.Errorf("resolve %s schema path: %w", kind, err)
	}
	// file:// URIs let gojsonschema resolve relative $ref against the schema dir.
	return gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs)), nil
}

// LoadAndValidate reads path, checks it against the schema for kind, and
// returns the parsed document. Malformed JSON and schema violations both
// surface as *ValidationError carrying the file path.
func (v *Validator) LoadAndValidate(path string, kind Kind) (*Document, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s document: %w", kind, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &ValidationError{Path: path, Kind: kind, Err: err}
	}

	compiled, ok := v.compiled[kind]
	if !ok {
		return nil, fmt.Errorf("no compiled schema for kind %s", kind)
	}
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &ValidationError{Path: path, Kind: kind, Err: err}
	}
	if !result.Valid() {
		verr := &ValidationError{Path: path, Kind: kind}
		for _, desc := range result.Errors() {
			verr.Violations = append(verr.Violations, desc.String())
		}
		return nil, verr
	}

	return &Document{Path: path, Kind: kind, Raw: raw, Data: data}, nil
}
