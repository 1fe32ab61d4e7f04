// Package colors validates and normalizes the color overrides of a region
// document. Values end up embedded directly in generated markup, so a value
// that fails to parse is a fatal configuration error rather than something
// to paper over with a fallback.
package colors

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Default color applied to both primary and secondary when a region document
// carries no "colors" block. The single teal-blue matches older region files
// and must stay byte-identical for them.
const (
	DefaultPrimary   = "#26648E"
	DefaultSecondary = "#26648E"
)

// Pair holds the resolved primary/secondary colors as 6-digit hex strings.
type Pair struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Defaults returns the backward-compatible default pair.
func Defaults() Pair {
	return Pair{Primary: DefaultPrimary, Secondary: DefaultSecondary}
}

// Resolver turns the optional "colors" block of a region document into a
// Pair. Defaults are injected at construction, not read from package state.
type Resolver struct {
	defaults Pair
}

// NewResolver creates a resolver with the given fallback pair.
func NewResolver(defaults Pair) *Resolver {
	return &Resolver{defaults: defaults}
}

// Resolve parses the "colors" block. A nil block yields the defaults
// verbatim; inside a present block, each absent key falls back to its
// default individually.
func (r *Resolver) Resolve(block map[string]any) (Pair, error) {
	if block == nil {
		return r.defaults, nil
	}

	primary, err := r.resolveKey(block, "primary", r.defaults.Primary)
	if err != nil {
		return Pair{}, err
	}
	secondary, err := r.resolveKey(block, "secondary", r.defaults.Secondary)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Primary: primary, Secondary: secondary}, nil
}

func (r *Resolver) resolveKey(block map[string]any, key, fallback string) (string, error) {
	v, ok := block[key]
	if !ok {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &InvalidColorError{Key: key, Value: fmt.Sprint(v), Err: fmt.Errorf("expected string, got %T", v)}
	}
	normalized, err := Normalize(s)
	if err != nil {
		return "", &InvalidColorError{Key: key, Value: s, Err: err}
	}
	return normalized, nil
}

// Normalize parses a CSS hex color ("#26648E", "26648E" or the short "#17a"
// form) and returns the canonical lowercase 6-digit representation.
func Normalize(value string) (string, error) {
	s := value
	if s != "" && s[0] != '#' {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// InvalidColorError reports an unparseable color value, naming the region
// document key it was configured under.
type InvalidColorError struct {
	Key   string
	Value string
	Err   error
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("invalid %s color %q: %v", e.Key, e.Value, e.Err)
}

func (e *InvalidColorError) Unwrap() error { return e.Err }
