package schema

import (
	"fmt"
	"strings"
)

// ValidationError reports a document that is malformed JSON or does not
// conform to its schema. Assembly aborts on it; there is no degraded mode.
type ValidationError struct {
	Path       string
	Kind       Kind
	Violations []string
	Err        error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s document %s: %v", e.Kind, e.Path, e.Err)
	}
	if len(e.Violations) > 0 {
		return fmt.Sprintf("invalid %s document %s: %s", e.Kind, e.Path, strings.Join(e.Violations, "; "))
	}
	return fmt.Sprintf("invalid %s document %s", e.Kind, e.Path)
}

func (e *ValidationError) Unwrap() error { return e.Err }
