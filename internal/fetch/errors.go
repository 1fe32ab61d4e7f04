package fetch

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// AuthError indicates the remote rejected the configured credentials.
type AuthError struct {
	Op  string
	URL string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError indicates the remote repository does not exist.
type NotFoundError struct {
	Op  string
	URL string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: repository not found at %s: %v", e.Op, e.URL, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// classifySyncError wraps go-git failures into typed variants so callers
// can branch without string parsing.
func classifySyncError(op, url string, err error) error {
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "authorization") || strings.Contains(l, "invalid credentials"):
		return &AuthError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "not found") || strings.Contains(l, "does not exist"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	}
	return fmt.Errorf("failed to %s bundle %s: %w", op, url, err)
}

// isPermanent reports whether retrying the sync cannot help.
func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	var authErr *AuthError
	var notFound *NotFoundError
	if errors.As(err, &authErr) || errors.As(err, &notFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "denied") ||
		strings.Contains(msg, "unsupported protocol") || strings.Contains(msg, "invalid reference") {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return !netErr.Timeout()
	}
	return false
}
