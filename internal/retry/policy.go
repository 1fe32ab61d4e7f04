// Package retry provides the backoff policy applied to transient bundle
// sync failures.
package retry

import (
	"time"

	"github.com/prusikmapping/GeositeFramework/internal/config"
)

// Policy encapsulates retry and backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int
}

// DefaultPolicy returns the baseline policy: linear backoff, 1s initial
// delay, 30s cap, 2 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy from raw settings; zero or invalid values fall
// back to defaults, and the initial delay is clamped to the cap.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if normalized := config.NormalizeRetryBackoff(string(mode)); normalized != "" {
		p.Mode = normalized
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromFetchConfig derives a policy from the fetch section of the builder
// configuration. Duration strings that fail to parse read as unset; a
// max_retries of zero disables retries entirely.
func FromFetchConfig(fc config.FetchConfig) Policy {
	initial, _ := time.ParseDuration(fc.RetryInitialDelay)
	maxDelay, _ := time.ParseDuration(fc.RetryMaxDelay)
	return NewPolicy(fc.RetryBackoff, initial, maxDelay, fc.MaxRetries)
}

// Delay returns the backoff delay for the given retry attempt number,
// 1-based: the first retry is attempt 1.
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		d := p.Initial * (1 << (retryCount - 1))
		if d > p.Max {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}
