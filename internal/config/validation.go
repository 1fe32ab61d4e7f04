package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration
// domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate performs validation using domain-specific methods, in order of
// dependencies.
func (cv *configurationValidator) validate() error {
	if err := cv.validateSites(); err != nil {
		return err
	}
	if err := cv.validateBundles(); err != nil {
		return err
	}
	if err := cv.validateFetch(); err != nil {
		return err
	}
	if err := cv.validateOutput(); err != nil {
		return err
	}
	if err := cv.validateWatch(); err != nil {
		return err
	}
	return cv.validateEvents()
}

func (cv *configurationValidator) validateSites() error {
	if len(cv.config.Sites) == 0 {
		return errors.New("at least one site must be configured")
	}
	seen := map[string]bool{}
	for i, site := range cv.config.Sites {
		if site.Region == "" {
			return fmt.Errorf("site %d: region file path is required", i)
		}
		if site.Name == "" {
			return fmt.Errorf("site %d: name is required", i)
		}
		if seen[site.Name] {
			return fmt.Errorf("duplicate site name: %s", site.Name)
		}
		seen[site.Name] = true
	}
	return nil
}

func (cv *configurationValidator) validateBundles() error {
	seen := map[string]bool{}
	for i, bundle := range cv.config.Bundles {
		if bundle.Name == "" {
			return fmt.Errorf("bundle %d: name is required", i)
		}
		if bundle.URL == "" {
			return fmt.Errorf("bundle %s: url is required", bundle.Name)
		}
		if seen[bundle.Name] {
			return fmt.Errorf("duplicate bundle name: %s", bundle.Name)
		}
		seen[bundle.Name] = true
		if err := validateAuth(bundle.Auth); err != nil {
			return fmt.Errorf("bundle %s: %w", bundle.Name, err)
		}
	}
	return nil
}

func validateAuth(auth *AuthConfig) error {
	if auth == nil {
		return nil
	}
	switch auth.Type {
	case "", "none":
		return nil
	case "ssh":
		return nil // key path defaults to ~/.ssh/id_rsa at use time
	case "token":
		if auth.Token == "" {
			return errors.New("token authentication requires a token")
		}
		return nil
	case "basic":
		if auth.Username == "" || auth.Password == "" {
			return errors.New("basic authentication requires username and password")
		}
		return nil
	default:
		return fmt.Errorf("unsupported authentication type: %s", auth.Type)
	}
}

func (cv *configurationValidator) validateFetch() error {
	f := cv.config.Fetch
	if f.MaxRetries < 0 {
		return errors.New("fetch.max_retries must not be negative")
	}
	if f.RetryBackoff != "" && NormalizeRetryBackoff(string(f.RetryBackoff)) == "" {
		return fmt.Errorf("fetch.retry_backoff: unknown mode %q", f.RetryBackoff)
	}
	if f.RetryInitialDelay != "" {
		if _, err := time.ParseDuration(f.RetryInitialDelay); err != nil {
			return fmt.Errorf("fetch.retry_initial_delay: %w", err)
		}
	}
	if f.RetryMaxDelay != "" {
		if _, err := time.ParseDuration(f.RetryMaxDelay); err != nil {
			return fmt.Errorf("fetch.retry_max_delay: %w", err)
		}
	}
	return nil
}

func (cv *configurationValidator) validateOutput() error {
	if cv.config.Output.Directory == "" {
		return errors.New("output directory is required")
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	if _, err := cv.config.Watch.DebounceDuration(); err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	}
	interval, err := cv.config.Watch.RebuildIntervalDuration()
	if err != nil {
		return fmt.Errorf("watch.rebuild_interval: %w", err)
	}
	if interval != 0 && interval < time.Second {
		return errors.New("watch.rebuild_interval must be at least 1s when set")
	}
	return nil
}

func (cv *configurationValidator) validateEvents() error {
	if cv.config.Events.NATSURL == "" && cv.config.Events.Subject != "" {
		return errors.New("events.subject is set but events.nats_url is empty")
	}
	return nil
}

// DebounceDuration parses the debounce window. Empty means the default has
// not been applied yet and reads as zero.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	if w.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}

// RebuildIntervalDuration parses the periodic rebuild interval. Zero
// disables periodic rebuilds.
func (w WatchConfig) RebuildIntervalDuration() (time.Duration, error) {
	if w.RebuildInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(w.RebuildInterval)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}
