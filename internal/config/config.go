// Package config defines the builder-level configuration: which sites to
// assemble, where remote plugin bundles come from, and how watch mode and
// event publishing behave.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Sites   []Site        `yaml:"sites"`
	Bundles []Bundle      `yaml:"bundles,omitempty"`
	Fetch   FetchConfig   `yaml:"fetch,omitempty"`
	Schemas SchemasConfig `yaml:"schemas,omitempty"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
}

// Site names one region document to assemble.
type Site struct {
	Name string `yaml:"name,omitempty"`
	// Region is the path to the region configuration file.
	Region string `yaml:"region"`
	// BaseDir optionally overrides the directory relative paths in the
	// region document resolve against.
	BaseDir string `yaml:"base_dir,omitempty"`
}

// Bundle represents a remote Git repository of plugin folders synced into
// the local tree before assembly.
type Bundle struct {
	Name   string      `yaml:"name"`
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	// Target is the local checkout directory. Defaults to bundles/<name>.
	Target string      `yaml:"target,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents authentication configuration for bundle syncs.
type AuthConfig struct {
	Type     string `yaml:"type"` // "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// FetchConfig tunes bundle synchronization. Delays are Go duration strings.
type FetchConfig struct {
	// MaxRetries is the number of retry attempts after the first failure.
	// Zero disables retries.
	MaxRetries        int              `yaml:"max_retries,omitempty"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`
}

// SchemasConfig points at an optional directory of JSON Schema overrides.
type SchemasConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// WatchConfig tunes watch mode. Durations are Go duration strings.
type WatchConfig struct {
	Debounce        string `yaml:"debounce,omitempty"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
}

// EventsConfig enables assembly event publishing when a NATS URL is set.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file, expanding ${VAR}
// references from the environment (a .env file is honored when present).
func Load(configPath string) (*Config, error) {
	// Absence of a .env file is the normal case.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Sites: []Site{
			{Name: "gulfmex", Region: "regions/gulfmex/region.json"},
			{Name: "puget", Region: "regions/puget/region.json"},
		},
		Bundles: []Bundle{
			{
				Name:   "core-plugins",
				URL:    "https://github.com/example/core-plugins.git",
				Branch: "main",
				Auth: &AuthConfig{
					Type:  "token",
					Token: "YOUR_GIT_TOKEN",
				},
			},
		},
		Output: OutputConfig{Directory: "./output"},
		Watch:  WatchConfig{Debounce: "2s"},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Output.Directory == "" {
		config.Output.Directory = "./output"
	}
	if config.Watch.Debounce == "" {
		config.Watch.Debounce = "2s"
	}
	if config.Events.NATSURL != "" && config.Events.Subject == "" {
		config.Events.Subject = "geosite.assembly"
	}
	for i := range config.Sites {
		if config.Sites[i].Name == "" && config.Sites[i].Region != "" {
			config.Sites[i].Name = filepath.Base(filepath.Dir(config.Sites[i].Region))
		}
	}
	for i := range config.Bundles {
		if config.Bundles[i].Branch == "" {
			config.Bundles[i].Branch = "main"
		}
		if config.Bundles[i].Target == "" && config.Bundles[i].Name != "" {
			config.Bundles[i].Target = filepath.Join("bundles", config.Bundles[i].Name)
		}
	}
}
