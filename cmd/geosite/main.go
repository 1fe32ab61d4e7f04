package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/prusikmapping/GeositeFramework/internal/config"
	"github.com/prusikmapping/GeositeFramework/internal/fetch"
	"github.com/prusikmapping/GeositeFramework/internal/metrics"
	"github.com/prusikmapping/GeositeFramework/internal/plugin"
	"github.com/prusikmapping/GeositeFramework/internal/region"
	"github.com/prusikmapping/GeositeFramework/internal/retry"
	"github.com/prusikmapping/GeositeFramework/internal/schema"
	"github.com/prusikmapping/GeositeFramework/internal/site"
	"github.com/prusikmapping/GeositeFramework/internal/version"
	"github.com/prusikmapping/GeositeFramework/internal/watch"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"geosite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `short:"V" help:"Print version information and quit"`

	Build struct {
		Output   string `short:"o" help:"Output directory (overrides configuration)"`
		Site     string `short:"s" help:"Specific site to assemble (optional)"`
		SkipSync bool   `help:"Skip plugin bundle synchronization"`
	} `cmd:"" help:"Assemble configured sites and write their results"`

	Validate struct{} `cmd:"" help:"Validate configuration, region documents and plugins without writing output"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Plugins struct {
		Site string `short:"s" help:"Specific site to list plugins for (optional)"`
	} `cmd:"" help:"List discovered plugins without building"`

	Watch struct {
		SkipSync    bool   `help:"Skip plugin bundle synchronization before watching"`
		MetricsAddr string `help:"Serve Prometheus metrics on this address (requires the prometheus build tag)"`
	} `cmd:"" help:"Watch for changes and reassemble affected sites continuously"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{"version": version.String()})

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Execute command
	switch ctx.Command() {
	case "build":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runBuild(cfg, CLI.Build.Output, CLI.Build.Site, CLI.Build.SkipSync); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "validate":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runValidate(cfg); err != nil {
			slog.Error("Validation failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "plugins":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runPlugins(cfg, CLI.Plugins.Site); err != nil {
			slog.Error("Plugin discovery failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(cfg, CLI.Watch.SkipSync); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	}
}

// loadConfig loads and validates the configuration file named on the
// command line.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selectSites returns the sites to operate on. An empty name selects all
// configured sites.
func selectSites(cfg *config.Config, name string) ([]config.Site, error) {
	if name == "" {
		return cfg.Sites, nil
	}
	for _, sc := range cfg.Sites {
		if sc.Name == name {
			return []config.Site{sc}, nil
		}
	}
	return nil, fmt.Errorf("site '%s' not found in configuration", name)
}

// syncBundles clones or updates every configured plugin bundle.
func syncBundles(cfg *config.Config, rec metrics.Recorder) error {
	if len(cfg.Bundles) == 0 {
		return nil
	}
	syncer := fetch.NewSyncer(".").
		WithPolicy(retry.FromFetchConfig(cfg.Fetch)).
		SetRecorder(rec)
	_, err := syncer.SyncAll(cfg.Bundles)
	return err
}

func runBuild(cfg *config.Config, outputDir, siteName string, skipSync bool) error {
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}

	sites, err := selectSites(cfg, siteName)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("Starting site assembly",
		"output", cfg.Output.Directory,
		"sites", len(sites),
		"bundles", len(cfg.Bundles))

	recorder := resolveRecorder()
	if !skipSync {
		if err := syncBundles(cfg, recorder); err != nil {
			return err
		}
	}

	validator, err := schema.NewValidator(cfg.Schemas.Dir)
	if err != nil {
		return err
	}
	assembler := site.New(validator).SetRecorder(recorder)

	for _, sc := range sites {
		slog.Info("Assembling site", "site", sc.Name, "region", sc.Region)

		result, err := assembler.Assemble(ctx, site.Request{
			Site:       sc.Name,
			RegionPath: sc.Region,
			BaseDir:    sc.BaseDir,
		})
		if err != nil {
			slog.Error("Failed to assemble site", "site", sc.Name, "error", err)
			return err
		}

		siteDir, err := site.WriteResult(cfg.Output.Directory, result)
		if err != nil {
			slog.Error("Failed to write site output", "site", sc.Name, "error", err)
			return err
		}

		slog.Info("Site assembled",
			"site", sc.Name,
			"path", siteDir,
			"plugins", len(result.PluginFolderNames),
			"duration", result.Report.Duration())
	}

	slog.Info("All sites assembled successfully", "count", len(sites))
	return nil
}

// runValidate assembles every site without writing output, so every
// validation the pipeline performs runs. All sites are checked even when an
// earlier one fails.
func runValidate(cfg *config.Config) error {
	validator, err := schema.NewValidator(cfg.Schemas.Dir)
	if err != nil {
		return err
	}
	assembler := site.New(validator)

	failed := 0
	for _, sc := range cfg.Sites {
		result, err := assembler.Assemble(context.Background(), site.Request{
			Site:       sc.Name,
			RegionPath: sc.Region,
			BaseDir:    sc.BaseDir,
		})
		if err != nil {
			slog.Error("Site is invalid", "site", sc.Name, "error", err)
			failed++
			continue
		}
		slog.Info("Site is valid", "site", sc.Name, "plugins", len(result.PluginFolderNames))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sites failed validation", failed, len(cfg.Sites))
	}
	slog.Info("Configuration and all sites are valid", "sites", len(cfg.Sites))
	return nil
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

// runPlugins discovers and lists plugins per site in their final load order.
func runPlugins(cfg *config.Config, siteName string) error {
	sites, err := selectSites(cfg, siteName)
	if err != nil {
		return err
	}

	validator, err := schema.NewValidator(cfg.Schemas.Dir)
	if err != nil {
		return err
	}

	for _, sc := range sites {
		doc, err := validator.LoadAndValidate(sc.Region, schema.KindRegion)
		if err != nil {
			return err
		}
		reg, err := region.ParseWithBase(doc, sc.BaseDir)
		if err != nil {
			return err
		}
		descriptors, err := plugin.NewDiscoverer(validator).Discover(reg.PluginDirectories)
		if err != nil {
			return err
		}
		descriptors = plugin.Reorder(descriptors, reg.PluginOrder)

		slog.Info("Plugins discovered", "site", sc.Name, "count", len(descriptors))
		for _, desc := range descriptors {
			slog.Info("  Plugin discovered",
				"folder", desc.FolderName,
				"module_id", desc.ModuleID,
				"display_name", desc.DisplayName)
		}
	}

	return nil
}

func runWatch(cfg *config.Config, skipSync bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := resolveRecorder()
	if !skipSync {
		if err := syncBundles(cfg, recorder); err != nil {
			return err
		}
	}

	validator, err := schema.NewValidator(cfg.Schemas.Dir)
	if err != nil {
		return err
	}
	assembler := site.New(validator).SetRecorder(recorder)

	runner, err := watch.NewRunner(cfg, validator, assembler)
	if err != nil {
		return fmt.Errorf("failed to create watch runner: %w", err)
	}

	go serveMetrics(ctx, CLI.Watch.MetricsAddr)

	// Run the watcher in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- runner.Run(ctx)
	}()

	slog.Info("Watch mode started, waiting for shutdown signal...")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("watch error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping watcher...")
		if err := <-errChan; err != nil {
			return fmt.Errorf("watch error: %w", err)
		}
	}

	slog.Info("Watcher stopped successfully")
	return nil
}
