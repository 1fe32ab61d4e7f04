// Package watch drives continuous site assembly: sites rebuild when their
// inputs change on disk, optionally on a fixed interval, with an event
// published for every run.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/prusikmapping/GeositeFramework/internal/config"
	"github.com/prusikmapping/GeositeFramework/internal/logfields"
	"github.com/prusikmapping/GeositeFramework/internal/region"
	"github.com/prusikmapping/GeositeFramework/internal/schema"
	"github.com/prusikmapping/GeositeFramework/internal/site"
	"github.com/prusikmapping/GeositeFramework/internal/util/sets"
)

// Runner owns watch mode for the configured sites.
type Runner struct {
	cfg       *config.Config
	validator *schema.Validator
	assembler *site.Assembler
	publisher *Publisher

	debounce time.Duration
	interval time.Duration

	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler

	mu       sync.Mutex
	siteDirs map[string]sets.Set[string] // site name -> directories feeding it
	watched  sets.Set[string]            // directories registered with the watcher
	timers   map[string]*time.Timer      // pending debounced rebuilds per site
}

// NewRunner builds a watch runner from validated configuration. Event
// publishing is enabled when the configuration names a NATS URL.
func NewRunner(cfg *config.Config, validator *schema.Validator, assembler *site.Assembler) (*Runner, error) {
	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil {
		return nil, fmt.Errorf("watch.debounce: %w", err)
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	interval, err := cfg.Watch.RebuildIntervalDuration()
	if err != nil {
		return nil, fmt.Errorf("watch.rebuild_interval: %w", err)
	}

	publisher, err := NewPublisher(cfg.Events)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:       cfg,
		validator: validator,
		assembler: assembler,
		publisher: publisher,
		debounce:  debounce,
		interval:  interval,
		siteDirs:  make(map[string]sets.Set[string]),
		watched:   sets.New[string](),
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Run assembles every site once, then rebuilds on file changes until the
// context is canceled. A canceled context is the normal way to stop watch
// mode and is not reported as an error.
func (r *Runner) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	r.watcher = watcher
	defer func() {
		if closeErr := r.watcher.Close(); closeErr != nil {
			slog.Error("error closing file watcher", logfields.Error(closeErr))
		}
		r.publisher.Close()
	}()

	for _, sc := range r.cfg.Sites {
		r.rebuild(ctx, sc)
	}

	if r.interval > 0 {
		scheduler, schedErr := gocron.NewScheduler()
		if schedErr != nil {
			return fmt.Errorf("failed to create scheduler: %w", schedErr)
		}
		r.scheduler = scheduler
		if _, jobErr := scheduler.NewJob(
			gocron.DurationJob(r.interval),
			gocron.NewTask(func() { r.rebuildAll(ctx) }),
			gocron.WithName("periodic-rebuild"),
		); jobErr != nil {
			return fmt.Errorf("failed to schedule periodic rebuild: %w", jobErr)
		}
		scheduler.Start()
		defer func() {
			if shutdownErr := r.scheduler.Shutdown(); shutdownErr != nil {
				slog.Error("error stopping scheduler", logfields.Error(shutdownErr))
			}
		}()
		slog.Info("periodic rebuild enabled", slog.Duration("interval", r.interval))
	}

	go r.watchLoop(ctx)

	slog.Info("watching for changes",
		logfields.Count(len(r.cfg.Sites)),
		slog.Duration("debounce", r.debounce))
	<-ctx.Done()
	slog.Info("watch mode stopping")

	r.mu.Lock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.mu.Unlock()
	return nil
}

// watchLoop dispatches file system events to per-site debounce timers.
func (r *Runner) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			for _, name := range r.sitesFor(event.Name) {
				r.scheduleRebuild(ctx, name)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", logfields.Error(err))
		}
	}
}

// scheduleRebuild arms, or re-arms, the debounce timer for a site.
func (r *Runner) scheduleRebuild(ctx context.Context, siteName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[siteName]; ok {
		t.Stop()
	}
	r.timers[siteName] = time.AfterFunc(r.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		for _, sc := range r.cfg.Sites {
			if sc.Name == siteName {
				r.rebuild(ctx, sc)
				return
			}
		}
	})
}

func (r *Runner) rebuildAll(ctx context.Context) {
	for _, sc := range r.cfg.Sites {
		if ctx.Err() != nil {
			return
		}
		r.rebuild(ctx, sc)
	}
}

// rebuild assembles one site, writes its output and publishes an assembly
// event. Failures are logged; watch mode keeps running so the next edit
// can fix them.
func (r *Runner) rebuild(ctx context.Context, sc config.Site) {
	jobID := uuid.NewString()
	log := slog.With(logfields.Site(sc.Name), logfields.JobID(jobID))

	result, err := r.assembler.Assemble(ctx, site.Request{
		Site:       sc.Name,
		RegionPath: sc.Region,
		BaseDir:    sc.BaseDir,
	})
	r.refreshWatchDirs(sc)
	if err != nil {
		outcome := site.OutcomeFailed
		var stageErr *site.StageError
		if errors.As(err, &stageErr) && stageErr.Kind == site.StageErrorCanceled {
			outcome = site.OutcomeCanceled
		}
		log.Error("assembly failed", logfields.Error(err))
		r.publishEvent(log, Event{JobID: jobID, Site: sc.Name, Outcome: string(outcome)})
		return
	}

	path, err := site.WriteResult(r.cfg.Output.Directory, result)
	if err != nil {
		log.Error("failed to write site output", logfields.Error(err))
		r.publishEvent(log, Event{JobID: jobID, Site: sc.Name, Outcome: string(site.OutcomeFailed)})
		return
	}
	log.Info("site output written", logfields.Path(path))

	r.publishEvent(log, Event{
		JobID:       jobID,
		Site:        result.Site,
		Outcome:     string(result.Report.Outcome),
		DurationMS:  result.Report.Duration().Seconds() * 1000,
		PluginCount: result.Report.PluginCount,
		ReportID:    result.Report.ID,
	})
}

func (r *Runner) publishEvent(log *slog.Logger, ev Event) {
	if err := r.publisher.Publish(ev); err != nil {
		log.Warn("failed to publish assembly event", logfields.Error(err))
	}
}

// refreshWatchDirs recomputes the directory set for a site and registers
// new directories with the watcher. Directories are never unregistered;
// deleted ones simply stop producing events.
func (r *Runner) refreshWatchDirs(sc config.Site) {
	dirs, err := r.collectWatchDirs(sc)
	if err != nil {
		// Still watch the region file so a fix triggers a rebuild.
		slog.Warn("failed to determine watch directories", logfields.Site(sc.Name), logfields.Error(err))
		dirs = []string{filepath.Dir(sc.Region)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	set := sets.New[string]()
	for _, dir := range dirs {
		set.Add(dir)
		if r.watched.Has(dir) {
			continue
		}
		if err := r.watcher.Add(dir); err != nil {
			slog.Warn("failed to watch directory", logfields.Path(dir), logfields.Error(err))
			continue
		}
		r.watched.Add(dir)
	}
	r.siteDirs[sc.Name] = set
}

// collectWatchDirs lists the directories whose contents feed one site: the
// region file's directory, each plugin directory with its immediate plugin
// folders, and the about page's directory.
func (r *Runner) collectWatchDirs(sc config.Site) ([]string, error) {
	doc, err := r.validator.LoadAndValidate(sc.Region, schema.KindRegion)
	if err != nil {
		return nil, err
	}
	reg, err := region.ParseWithBase(doc, sc.BaseDir)
	if err != nil {
		return nil, err
	}

	dirs := []string{filepath.Dir(sc.Region)}
	for _, pluginDir := range reg.PluginDirectories {
		dirs = append(dirs, pluginDir)
		entries, readErr := os.ReadDir(pluginDir)
		if readErr != nil {
			continue // the directory may not exist until a bundle sync
		}
		for _, entry := range entries {
			if entry.IsDir() {
				dirs = append(dirs, filepath.Join(pluginDir, entry.Name()))
			}
		}
	}
	if reg.AboutPage != "" {
		dirs = append(dirs, filepath.Dir(reg.AboutPage))
	}
	return dirs, nil
}

// sitesFor returns the sites whose watch set covers path.
func (r *Runner) sitesFor(path string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name, dirs := range r.siteDirs {
		for dir := range dirs {
			if path == dir || filepath.Dir(path) == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
				names = append(names, name)
				break
			}
		}
	}
	return names
}
