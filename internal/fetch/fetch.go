// Package fetch synchronizes remote plugin bundles into local checkouts
// before site assembly. A bundle is a Git repository of plugin folders;
// syncing clones it on first use and pulls on subsequent runs.
package fetch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/prusikmapping/GeositeFramework/internal/config"
	"github.com/prusikmapping/GeositeFramework/internal/logfields"
	"github.com/prusikmapping/GeositeFramework/internal/metrics"
	"github.com/prusikmapping/GeositeFramework/internal/retry"
)

// Syncer clones or updates the plugin bundles named in the builder
// configuration. Relative bundle targets resolve against the base
// directory.
type Syncer struct {
	baseDir  string
	policy   retry.Policy
	recorder metrics.Recorder
}

// NewSyncer creates a syncer rooted at baseDir. Retries are disabled until
// a policy is attached.
func NewSyncer(baseDir string) *Syncer {
	return &Syncer{baseDir: baseDir, recorder: metrics.NoopRecorder{}}
}

// WithPolicy attaches a retry policy (fluent helper).
func (s *Syncer) WithPolicy(p retry.Policy) *Syncer {
	s.policy = p
	return s
}

// SetRecorder attaches a metrics recorder and returns the syncer.
func (s *Syncer) SetRecorder(rec metrics.Recorder) *Syncer {
	if rec != nil {
		s.recorder = rec
	}
	return s
}

// SyncAll syncs every bundle in order, stopping at the first failure.
// The returned paths are the local checkout directories.
func (s *Syncer) SyncAll(bundles []config.Bundle) ([]string, error) {
	if len(bundles) == 0 {
		return nil, nil
	}
	slog.Info("syncing plugin bundles", logfields.Count(len(bundles)))

	paths := make([]string, 0, len(bundles))
	for _, bundle := range bundles {
		path, err := s.Sync(bundle)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Sync clones the bundle into its target directory, or pulls when a
// checkout already exists. Transient failures are retried per policy.
func (s *Syncer) Sync(bundle config.Bundle) (string, error) {
	start := time.Now()
	path, err := s.withRetry(bundle, s.syncOnce)
	s.recorder.ObserveBundleSyncDuration(bundle.Name, time.Since(start), err == nil)
	return path, err
}

func (s *Syncer) withRetry(bundle config.Bundle, fn func(config.Bundle) (string, error)) (string, error) {
	if s.policy.MaxRetries <= 0 {
		return fn(bundle)
	}
	var lastErr error
	for attempt := 0; attempt <= s.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying bundle sync", logfields.Bundle(bundle.Name), slog.Int("attempt", attempt))
		}
		path, err := fn(bundle)
		if err == nil {
			return path, nil
		}
		lastErr = err
		if isPermanent(err) {
			return "", err
		}
		if attempt == s.policy.MaxRetries {
			break
		}
		time.Sleep(s.policy.Delay(attempt + 1))
	}
	return "", fmt.Errorf("bundle %s sync failed after retries: %w", bundle.Name, lastErr)
}

func (s *Syncer) syncOnce(bundle config.Bundle) (string, error) {
	path := s.targetPath(bundle)
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return s.pull(path, bundle)
	}
	return s.clone(path, bundle)
}

func (s *Syncer) clone(path string, bundle config.Bundle) (string, error) {
	slog.Debug("cloning bundle",
		logfields.Bundle(bundle.Name),
		logfields.URL(bundle.URL),
		slog.String("branch", bundle.Branch),
		logfields.Path(path))

	// A leftover non-repo directory would make the clone fail.
	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("failed to remove existing directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create bundle directory: %w", err)
	}

	opts := &git.CloneOptions{URL: bundle.URL}
	if bundle.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + bundle.Branch)
		opts.SingleBranch = true
	}
	auth, err := authMethod(bundle.Auth)
	if err != nil {
		return "", fmt.Errorf("failed to set up authentication: %w", err)
	}
	opts.Auth = auth

	repo, err := git.PlainClone(path, false, opts)
	if err != nil {
		return "", classifySyncError("clone", bundle.URL, err)
	}

	if ref, headErr := repo.Head(); headErr == nil {
		slog.Info("bundle cloned",
			logfields.Bundle(bundle.Name),
			logfields.URL(bundle.URL),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(path))
	} else {
		slog.Info("bundle cloned",
			logfields.Bundle(bundle.Name),
			logfields.URL(bundle.URL),
			logfields.Path(path))
	}
	return path, nil
}

func (s *Syncer) pull(path string, bundle config.Bundle) (string, error) {
	slog.Debug("updating bundle", logfields.Bundle(bundle.Name), logfields.Path(path))

	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("failed to open bundle checkout: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	opts := &git.PullOptions{RemoteName: "origin"}
	auth, err := authMethod(bundle.Auth)
	if err != nil {
		return "", fmt.Errorf("failed to set up authentication: %w", err)
	}
	opts.Auth = auth

	err = worktree.Pull(opts)
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		slog.Info("bundle already up to date", logfields.Bundle(bundle.Name))
	case err != nil:
		return "", classifySyncError("pull", bundle.URL, err)
	default:
		if ref, headErr := repo.Head(); headErr == nil {
			slog.Info("bundle updated",
				logfields.Bundle(bundle.Name),
				slog.String("commit", ref.Hash().String()[:8]))
		}
	}
	return path, nil
}

// targetPath resolves the bundle checkout directory. Absolute targets are
// used as given; relative targets resolve against the base directory.
func (s *Syncer) targetPath(bundle config.Bundle) string {
	target := bundle.Target
	if target == "" {
		target = filepath.Join("bundles", bundle.Name)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(s.baseDir, target)
}
