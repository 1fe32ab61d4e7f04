package fetch

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prusikmapping/GeositeFramework/internal/config"
	"github.com/prusikmapping/GeositeFramework/internal/metrics"
	"github.com/prusikmapping/GeositeFramework/internal/retry"
)

// bundleRemote is a local bare repository seeded through a working clone,
// standing in for a remote plugin bundle.
type bundleRemote struct {
	barePath string
	seedRepo *git.Repository
	seedPath string
}

func newBundleRemote(t *testing.T) *bundleRemote {
	t.Helper()
	tmp := t.TempDir()

	barePath := filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(barePath, true)
	require.NoError(t, err)

	seedPath := filepath.Join(tmp, "seed")
	seedRepo, err := git.PlainInit(seedPath, false)
	require.NoError(t, err)
	_, err = seedRepo.CreateRemote(&gitcfg.RemoteConfig{Name: "origin", URLs: []string{barePath}})
	require.NoError(t, err)

	return &bundleRemote{barePath: barePath, seedRepo: seedRepo, seedPath: seedPath}
}

// push commits the named file into the seed repo and pushes it to the bare
// remote.
func (b *bundleRemote) push(t *testing.T, name, content string) {
	t.Helper()
	wt, err := b.seedRepo.Worktree()
	require.NoError(t, err)

	full := filepath.Join(b.seedPath, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	require.NoError(t, b.seedRepo.Push(&git.PushOptions{RemoteName: "origin"}))
}

func (b *bundleRemote) bundle(name string) config.Bundle {
	return config.Bundle{Name: name, URL: b.barePath, Branch: "master", Target: filepath.Join("bundles", name)}
}

type syncObservation struct {
	bundle  string
	success bool
}

// captureRecorder records bundle sync observations; other hooks are inert.
type captureRecorder struct {
	metrics.NoopRecorder
	mu    sync.Mutex
	syncs []syncObservation
}

func (c *captureRecorder) ObserveBundleSyncDuration(bundle string, _ time.Duration, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncs = append(c.syncs, syncObservation{bundle: bundle, success: success})
}

func TestSyncClonesNewBundle(t *testing.T) {
	remote := newBundleRemote(t)
	remote.push(t, "plugins/tide_viewer/main.js", "define([], function () {});\n")

	base := t.TempDir()
	path, err := NewSyncer(base).Sync(remote.bundle("core"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "bundles", "core"), path)

	data, err := os.ReadFile(filepath.Join(path, "plugins", "tide_viewer", "main.js"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "define")
}

func TestSyncPullsExistingBundle(t *testing.T) {
	remote := newBundleRemote(t)
	remote.push(t, "plugins/tide_viewer/main.js", "a\n")

	base := t.TempDir()
	syncer := NewSyncer(base)
	bundle := remote.bundle("core")

	first, err := syncer.Sync(bundle)
	require.NoError(t, err)

	remote.push(t, "plugins/measure/main.js", "b\n")

	second, err := syncer.Sync(bundle)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.FileExists(t, filepath.Join(second, "plugins", "measure", "main.js"))

	// Already up to date is not an error.
	_, err = syncer.Sync(bundle)
	require.NoError(t, err)
}

func TestSyncReplacesNonRepoTarget(t *testing.T) {
	remote := newBundleRemote(t)
	remote.push(t, "plugins/tide_viewer/main.js", "a\n")

	base := t.TempDir()
	target := filepath.Join(base, "bundles", "core")
	require.NoError(t, os.MkdirAll(target, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(target, "junk.txt"), []byte("stale"), 0o600))

	path, err := NewSyncer(base).Sync(remote.bundle("core"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(path, "plugins", "tide_viewer", "main.js"))
	assert.NoFileExists(t, filepath.Join(path, "junk.txt"))
}

func TestSyncMissingRemote(t *testing.T) {
	base := t.TempDir()
	bundle := config.Bundle{
		Name:   "ghost",
		URL:    filepath.Join(t.TempDir(), "absent.git"),
		Branch: "master",
		Target: "bundles/ghost",
	}

	_, err := NewSyncer(base).Sync(bundle)
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "clone", notFound.Op)
}

func TestSyncAll(t *testing.T) {
	remote := newBundleRemote(t)
	remote.push(t, "plugins/tide_viewer/main.js", "a\n")

	base := t.TempDir()
	syncer := NewSyncer(base)

	paths, err := syncer.SyncAll([]config.Bundle{
		remote.bundle("core"),
		remote.bundle("extras"),
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(base, "bundles", "core"), paths[0])
	assert.Equal(t, filepath.Join(base, "bundles", "extras"), paths[1])

	paths, err = syncer.SyncAll(nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestSyncRecordsMetrics(t *testing.T) {
	remote := newBundleRemote(t)
	remote.push(t, "plugins/tide_viewer/main.js", "a\n")

	rec := &captureRecorder{}
	syncer := NewSyncer(t.TempDir()).SetRecorder(rec)

	_, err := syncer.Sync(remote.bundle("core"))
	require.NoError(t, err)

	_, err = syncer.Sync(config.Bundle{Name: "ghost", URL: filepath.Join(t.TempDir(), "absent.git"), Target: "bundles/ghost"})
	require.Error(t, err)

	require.Len(t, rec.syncs, 2)
	assert.Equal(t, syncObservation{bundle: "core", success: true}, rec.syncs[0])
	assert.Equal(t, syncObservation{bundle: "ghost", success: false}, rec.syncs[1])
}

func TestWithRetryRecoversTransientFailures(t *testing.T) {
	syncer := NewSyncer(t.TempDir()).
		WithPolicy(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, 5*time.Millisecond, 3))

	attempts := 0
	path, err := syncer.withRetry(config.Bundle{Name: "flaky"}, func(config.Bundle) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("temporary network failure")
		}
		return "/ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/ok", path)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	syncer := NewSyncer(t.TempDir()).
		WithPolicy(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, 5*time.Millisecond, 3))

	attempts := 0
	_, err := syncer.withRetry(config.Bundle{Name: "locked"}, func(config.Bundle) (string, error) {
		attempts++
		return "", &AuthError{Op: "clone", URL: "https://example.com/locked.git", Err: errors.New("authentication required")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestWithRetryExhaustion(t *testing.T) {
	syncer := NewSyncer(t.TempDir()).
		WithPolicy(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, 5*time.Millisecond, 2))

	attempts := 0
	_, err := syncer.withRetry(config.Bundle{Name: "flaky"}, func(config.Bundle) (string, error) {
		attempts++
		return "", errors.New("connection reset by peer")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorContains(t, err, "failed after retries")
	assert.ErrorContains(t, err, "connection reset")
}

func TestTargetPath(t *testing.T) {
	syncer := NewSyncer("/srv/geosite")

	tests := []struct {
		name   string
		bundle config.Bundle
		want   string
	}{
		{name: "default from name", bundle: config.Bundle{Name: "core"}, want: "/srv/geosite/bundles/core"},
		{name: "relative target", bundle: config.Bundle{Name: "core", Target: "vendor/plugins"}, want: "/srv/geosite/vendor/plugins"},
		{name: "absolute target", bundle: config.Bundle{Name: "core", Target: "/opt/bundles/core"}, want: "/opt/bundles/core"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, syncer.targetPath(tt.bundle))
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "auth typed", err: &AuthError{Op: "clone", URL: "u", Err: errors.New("x")}, want: true},
		{name: "not found typed", err: &NotFoundError{Op: "clone", URL: "u", Err: errors.New("x")}, want: true},
		{name: "permission denied", err: errors.New("permission denied (publickey)"), want: true},
		{name: "unsupported protocol", err: errors.New("unsupported protocol scheme gopher"), want: true},
		{name: "timeout", err: errors.New("i/o timeout talking to remote"), want: false},
		{name: "plain transient", err: errors.New("temporary network failure"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanent(tt.err))
		})
	}
}

func TestClassifySyncError(t *testing.T) {
	authWrapped := classifySyncError("clone", "https://example.com/r.git", errors.New("authentication required"))
	var authErr *AuthError
	require.ErrorAs(t, authWrapped, &authErr)
	assert.Equal(t, "https://example.com/r.git", authErr.URL)

	missing := classifySyncError("pull", "https://example.com/r.git", errors.New("repository not found"))
	var notFound *NotFoundError
	require.ErrorAs(t, missing, &notFound)

	other := classifySyncError("clone", "https://example.com/r.git", errors.New("worktree busy"))
	assert.ErrorContains(t, other, "failed to clone bundle")
}
