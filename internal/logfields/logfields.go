package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySite       = "site"
	KeyRegion     = "region"
	KeyPlugin     = "plugin"
	KeyBundle     = "bundle"
	KeyStage      = "stage"
	KeyJobID      = "job_id"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Site(name string) slog.Attr      { return slog.String(KeySite, name) }
func Region(path string) slog.Attr    { return slog.String(KeyRegion, path) }
func Plugin(folder string) slog.Attr  { return slog.String(KeyPlugin, folder) }
func Bundle(name string) slog.Attr    { return slog.String(KeyBundle, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
