//go:build !prometheus

package main

import (
	"context"

	"github.com/prusikmapping/GeositeFramework/internal/metrics"
)

// resolveRecorder returns nil when the prometheus build tag is not set; the
// assembler and syncer fall back to their no-op recorders.
func resolveRecorder() metrics.Recorder { return nil }

// serveMetrics is a no-op without the prometheus build tag.
func serveMetrics(context.Context, string) {}
