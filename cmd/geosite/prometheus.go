//go:build prometheus

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/prusikmapping/GeositeFramework/internal/metrics"
)

var assemblyRegistry = prom.NewRegistry()

// resolveRecorder returns a Prometheus-backed metrics recorder.
func resolveRecorder() metrics.Recorder {
	return metrics.NewPrometheusRecorder(assemblyRegistry)
}

// serveMetrics exposes the assembly metrics registry over HTTP until ctx is
// canceled. An empty address disables the endpoint.
func serveMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(assemblyRegistry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop metrics server", "error", err)
		}
	}()

	slog.Info("Serving Prometheus metrics", "addr", addr, "path", "/metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Metrics server failed", "error", err)
	}
}
