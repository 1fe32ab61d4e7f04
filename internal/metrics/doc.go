// Package metrics provides observability hooks for site assembly.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks and costs nothing
// unless a real implementation is wired in:
//
//	assembler := site.New(validator)
//	assembler.SetRecorder(metrics.NewPrometheusRecorder(registry))
//
// PrometheusRecorder is the only real implementation. Its HTTP exposition
// handler lives behind the "prometheus" build tag so the default build stays
// free of any HTTP surface.
package metrics
