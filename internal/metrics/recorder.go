package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel enumerates final assembly outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for assembly and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the zero value so injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveAssemblyDuration(site string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncAssemblyOutcome(outcome OutcomeLabel)
	SetPluginsDiscovered(site string, n int)
	ObserveBundleSyncDuration(bundle string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)            {}
func (NoopRecorder) ObserveAssemblyDuration(string, time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                    {}
func (NoopRecorder) IncAssemblyOutcome(OutcomeLabel)                       {}
func (NoopRecorder) SetPluginsDiscovered(string, int)                      {}
func (NoopRecorder) ObserveBundleSyncDuration(string, time.Duration, bool) {}
