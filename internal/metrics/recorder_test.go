package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	stageDurations    map[string]int
	stageResults      map[string]map[ResultLabel]int
	assemblyDurations map[string]int
	assemblyOutcomes  map[OutcomeLabel]int
	plugins           map[string]int
	bundleSyncs       int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations:    map[string]int{},
		stageResults:      map[string]map[ResultLabel]int{},
		assemblyDurations: map[string]int{},
		assemblyOutcomes:  map[OutcomeLabel]int{},
		plugins:           map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}

func (t *testRecorder) ObserveAssemblyDuration(site string, _ time.Duration) {
	t.assemblyDurations[site]++
}

func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}

func (t *testRecorder) IncAssemblyOutcome(outcome OutcomeLabel) {
	t.assemblyOutcomes[outcome]++
}

func (t *testRecorder) SetPluginsDiscovered(site string, n int) {
	t.plugins[site] = n
}

func (t *testRecorder) ObserveBundleSyncDuration(string, time.Duration, bool) {
	t.bundleSyncs++
}

func TestRecorderImplementations(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)
	var _ Recorder = newTestRecorder()
}

func TestTestRecorderCounts(t *testing.T) {
	rec := newTestRecorder()
	rec.ObserveStageDuration("discover_plugins", time.Millisecond)
	rec.ObserveStageDuration("discover_plugins", time.Millisecond)
	rec.IncStageResult("discover_plugins", ResultSuccess)
	rec.IncAssemblyOutcome(OutcomeSuccess)
	rec.SetPluginsDiscovered("gulfmex", 7)

	if rec.stageDurations["discover_plugins"] != 2 {
		t.Fatalf("stage durations = %d, want 2", rec.stageDurations["discover_plugins"])
	}
	if rec.stageResults["discover_plugins"][ResultSuccess] != 1 {
		t.Fatalf("stage results = %v", rec.stageResults)
	}
	if rec.assemblyOutcomes[OutcomeSuccess] != 1 {
		t.Fatalf("outcomes = %v", rec.assemblyOutcomes)
	}
	if rec.plugins["gulfmex"] != 7 {
		t.Fatalf("plugins gauge = %v", rec.plugins)
	}
}

func TestNoopRecorderIsSafe(t *testing.T) {
	var rec NoopRecorder
	rec.ObserveStageDuration("x", time.Second)
	rec.ObserveAssemblyDuration("s", time.Second)
	rec.IncStageResult("x", ResultFatal)
	rec.IncAssemblyOutcome(OutcomeFailed)
	rec.SetPluginsDiscovered("s", 3)
	rec.ObserveBundleSyncDuration("b", time.Second, true)
}
