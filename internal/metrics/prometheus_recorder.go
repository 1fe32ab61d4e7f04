package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	stageDuration    *prom.HistogramVec
	assemblyDuration *prom.HistogramVec
	stageResults     *prom.CounterVec
	assemblyOutcome  *prom.CounterVec
	pluginsGauge     *prom.GaugeVec
	bundleSync       *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics
// (idempotent per recorder).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "geosite",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual assembly stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.assemblyDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "geosite",
			Name:      "assembly_duration_seconds",
			Help:      "Total site assembly duration",
			Buckets:   prom.DefBuckets,
		}, []string{"site"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "geosite",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.assemblyOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "geosite",
			Name:      "assembly_outcomes_total",
			Help:      "Assembly outcomes by final status",
		}, []string{"outcome"})
		pr.pluginsGauge = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "geosite",
			Name:      "plugins_discovered",
			Help:      "Plugins discovered during the last assembly of a site",
		}, []string{"site"})
		pr.bundleSync = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "geosite",
			Name:      "bundle_sync_duration_seconds",
			Help:      "Duration of plugin bundle sync operations",
			Buckets:   prom.DefBuckets,
		}, []string{"bundle", "result"})
		reg.MustRegister(pr.stageDuration, pr.assemblyDuration, pr.stageResults, pr.assemblyOutcome, pr.pluginsGauge, pr.bundleSync)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveAssemblyDuration(site string, d time.Duration) {
	if p == nil || p.assemblyDuration == nil {
		return
	}
	p.assemblyDuration.WithLabelValues(site).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncAssemblyOutcome(outcome OutcomeLabel) {
	if p == nil || p.assemblyOutcome == nil {
		return
	}
	p.assemblyOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetPluginsDiscovered(site string, n int) {
	if p == nil || p.pluginsGauge == nil {
		return
	}
	p.pluginsGauge.WithLabelValues(site).Set(float64(n))
}

func (p *PrometheusRecorder) ObserveBundleSyncDuration(bundle string, d time.Duration, success bool) {
	if p == nil || p.bundleSync == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.bundleSync.WithLabelValues(bundle, res).Observe(d.Seconds())
}
