package site

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outcome is the final classification of one assembly run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures timing and classification of one assembly run.
type Report struct {
	// ID uniquely identifies the run.
	ID string

	// Site is the site name the run assembled.
	Site string

	Start time.Time
	End   time.Time

	Outcome Outcome

	// StageDurations records wall time per executed stage.
	StageDurations map[StageName]time.Duration

	// StageResults records the classification of every executed stage
	// (success, fatal, canceled).
	StageResults map[StageName]string

	// PluginCount is the number of plugins discovered.
	PluginCount int
}

func newReport(site string) *Report {
	return &Report{
		ID:             uuid.NewString(),
		Site:           site,
		Start:          time.Now(),
		StageDurations: map[StageName]time.Duration{},
		StageResults:   map[StageName]string{},
	}
}

func (r *Report) finish(outcome Outcome) {
	r.End = time.Now()
	r.Outcome = outcome
}

// Duration is the total wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// reportJSON is the serialized shape, with durations in milliseconds so the
// file stays readable.
type reportJSON struct {
	ID             string             `json:"id"`
	Site           string             `json:"site"`
	Start          time.Time          `json:"start"`
	End            time.Time          `json:"end"`
	DurationMS     float64            `json:"durationMs"`
	Outcome        Outcome            `json:"outcome"`
	StageDurations map[string]float64 `json:"stageDurationsMs"`
	StageResults   map[string]string  `json:"stageResults"`
	PluginCount    int                `json:"pluginCount"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		ID:             r.ID,
		Site:           r.Site,
		Start:          r.Start,
		End:            r.End,
		DurationMS:     r.Duration().Seconds() * 1000,
		Outcome:        r.Outcome,
		StageDurations: make(map[string]float64, len(r.StageDurations)),
		StageResults:   make(map[string]string, len(r.StageResults)),
		PluginCount:    r.PluginCount,
	}
	for name, d := range r.StageDurations {
		out.StageDurations[string(name)] = d.Seconds() * 1000
	}
	for name, res := range r.StageResults {
		out.StageResults[string(name)] = res
	}
	return json.Marshal(out)
}
