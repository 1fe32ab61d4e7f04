package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prusikmapping/GeositeFramework/internal/logfields"
	"github.com/prusikmapping/GeositeFramework/internal/metrics"
)

// StageName identifies one unit of work in the assembly pipeline.
type StageName string

const (
	StageLoadRegion     StageName = "load_region"
	StageDiscover       StageName = "discover_plugins"
	StageOrder          StageName = "order_plugins"
	StageMergeConfig    StageName = "merge_config"
	StageExtractLinks   StageName = "extract_links"
	StageResolveColors  StageName = "resolve_colors"
	StageRenderAbout    StageName = "render_about"
	StageAssembleResult StageName = "assemble_result"
)

// Stage is a discrete unit of work operating on shared assembly state.
type Stage func(ctx context.Context, st *assemblyState) error

// StageErrorKind classifies why a stage ended the assembly.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError carries the failing stage and the underlying cause. The cause
// stays reachable through errors.As, so callers can still match the typed
// domain errors.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type namedStage struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording per-stage timing and metrics,
// and stops on the first failure. There is no partial result: the caller
// discards the state when an error comes back.
func (a *Assembler) runStages(ctx context.Context, st *assemblyState, stages []namedStage) error {
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			se := &StageError{Kind: StageErrorCanceled, Stage: stage.name, Err: ctx.Err()}
			st.report.StageResults[stage.name] = string(se.Kind)
			a.recorder.IncStageResult(string(stage.name), metrics.ResultCanceled)
			return se
		default:
		}

		started := time.Now()
		err := stage.fn(ctx, st)
		elapsed := time.Since(started)
		st.report.StageDurations[stage.name] = elapsed
		a.recorder.ObserveStageDuration(string(stage.name), elapsed)

		if err != nil {
			kind := StageErrorFatal
			label := metrics.ResultFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind = StageErrorCanceled
				label = metrics.ResultCanceled
			}
			se := &StageError{Kind: kind, Stage: stage.name, Err: err}
			st.report.StageResults[stage.name] = string(se.Kind)
			a.recorder.IncStageResult(string(stage.name), label)
			st.log.Error("assembly stage failed",
				logfields.Stage(string(stage.name)),
				logfields.DurationMS(elapsed.Seconds()*1000),
				logfields.Error(err))
			return se
		}

		st.report.StageResults[stage.name] = "success"
		a.recorder.IncStageResult(string(stage.name), metrics.ResultSuccess)
		st.log.Debug("assembly stage completed",
			logfields.Stage(string(stage.name)),
			logfields.DurationMS(elapsed.Seconds()*1000))
	}
	return nil
}
