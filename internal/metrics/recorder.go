package metrics

import "time"

// Mode labels distinguish one-shot bundles from watch-mode rebuilds.
const (
	ModeBundle = "bundle"
	ModeWatch  = "watch"
)

// OutcomeLabel enumerates build result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for bundle builds and watch sessions.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveBuildDuration(mode string, d time.Duration)
	IncBuildOutcome(mode string, outcome OutcomeLabel)
	IncRebuild()
	IncWatchError(suppressed bool)
	IncRestart()
	SetSessionState(state string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) IncRebuild()                                {}
func (NoopRecorder) IncWatchError(bool)                         {}
func (NoopRecorder) IncRestart()                                {}
func (NoopRecorder) SetSessionState(string)                     {}
