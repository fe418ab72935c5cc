package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// SessionStates lists every watch session state exported by the state gauge.
var SessionStates = []string{"starting", "running", "error", "restarting", "stopped"}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	buildDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	rebuilds      prom.Counter
	watchErrors   *prom.CounterVec
	restarts      prom.Counter
	sessionState  *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pacpan",
			Name:      "build_duration_seconds",
			Help:      "Duration of bundle builds by mode",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pacpan",
			Name:      "build_outcomes_total",
			Help:      "Bundle build outcomes by mode and final status",
		}, []string{"mode", "outcome"})
		pr.rebuilds = prom.NewCounter(prom.CounterOpts{
			Namespace: "pacpan",
			Name:      "watch_rebuilds_total",
			Help:      "Rebuilds triggered by source changes",
		})
		pr.watchErrors = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pacpan",
			Name:      "watch_errors_total",
			Help:      "Build errors seen by watch sessions, split by whether the diagnostic was suppressed",
		}, []string{"suppressed"})
		pr.restarts = prom.NewCounter(prom.CounterOpts{
			Namespace: "pacpan",
			Name:      "watch_restarts_total",
			Help:      "Bundle engine restarts after build errors",
		})
		pr.sessionState = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "pacpan",
			Name:      "watch_session_state",
			Help:      "Current watch session state (1 for the active state)",
		}, []string{"state"})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.rebuilds, pr.watchErrors, pr.restarts, pr.sessionState)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(mode string, d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(mode string, outcome OutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(mode, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncRebuild() {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.Inc()
}

func (p *PrometheusRecorder) IncWatchError(suppressed bool) {
	if p == nil || p.watchErrors == nil {
		return
	}
	label := "false"
	if suppressed {
		label = "true"
	}
	p.watchErrors.WithLabelValues(label).Inc()
}

func (p *PrometheusRecorder) IncRestart() {
	if p == nil || p.restarts == nil {
		return
	}
	p.restarts.Inc()
}

func (p *PrometheusRecorder) SetSessionState(state string) {
	if p == nil || p.sessionState == nil {
		return
	}
	for _, s := range SessionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.sessionState.WithLabelValues(s).Set(v)
	}
}
