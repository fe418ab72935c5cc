// Package metrics provides build and watch-session metrics for pacpan.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never need nil checks:
//
//	p := pipeline.New(cfg, factory).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The watch command registers a PrometheusRecorder on a private registry and
// the dev server exposes it at /metrics through HTTPHandler.
package metrics
