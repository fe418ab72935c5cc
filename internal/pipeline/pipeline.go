// Package pipeline implements the one-shot production build: bundle once,
// split the inline source map into its own file, then minify and render the
// HTML shell and manifest next to the bundle.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pacpan/internal/artifact"
	"git.home.luguber.info/inful/pacpan/internal/config"
	"git.home.luguber.info/inful/pacpan/internal/engine"
	perrors "git.home.luguber.info/inful/pacpan/internal/errors"
	"git.home.luguber.info/inful/pacpan/internal/logfields"
	"git.home.luguber.info/inful/pacpan/internal/metrics"
	"git.home.luguber.info/inful/pacpan/internal/minify"
	"git.home.luguber.info/inful/pacpan/internal/report"
	"git.home.luguber.info/inful/pacpan/internal/sourcemap"
	"git.home.luguber.info/inful/pacpan/internal/templates"
)

// Result describes a finished build.
type Result struct {
	// Dir is the output directory.
	Dir string
	// Artifacts are the six files this build produced, in artifact order.
	Artifacts []string
	// Listing is the full content of Dir after the build.
	Listing   []string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// BuildPipeline runs the one-shot bundle. Every failure is fatal for the run;
// nothing is retried and partially written files are left in place.
type BuildPipeline struct {
	cfg      *config.BuildConfig
	factory  engine.Factory
	recorder metrics.Recorder
	reporter *report.Reporter
	now      func() time.Time
}

// New creates a BuildPipeline for cfg using engines from factory.
func New(cfg *config.BuildConfig, factory engine.Factory) *BuildPipeline {
	return &BuildPipeline{
		cfg:      cfg,
		factory:  factory,
		recorder: metrics.NoopRecorder{},
		reporter: report.Discard(),
		now:      time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (p *BuildPipeline) WithRecorder(r metrics.Recorder) *BuildPipeline {
	if r != nil {
		p.recorder = r
	}
	return p
}

// WithReporter sets where operator-facing progress goes.
func (p *BuildPipeline) WithReporter(r *report.Reporter) *BuildPipeline {
	if r != nil {
		p.reporter = r
	}
	return p
}

// Run performs the build.
func (p *BuildPipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.run(ctx)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	p.recorder.IncBuildOutcome(metrics.ModeBundle, outcome)
	if res != nil {
		p.recorder.ObserveBuildDuration(metrics.ModeBundle, res.Duration)
	}
	return res, err
}

func (p *BuildPipeline) run(ctx context.Context) (*Result, error) {
	cfg := p.cfg
	start := p.now()
	p.reporter.Infof("PacPan is getting your Panels app %q ready to go :)", cfg.Expose)

	set := artifact.NewSet(cfg.Bundle, cfg.Expose, cfg.Version)
	slog.Info("Bundle started", logfields.Expose(cfg.Expose), logfields.Entry(cfg.Entry), logfields.OutputDir(set.Dir))

	if err := os.MkdirAll(set.Dir, 0o755); err != nil {
		return nil, perrors.WriteFailed(set.Dir, err)
	}

	if err := p.bundle(ctx, set); err != nil {
		return nil, err
	}

	// The post-steps only read the finished bundle and write distinct files.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.minify(gctx, set) })
	g.Go(func() error {
		return writeFile(set.Path(set.HTML()), []byte(templates.RenderHTML(set.MinJS())))
	})
	g.Go(func() error {
		return writeFile(set.Path(set.Manifest()), []byte(templates.RenderManifest(set.MinJS())))
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	end := p.now()
	listing, err := listDir(set.Dir)
	if err != nil {
		return nil, perrors.BuildFailed("list", err)
	}
	res := &Result{
		Dir:       set.Dir,
		Artifacts: set.Files(),
		Listing:   listing,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}

	p.reporter.Infof("pacpan-bundle: %.3fs", res.Duration.Seconds())
	p.reporter.Infof("PacPan just finished. Your bundle is at %s:", set.Dir)
	p.reporter.Listing(set.Dir, listing)
	slog.Info("Bundle finished", logfields.OutputDir(set.Dir), logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res, nil
}

// bundle runs the engine once and streams its output through the source map
// extractor into {base}.js and {base}.js.map. It returns once both files are
// closed.
func (p *BuildPipeline) bundle(ctx context.Context, set artifact.Set) (err error) {
	cfg := p.cfg
	eng, err := p.factory(engine.Settings{
		SourceMaps:      true,
		TransformConfig: cfg.TransformConfig,
		Outfile:         set.Path(set.JS()),
		WorkDir:         cfg.Dir,
	})
	if err != nil {
		return perrors.BuildFailed("engine", err)
	}
	engine.Configure(eng, cfg)
	logsDone := make(chan struct{})
	go func() {
		defer close(logsDone)
		p.forwardLogs(eng.Subscribe())
	}()
	defer func() {
		_ = eng.Close()
		<-logsDone
	}()

	jsPath, mapPath := set.Path(set.JS()), set.Path(set.JSMap())
	jsFile, err := os.Create(jsPath)
	if err != nil {
		return perrors.WriteFailed(jsPath, err)
	}
	defer closeInto(jsFile, jsPath, &err)
	mapFile, err := os.Create(mapPath)
	if err != nil {
		return perrors.WriteFailed(mapPath, err)
	}
	defer closeInto(mapFile, mapPath, &err)

	x := sourcemap.NewExtractor(jsFile, mapFile, set.JSMap())
	if err := eng.Build(ctx, x); err != nil {
		return perrors.BuildFailed("bundle", err)
	}
	if err := x.Close(); err != nil {
		return perrors.BuildFailed("sourcemap", err)
	}
	return nil
}

func (p *BuildPipeline) forwardLogs(events <-chan engine.Event) {
	for ev := range events {
		switch e := ev.(type) {
		case engine.Logged:
			p.reporter.Info(e.Message)
		case engine.Failed:
			p.reporter.Error(e.Err.Error())
		}
	}
}

func (p *BuildPipeline) minify(ctx context.Context, set artifact.Set) error {
	out, err := minify.Minify(ctx, set.Path(set.JS()), set.MinJS())
	if err != nil {
		return perrors.BuildFailed("minify", err)
	}
	if err := writeFile(set.Path(set.MinJS()), out.Code); err != nil {
		return err
	}
	return writeFile(set.Path(set.MinJSMap()), out.Map)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return perrors.WriteFailed(path, err)
	}
	return nil
}

func closeInto(f *os.File, path string, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = perrors.WriteFailed(path, cerr)
	}
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(dir), err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
