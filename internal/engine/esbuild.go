package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/pacpan/internal/util/sets"
)

const stdinName = "pacpan-entry.js"

// ESBuild is an Engine backed by an incremental esbuild context.
type ESBuild struct {
	settings Settings

	mu        sync.Mutex // serializes builds and configuration
	entry     string
	expose    string
	requires  []string
	externals []string
	bctx      api.BuildContext
	watcher   *sourceWatcher
	closed    bool

	events *queue
}

// NewESBuild returns an unconfigured esbuild engine.
func NewESBuild(s Settings) *ESBuild {
	return &ESBuild{settings: s, events: newQueue()}
}

// NewFactory returns a Factory producing esbuild engines.
func NewFactory() Factory {
	return func(s Settings) (Engine, error) {
		return NewESBuild(s), nil
	}
}

func (e *ESBuild) ConfigureEntry(entry, expose string, requires []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entry = entry
	e.expose = expose
	e.requires = slices.Clone(requires)
	e.resetContext()
}

func (e *ESBuild) ConfigureExternals(names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.externals = slices.Clone(names)
	e.resetContext()
}

// resetContext drops the incremental context after a configuration change.
func (e *ESBuild) resetContext() {
	if e.bctx != nil {
		e.bctx.Dispose()
		e.bctx = nil
	}
}

func (e *ESBuild) Subscribe() <-chan Event { return e.events.out }

// Build runs a (re)build and writes the bundle to w.
func (e *ESBuild) Build(ctx context.Context, w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.entry == "" {
		return ErrNotConfigured
	}
	if e.bctx == nil {
		bctx, cerr := api.Context(e.buildOptions())
		if cerr != nil {
			return fromMessages(cerr.Errors, stdinName)
		}
		e.bctx = bctx
	}

	start := time.Now()
	done := make(chan api.BuildResult, 1)
	go func() { done <- e.bctx.Rebuild() }()

	var res api.BuildResult
	select {
	case <-ctx.Done():
		e.bctx.Cancel()
		<-done
		return ctx.Err()
	case res = <-done:
	}

	for _, warn := range res.Warnings {
		e.events.push(Logged{Message: "warning: " + formatMessage(warn)})
	}
	if err := e.track(res.Metafile); err != nil {
		e.events.push(Logged{Message: "cannot watch sources: " + err.Error()})
	}
	if len(res.Errors) > 0 {
		return fromMessages(res.Errors, stdinName)
	}

	code, err := bundleOutput(res.OutputFiles)
	if err != nil {
		return err
	}
	n, err := w.Write(code)
	if err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	e.events.push(Logged{Message: fmt.Sprintf("%d bytes written (%.2f seconds)", n, time.Since(start).Seconds())})
	return nil
}

func (e *ESBuild) buildOptions() api.BuildOptions {
	workDir := e.settings.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(e.entry)
	}
	outfile := e.settings.Outfile
	if outfile == "" {
		outfile = filepath.Join(workDir, "bundle.js")
	}

	// Externals win over requires.
	requires, _ := sets.Partition(e.requires, sets.New(e.externals...))

	nodeEnv := `"production"`
	if e.settings.Watch {
		nodeEnv = `"development"`
	}

	opts := api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   registryEntry(entryImport(workDir, e.entry), e.expose, requires),
			ResolveDir: workDir,
			Sourcefile: stdinName,
			Loader:     api.LoaderJS,
		},
		AbsWorkingDir: workDir,
		Outfile:       outfile,
		Bundle:        true,
		Write:         false,
		Metafile:      true,
		Format:        api.FormatIIFE,
		Platform:      api.PlatformBrowser,
		Target:        api.ES2015,
		External:      slices.Clone(e.externals),
		Tsconfig:      e.settings.TransformConfig,
		Define:        map[string]string{"process.env.NODE_ENV": nodeEnv},
		LogLevel:      api.LogLevelSilent,
		Sourcemap:     api.SourceMapNone,
	}
	if e.settings.SourceMaps {
		opts.Sourcemap = api.SourceMapInline
		opts.SourcesContent = api.SourcesContentInclude
	}
	return opts
}

// bundleOutput picks the JavaScript output among the build's output files.
func bundleOutput(files []api.OutputFile) ([]byte, error) {
	for _, f := range files {
		if strings.HasSuffix(f.Path, ".js") {
			return f.Contents, nil
		}
	}
	return nil, fmt.Errorf("esbuild produced no javascript output")
}

type metafile struct {
	Inputs map[string]json.RawMessage `json:"inputs"`
}

// track starts (in watch mode) or updates the source watcher with the
// inputs esbuild read during the last build.
func (e *ESBuild) track(meta string) error {
	if !e.settings.Watch || meta == "" {
		return nil
	}
	var m metafile
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return fmt.Errorf("parse metafile: %w", err)
	}
	workDir := e.settings.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(e.entry)
	}
	files := make([]string, 0, len(m.Inputs)+1)
	files = append(files, e.entry)
	for in := range m.Inputs {
		// Skip stdin, namespaced virtual modules and installed packages.
		if strings.HasPrefix(in, "<") || strings.Contains(in, "node_modules") || (strings.Contains(in, ":") && !filepath.IsAbs(in)) {
			continue
		}
		if !filepath.IsAbs(in) {
			in = filepath.Join(workDir, in)
		}
		files = append(files, in)
	}

	if e.watcher == nil {
		w, err := newSourceWatcher(e.settings.Debounce, e.settings.Ignore, e.events.push)
		if err != nil {
			return err
		}
		e.watcher = w
	}
	e.watcher.track(files)
	return nil
}

// Close stops the watcher, disposes the esbuild context and closes the event stream.
func (e *ESBuild) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.events.close()

	var err error
	if e.watcher != nil {
		err = e.watcher.close()
		e.watcher = nil
	}
	e.resetContext()
	return err
}
