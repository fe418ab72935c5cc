// Package engine defines the bundle engine the build pipeline and the watch
// session drive, and provides an implementation backed by esbuild.
//
// An engine is configured once (entry, requirable modules, externals), then
// asked to build any number of times. Asynchronous notifications (source
// changes, log lines, out-of-band failures) arrive on the channel returned by
// Subscribe until the engine is closed.
package engine

import (
	"context"
	"errors"
	"io"
	"time"

	"git.home.luguber.info/inful/pacpan/internal/config"
)

// ErrClosed is returned by Build once the engine has been closed.
var ErrClosed = errors.New("engine closed")

// ErrNotConfigured is returned by Build before ConfigureEntry was called.
var ErrNotConfigured = errors.New("engine entry not configured")

// Engine is a bundling backend.
type Engine interface {
	// ConfigureEntry sets the single entry module, requirable under expose,
	// plus the own dependencies that must be bundled and made requirable.
	ConfigureEntry(entry, expose string, requires []string)
	// ConfigureExternals excludes names from the bundle output. A name that
	// is both required and external is treated as external.
	ConfigureExternals(names []string)
	// Build runs one full bundle pass and writes the bundle bytes to w.
	// Build errors are returned as *BuildError.
	Build(ctx context.Context, w io.Writer) error
	// Subscribe returns the event stream. It is closed by Close.
	Subscribe() <-chan Event
	// Close detaches all subscribers and releases the engine.
	Close() error
}

// Settings select how an engine instance bundles.
type Settings struct {
	// Watch enables continuous-rebuild mode: source changes are reported as
	// Updated events.
	Watch bool
	// SourceMaps appends an inline source map to the bundle.
	SourceMaps bool
	// TransformConfig is the code-transform configuration (tsconfig.json).
	TransformConfig string
	// Outfile is where the bundle will end up; source map paths are relative to it.
	Outfile string
	// WorkDir resolves relative imports and bare module names. Defaults to
	// the entry's directory.
	WorkDir string
	// Debounce coalesces bursts of source changes into one Updated event.
	Debounce time.Duration
	// Ignore lists paths whose changes are never reported (the engine's own outputs).
	Ignore []string
}

// Factory creates a fresh engine instance. Watch sessions call it again on
// every restart; an engine is never reused after Close.
type Factory func(Settings) (Engine, error)

// Configure applies the entry, requirable modules and externals of cfg.
func Configure(e Engine, cfg *config.BuildConfig) {
	e.ConfigureEntry(cfg.Entry, cfg.Expose, cfg.Requires)
	e.ConfigureExternals(cfg.Externals)
}
