// Package enginetest provides a scriptable in-memory engine for tests.
package enginetest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"git.home.luguber.info/inful/pacpan/internal/engine"
)

// BuildFunc produces the output of the n-th build (counted across all
// engines of a Factory, starting at 1).
type BuildFunc func(n int, w io.Writer) error

// Fake is an engine.Engine whose builds and events are driven by the test.
type Fake struct {
	Settings engine.Settings

	mu        sync.Mutex
	entry     string
	expose    string
	requires  []string
	externals []string
	builds    int
	closed    bool
	events    chan engine.Event
	build     func(w io.Writer) error
}

// Configured reports the entry configuration the engine received.
func (f *Fake) Configured() (entry, expose string, requires, externals []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entry, f.expose, f.requires, f.externals
}

func (f *Fake) ConfigureEntry(entry, expose string, requires []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entry, f.expose, f.requires = entry, expose, requires
}

func (f *Fake) ConfigureExternals(names []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.externals = names
}

func (f *Fake) Build(ctx context.Context, w io.Writer) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return engine.ErrClosed
	}
	f.builds++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.build(w)
}

func (f *Fake) Subscribe() <-chan engine.Event { return f.events }

// Emit publishes ev to the subscriber. It returns false once the engine is
// closed, which is how tests observe detached listeners.
func (f *Fake) Emit(ev engine.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.events <- ev
	return true
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Builds returns how many times Build was called on this engine.
func (f *Fake) Builds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds
}

// Factory creates Fakes and remembers them in creation order.
type Factory struct {
	// Build scripts every build; nil writes "bundle <n>".
	Build BuildFunc
	// Err, when set, is returned instead of a new engine.
	Err error

	mu      sync.Mutex
	engines []*Fake
	builds  int
}

// NewFactory returns a Factory using build for every build.
func NewFactory(build BuildFunc) *Factory {
	return &Factory{Build: build}
}

// New implements engine.Factory.
func (fa *Factory) New(s engine.Settings) (engine.Engine, error) {
	if fa.Err != nil {
		return nil, fa.Err
	}
	f := &Fake{Settings: s, events: make(chan engine.Event, 64)}
	f.build = func(w io.Writer) error {
		fa.mu.Lock()
		fa.builds++
		n := fa.builds
		script := fa.Build
		fa.mu.Unlock()
		if script == nil {
			_, err := fmt.Fprintf(w, "bundle %d", n)
			return err
		}
		return script(n, w)
	}
	fa.mu.Lock()
	fa.engines = append(fa.engines, f)
	fa.mu.Unlock()
	return f, nil
}

// Engines returns the engines created so far.
func (fa *Factory) Engines() []*Fake {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return append([]*Fake(nil), fa.engines...)
}
