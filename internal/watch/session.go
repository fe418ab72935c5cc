// Package watch runs the development rebuild loop: it keeps the temporary
// bundle current while sources change and restarts the engine after every
// build error.
//
// The loop is a state machine driven from a single goroutine:
//
//	starting -> running -> (error -> restarting -> starting) | stopped
//
// Only cancellation of the session context leads to stopped.
package watch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/pacpan/internal/config"
	"git.home.luguber.info/inful/pacpan/internal/engine"
	"git.home.luguber.info/inful/pacpan/internal/logfields"
	"git.home.luguber.info/inful/pacpan/internal/metrics"
	"git.home.luguber.info/inful/pacpan/internal/report"
	"git.home.luguber.info/inful/pacpan/internal/retry"
)

// Session is a watch-mode rebuild loop.
type Session struct {
	cfg      *config.BuildConfig
	factory  engine.Factory
	clock    clockwork.Clock
	policy   retry.Policy
	recorder metrics.Recorder
	reporter *report.Reporter
	exit     func(int)

	mu       sync.Mutex
	state    State
	failures int
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the clock used for restart delays.
func WithClock(c clockwork.Clock) Option { return func(s *Session) { s.clock = c } }

// WithPolicy sets the restart delay policy.
func WithPolicy(p retry.Policy) Option { return func(s *Session) { s.policy = p } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(s *Session) { s.recorder = r } }

// WithReporter sets where diagnostics and engine logs go.
func WithReporter(r *report.Reporter) Option { return func(s *Session) { s.reporter = r } }

// WithExit replaces os.Exit in the cleanup handle.
func WithExit(exit func(int)) Option { return func(s *Session) { s.exit = exit } }

// New creates a Session. The restart policy defaults to the one configured
// in cfg.Watch.
func New(cfg *config.BuildConfig, factory engine.Factory, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg,
		factory:  factory,
		clock:    clockwork.NewRealClock(),
		policy:   retry.FromConfig(cfg.Watch),
		recorder: metrics.NoopRecorder{},
		reporter: report.Discard(),
		exit:     os.Exit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st *sessionState, state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.recorder.SetSessionState(state.String())
	slog.Debug("Watch session state", logfields.Session(st.id), logfields.Generation(st.generation), logfields.State(state.String()))
}

// Start runs the session in the background until ctx is canceled or the
// returned cleanup handle is used.
func (s *Session) Start(ctx context.Context) *Cleanup {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(ctx)
	}()
	return &Cleanup{
		cancel: cancel,
		done:   done,
		paths:  []string{s.cfg.Tmp, s.cfg.EntryTempPath()},
		exit:   s.exit,
	}
}

func (s *Session) run(ctx context.Context) {
	st := newSessionState()
	for {
		err := s.cycle(ctx, st)
		if ctx.Err() != nil {
			s.setState(st, StateStopped)
			return
		}

		s.setState(st, StateError)
		s.diagnose(st, err)

		s.failures++
		delay := s.policy.Delay(s.failures)
		s.setState(st, StateRestarting)
		slog.Debug("Restarting bundle engine", logfields.Session(st.id), logfields.Generation(st.generation), logfields.Delay(delay))

		timer := s.clock.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.setState(st, StateStopped)
			return
		case <-timer.Chan():
		}
		s.recorder.IncRestart()
		st = st.next()
	}
}

// cycle runs one engine instance from starting until it reports an error or
// ctx is canceled. The engine is always closed before cycle returns, which
// detaches its event stream.
func (s *Session) cycle(ctx context.Context, st *sessionState) error {
	s.setState(st, StateStarting)
	cfg := s.cfg
	eng, err := s.factory(engine.Settings{
		Watch:           true,
		SourceMaps:      true,
		TransformConfig: cfg.TransformConfig,
		Outfile:         cfg.Tmp,
		WorkDir:         cfg.Dir,
		Debounce:        cfg.Watch.Debounce,
		Ignore:          []string{cfg.Tmp, cfg.EntryTempPath()},
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			slog.Warn("Closing bundle engine failed", logfields.Session(st.id), logfields.Error(cerr))
		}
	}()
	engine.Configure(eng, cfg)
	events := eng.Subscribe()

	if err := s.rebuild(ctx, eng); err != nil {
		return err
	}
	s.setState(st, StateRunning)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errors.New("bundle engine closed its event stream")
			}
			switch e := ev.(type) {
			case engine.Updated:
				slog.Debug("Sources changed", logfields.Session(st.id), slog.Any("paths", e.Paths))
				if err := s.rebuild(ctx, eng); err != nil {
					return err
				}
				st.rebuilds++
				s.recorder.IncRebuild()
			case engine.Logged:
				s.reporter.Info(e.Message)
			case engine.Failed:
				return e.Err
			}
		}
	}
}

// rebuild runs one build and replaces the temporary bundle with its output.
func (s *Session) rebuild(ctx context.Context, eng engine.Engine) error {
	start := s.clock.Now()
	var buf bytes.Buffer
	err := eng.Build(ctx, &buf)
	if err == nil {
		err = os.WriteFile(s.cfg.Tmp, buf.Bytes(), 0o644)
	}

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	s.recorder.IncBuildOutcome(metrics.ModeWatch, outcome)
	s.recorder.ObserveBuildDuration(metrics.ModeWatch, s.clock.Since(start))
	if err == nil {
		s.failures = 0
	}
	return err
}

// diagnose shows err unless it renders exactly like the last error shown.
func (s *Session) diagnose(st *sessionState, err error) {
	sig := signature(err)
	suppressed := sig == st.lastErrorSignature
	s.recorder.IncWatchError(suppressed)
	if suppressed {
		slog.Debug("Repeated build error suppressed", logfields.Session(st.id), logfields.Generation(st.generation))
		return
	}
	st.lastErrorSignature = sig
	render(s.reporter, err)
}
