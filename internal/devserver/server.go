// Package devserver serves a Panels app during development: the playground
// shell, a manifest pointing at the live bundle, the temporary bundle the
// watch session keeps current, static assets and metrics.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pacpan/internal/config"
	"git.home.luguber.info/inful/pacpan/internal/logfields"
	"git.home.luguber.info/inful/pacpan/internal/metrics"
	"git.home.luguber.info/inful/pacpan/internal/templates"
)

const shutdownTimeout = 5 * time.Second

// Server is the development HTTP server.
type Server struct {
	cfg     *config.BuildConfig
	handler http.Handler
	srv     *http.Server
	ln      net.Listener
	done    chan struct{}
}

// New builds the server. reg may be nil, in which case /metrics is not served.
func New(cfg *config.BuildConfig, reg *prom.Registry) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", servePlayground)
	mux.HandleFunc("GET /panels.json", serveManifest)
	mux.HandleFunc("GET /"+templates.AppPlaceholder, func(w http.ResponseWriter, r *http.Request) {
		serveBundle(w, r, cfg.Tmp)
	})
	mux.HandleFunc("GET /panels.js", func(w http.ResponseWriter, r *http.Request) {
		serveRuntime(w, r, filepath.Join(cfg.Assets, "panels.js"))
	})
	if reg != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(reg))
	}
	mux.Handle("/", http.FileServer(http.Dir(cfg.Assets)))

	return &Server{cfg: cfg, handler: chain(slog.Default())(mux)}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Start binds host:port and serves until ctx is canceled, then shuts down
// gracefully. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dev server listen %s: %w", addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Dev server stopped", logfields.Addr(addr), logfields.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Dev server started", logfields.Addr(ln.Addr().String()))
	return nil
}

// Addr is the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Wait blocks until the server stopped serving.
func (s *Server) Wait() {
	if s.done != nil {
		<-s.done
	}
}

func servePlayground(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(templates.Playground()))
}

func serveManifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(templates.Manifest()))
}

// serveBundle streams the temporary bundle; it is missing until the first
// successful build.
func serveBundle(w http.ResponseWriter, _ *http.Request, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "bundle not built yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// serveRuntime serves a local copy of the host runtime when the assets ship
// one and redirects to the CDN otherwise.
func serveRuntime(w http.ResponseWriter, r *http.Request, local string) {
	if st, err := os.Stat(local); err == nil && !st.IsDir() {
		http.ServeFile(w, r, local)
		return
	}
	http.Redirect(w, r, templates.RuntimeCDN, http.StatusFound)
}
