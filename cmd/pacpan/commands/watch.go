package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pacpan/internal/devserver"
	"git.home.luguber.info/inful/pacpan/internal/engine"
	perrors "git.home.luguber.info/inful/pacpan/internal/errors"
	"git.home.luguber.info/inful/pacpan/internal/metrics"
	"git.home.luguber.info/inful/pacpan/internal/watch"
)

// WatchCmd keeps the temporary bundle current and serves the app until interrupted.
type WatchCmd struct {
	Args     []string `arg:"" optional:"" hidden:"" help:"Ignored; any invocation other than bundle watches."`
	NoServer bool     `name:"no-server" help:"Only rebuild; do not start the dev server."`

	exit func(int)
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Dir)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prom.NewRegistry()
	rep := g.reporter(cfg)
	opts := []watch.Option{
		watch.WithRecorder(metrics.NewPrometheusRecorder(reg)),
		watch.WithReporter(rep),
	}
	if w.exit != nil {
		opts = append(opts, watch.WithExit(w.exit))
	}
	session := watch.New(cfg, engine.NewFactory(), opts...)

	var srv *devserver.Server
	if !w.NoServer {
		srv = devserver.New(cfg, reg)
		if err := srv.Start(ctx); err != nil {
			return perrors.Wrap(err, perrors.CategoryRuntime, perrors.SeverityFatal, "dev server failed to start")
		}
		rep.Infof("Serving your Panels app at http://%s", srv.Addr())
	}

	cleanup := session.Start(ctx)
	<-ctx.Done()
	slog.Info("Shutdown signal received, cleaning up")
	if srv != nil {
		srv.Wait()
	}
	cleanup.Exit()
	return nil
}
