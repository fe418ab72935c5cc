package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pacpan/internal/engine"
	"git.home.luguber.info/inful/pacpan/internal/pipeline"
)

// BundleCmd runs the one-shot production build.
type BundleCmd struct{}

func (b *BundleCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Dir)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = pipeline.New(cfg, engine.NewFactory()).
		WithReporter(g.reporter(cfg)).
		Run(ctx)
	return err
}
