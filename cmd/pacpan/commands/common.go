package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pacpan/internal/config"
	"git.home.luguber.info/inful/pacpan/internal/report"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives operator-facing output; stdout when nil.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Dir     string           `short:"C" name:"dir" help:"Project directory containing package.json" default:"." type:"existingdir"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Bundle BundleCmd `cmd:"" help:"Build the production bundle, its source maps, index.html and panels.json"`
	Watch  WatchCmd  `cmd:"" default:"withargs" help:"Rebuild on every change and serve the app (default)"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig resolves and validates the project configuration in dir.
func loadConfig(dir string) (*config.BuildConfig, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded", "dir", cfg.Dir, "expose", cfg.Expose, "version", cfg.Version,
		"requires", cfg.Requires, "externals", cfg.Externals)
	return cfg, nil
}

func (g *Global) reporter(cfg *config.BuildConfig) *report.Reporter {
	out := g.Out
	if out == nil {
		out = os.Stdout
	}
	return report.New(out, cfg.Domain)
}
