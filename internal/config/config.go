// Package config resolves the build configuration of a Panels app: defaults
// derived from the project's package.json, overridden by an optional
// .panels.yaml file, with environment variables loaded from .env files.
package config

import (
	"time"
)

// File names looked up in the project directory.
const (
	PackageFile = "package.json"
	ConfigFile  = ".panels.yaml"
	HostPackage = "panels"
)

// BuildConfig is the fully resolved, read-only configuration handed to the
// bundle pipeline and the watch session.
type BuildConfig struct {
	// Project directory holding package.json; set by Load.
	Dir string `yaml:"-"`
	// Static assets path to put your images, files, etc.
	Assets string `yaml:"assets"`
	// Directory the one-shot bundle writes its artifact set into.
	Bundle string `yaml:"bundle"`
	// The app's entry module.
	Entry string `yaml:"entry"`
	// Dependencies the host runtime already ships; excluded from the bundle.
	Externals []string `yaml:"externals"`
	// Public name the host requires the app by, generally its domain.
	Expose string `yaml:"expose"`
	// Dev server bind address.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Own dependencies bundled and made requirable.
	Requires []string `yaml:"requires"`
	// Code-transform configuration (a tsconfig.json) applied to the whole bundle.
	TransformConfig string `yaml:"transform_config"`
	// Temporary bundle written on every watch-mode rebuild.
	Tmp     string `yaml:"tmp"`
	Version string `yaml:"version"`
	// Tag prefixed to operator-facing output.
	Domain string `yaml:"domain"`

	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig tunes the continuous rebuild loop.
type WatchConfig struct {
	RestartDelay    time.Duration      `yaml:"restart_delay"`
	RestartMaxDelay time.Duration      `yaml:"restart_max_delay"`
	RestartBackoff  RestartBackoffMode `yaml:"restart_backoff"`
	Debounce        time.Duration      `yaml:"debounce"`
}

// Default watch tuning.
const (
	DefaultRestartDelay = time.Second
	DefaultDebounce     = 100 * time.Millisecond
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 80
	DefaultVersion      = "dev"
)

// EntryTempPath is the entry-adjacent scratch file removed on session cleanup.
func (c *BuildConfig) EntryTempPath() string {
	return c.Entry + ".tmp"
}
