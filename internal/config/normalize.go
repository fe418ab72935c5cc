package config

import "git.home.luguber.info/inful/pacpan/internal/util/sets"

// Normalize fills zero-valued fields with defaults and removes names that are
// both required and external. Externals take precedence; the names dropped
// from Requires are returned so callers can warn about them.
func (c *BuildConfig) Normalize() []string {
	if c.Domain == "" {
		c.Domain = c.Expose
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Watch.RestartDelay <= 0 {
		c.Watch.RestartDelay = DefaultRestartDelay
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if mode := NormalizeRestartBackoff(string(c.Watch.RestartBackoff)); mode != "" {
		c.Watch.RestartBackoff = mode
	} else {
		c.Watch.RestartBackoff = RestartBackoffFixed
	}

	c.Externals = sets.Unique(c.Externals)
	requires, dropped := sets.Partition(sets.Unique(c.Requires), sets.New(c.Externals...))
	c.Requires = requires
	return dropped
}
