package retry

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/pacpan/internal/config"
)

// Policy encapsulates the delay applied before a watch session restarts its
// bundle engine after a build error. It is immutable after construction.
type Policy struct {
	Mode    config.RestartBackoffMode // fixed|linear|exponential
	Initial time.Duration             // base delay
	Max     time.Duration             // cap for growth
}

// DefaultPolicy returns the restart policy used when nothing is configured:
// a constant one second delay with no growth.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RestartBackoffFixed, Initial: time.Second, Max: time.Second}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode config.RestartBackoffMode, initial, maxDuration time.Duration) Policy {
	p := DefaultPolicy()
	if initial > 0 {
		p.Initial = initial
		p.Max = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	if mode != "" {
		switch mode {
		case config.RestartBackoffFixed, config.RestartBackoffLinear, config.RestartBackoffExponential:
			p.Mode = mode
		default:
			// unknown -> keep default
		}
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromConfig derives the policy from the watch section of a build config.
func FromConfig(w config.WatchConfig) Policy {
	return NewPolicy(w.RestartBackoff, w.RestartDelay, w.RestartMaxDelay)
}

// Delay returns the delay for the given consecutive failure number (1-based).
func (p Policy) Delay(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RestartBackoffLinear:
		d := time.Duration(failures) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	case config.RestartBackoffExponential:
		shift := failures - 1
		if shift > 30 {
			return p.Max
		}
		d := p.Initial * (1 << shift)
		if d > p.Max {
			return p.Max
		}
		return d
	default: // fixed
		return p.Initial
	}
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	return nil
}
