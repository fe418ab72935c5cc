package config

import "strings"

// RestartBackoffMode enumerates supported delay strategies between watch restarts.
type RestartBackoffMode string

const (
	RestartBackoffFixed       RestartBackoffMode = "fixed"
	RestartBackoffLinear      RestartBackoffMode = "linear"
	RestartBackoffExponential RestartBackoffMode = "exponential"
)

// NormalizeRestartBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRestartBackoff(raw string) RestartBackoffMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RestartBackoffFixed):
		return RestartBackoffFixed
	case string(RestartBackoffLinear):
		return RestartBackoffLinear
	case string(RestartBackoffExponential):
		return RestartBackoffExponential
	default:
		return ""
	}
}
