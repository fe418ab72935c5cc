package config

import (
	"os"

	perrors "git.home.luguber.info/inful/pacpan/internal/errors"
)

// Validate reports configuration errors that must stop the process before
// either pipeline starts.
func (c *BuildConfig) Validate() error {
	if c.Expose == "" {
		return perrors.ConfigRequired("expose")
	}
	if c.Version == "" {
		return perrors.ConfigRequired("version")
	}
	if c.Entry == "" {
		return perrors.ConfigRequired("entry")
	}
	st, err := os.Stat(c.Entry)
	if err != nil || st.IsDir() {
		return perrors.EntryNotFound(c.Entry)
	}
	if c.Bundle == "" {
		return perrors.ConfigRequired("bundle")
	}
	if c.Tmp == "" {
		return perrors.ConfigRequired("tmp")
	}
	if c.TransformConfig != "" {
		if _, err := os.Stat(c.TransformConfig); err != nil {
			return perrors.ValidationFailed("transform_config", "file does not exist: "+c.TransformConfig)
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return perrors.ValidationFailed("port", "must be between 0 and 65535")
	}
	return nil
}
