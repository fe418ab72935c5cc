package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	perrors "git.home.luguber.info/inful/pacpan/internal/errors"
)

// packageJSON is the subset of package.json pacpan reads.
type packageJSON struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Main         string            `json:"main"`
	Dependencies map[string]string `json:"dependencies"`
}

// Load resolves the build configuration for the project rooted at dir.
func Load(dir string) (*BuildConfig, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, perrors.ConfigInvalid(dir, err)
	}

	loadEnvFiles(absDir)

	pkg, err := readPackage(filepath.Join(absDir, PackageFile))
	if err != nil {
		return nil, err
	}

	cfg := Defaults(absDir, pkg)
	if err := mergeFile(cfg, filepath.Join(absDir, ConfigFile), absDir); err != nil {
		return nil, err
	}
	if dropped := cfg.Normalize(); len(dropped) > 0 {
		slog.Warn("Dependencies declared both as requires and externals; treating them as externals",
			"modules", dropped)
	}
	return cfg, nil
}

// Defaults builds the configuration a project gets without a .panels.yaml.
func Defaults(dir string, pkg *packageJSON) *BuildConfig {
	version := pkg.Version
	if version == "" {
		version = DefaultVersion
	}
	main := pkg.Main
	if main == "" {
		main = "index.js"
	}

	cfg := &BuildConfig{
		Dir:       dir,
		Assets:    filepath.Join(dir, "public"),
		Bundle:    filepath.Join(dir, "bundle", version),
		Entry:     filepath.Join(dir, main),
		Externals: hostExternals(dir),
		Expose:    pkg.Name,
		Host:      DefaultHost,
		Port:      DefaultPort,
		Requires:  sortedKeys(pkg.Dependencies),
		Tmp:       filepath.Join(dir, "panels.app.tmp.js"),
		Version:   version,
		Watch: WatchConfig{
			RestartDelay:   DefaultRestartDelay,
			RestartBackoff: RestartBackoffFixed,
			Debounce:       DefaultDebounce,
		},
	}
	if tsconfig := filepath.Join(dir, "tsconfig.json"); fileExists(tsconfig) {
		cfg.TransformConfig = tsconfig
	}
	return cfg
}

func readPackage(path string) (*packageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.ConfigNotFound(path)
		}
		return nil, perrors.ConfigInvalid(path, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, perrors.ConfigInvalid(path, err)
	}
	return &pkg, nil
}

// hostExternals lists the dependencies the Panels runtime already bundles,
// read from the host package installed next to the app.
func hostExternals(dir string) []string {
	pkg, err := readPackage(filepath.Join(dir, "node_modules", HostPackage, PackageFile))
	if err != nil {
		return []string{}
	}
	return sortedKeys(pkg.Dependencies)
}

// mergeFile overlays .panels.yaml onto cfg. Only keys present in the file override.
func mergeFile(cfg *BuildConfig, path, dir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return perrors.ConfigInvalid(path, err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var raw BuildConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return perrors.ConfigInvalid(path, fmt.Errorf("unmarshal: %w", err))
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return perrors.ConfigInvalid(path, fmt.Errorf("unmarshal: %w", err))
	}

	// Paths given in the file are relative to the project directory.
	for _, p := range []struct {
		set bool
		dst *string
	}{
		{raw.Assets != "", &cfg.Assets},
		{raw.Bundle != "", &cfg.Bundle},
		{raw.Entry != "", &cfg.Entry},
		{raw.TransformConfig != "", &cfg.TransformConfig},
		{raw.Tmp != "", &cfg.Tmp},
	} {
		if p.set && !filepath.IsAbs(*p.dst) {
			*p.dst = filepath.Join(dir, *p.dst)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
