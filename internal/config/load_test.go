package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "git.home.luguber.info/inful/pacpan/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PackageFile), `{
  "name": "@acme/widgets",
  "version": "2.1.0",
  "main": "src/index.js",
  "dependencies": {"panels": "^1.0.0", "lodash": "^4.0.0", "date-fns": "^2.0.0"}
}`)
	writeFile(t, filepath.Join(dir, "src", "index.js"), "export default 1;\n")
	writeFile(t, filepath.Join(dir, "node_modules", HostPackage, PackageFile), `{
  "name": "panels",
  "dependencies": {"react": "^15.0.0", "react-dom": "^15.0.0", "panels": "*"}
}`)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := newProject(t)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, "public"), cfg.Assets)
	assert.Equal(t, filepath.Join(dir, "bundle", "2.1.0"), cfg.Bundle)
	assert.Equal(t, filepath.Join(dir, "src", "index.js"), cfg.Entry)
	assert.Equal(t, "@acme/widgets", cfg.Expose)
	assert.Equal(t, "@acme/widgets", cfg.Domain)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, []string{"panels", "react", "react-dom"}, cfg.Externals)
	// "panels" is both a dependency and external: externals win.
	assert.Equal(t, []string{"date-fns", "lodash"}, cfg.Requires)
	assert.Equal(t, filepath.Join(dir, "panels.app.tmp.js"), cfg.Tmp)
	assert.Equal(t, "2.1.0", cfg.Version)
	assert.Equal(t, time.Second, cfg.Watch.RestartDelay)
	assert.Equal(t, RestartBackoffFixed, cfg.Watch.RestartBackoff)
	assert.Empty(t, cfg.TransformConfig)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingVersionUsesDev(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PackageFile), `{"name": "app"}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, cfg.Version)
	assert.Equal(t, filepath.Join(dir, "index.js"), cfg.Entry)
	assert.Equal(t, filepath.Join(dir, "bundle", "dev"), cfg.Bundle)
	assert.Empty(t, cfg.Externals)
}

func TestLoadMergesConfigFile(t *testing.T) {
	dir := newProject(t)
	writeFile(t, filepath.Join(dir, "tsconfig.custom.json"), "{}")
	t.Setenv("PANELS_TEST_PORT_HOST", "127.0.0.1")
	writeFile(t, filepath.Join(dir, ConfigFile), `
host: ${PANELS_TEST_PORT_HOST}
port: 5000
bundle: dist
expose: widgets.acme.com
transform_config: tsconfig.custom.json
externals: [react]
watch:
  restart_delay: 250ms
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, filepath.Join(dir, "dist"), cfg.Bundle)
	assert.Equal(t, "widgets.acme.com", cfg.Expose)
	assert.Equal(t, "widgets.acme.com", cfg.Domain)
	assert.Equal(t, filepath.Join(dir, "tsconfig.custom.json"), cfg.TransformConfig)
	assert.Equal(t, []string{"react"}, cfg.Externals)
	assert.Equal(t, []string{"date-fns", "lodash", "panels"}, cfg.Requires)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.RestartDelay)
	// Untouched nested keys keep their defaults.
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	// Untouched top-level keys keep their defaults.
	assert.Equal(t, filepath.Join(dir, "src", "index.js"), cfg.Entry)
}

func TestLoadEnvFile(t *testing.T) {
	dir := newProject(t)
	writeFile(t, filepath.Join(dir, ".env"), "PANELS_TEST_EXPOSE_FROM_ENV=from-env\n")
	writeFile(t, filepath.Join(dir, ConfigFile), "expose: ${PANELS_TEST_EXPOSE_FROM_ENV}\n")
	t.Cleanup(func() { _ = os.Unsetenv("PANELS_TEST_EXPOSE_FROM_ENV") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Expose)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing package.json", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.True(t, perrors.IsCategory(err, perrors.CategoryConfig))
	})

	t.Run("malformed package.json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, PackageFile), "{not json")
		_, err := Load(dir)
		require.Error(t, err)
		assert.True(t, perrors.IsCategory(err, perrors.CategoryConfig))
	})

	t.Run("malformed config file", func(t *testing.T) {
		dir := newProject(t)
		writeFile(t, filepath.Join(dir, ConfigFile), "port: [1, 2\n")
		_, err := Load(dir)
		require.Error(t, err)
		assert.True(t, perrors.IsCategory(err, perrors.CategoryConfig))
	})
}
