package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pacpan/internal/config"
	"git.home.luguber.info/inful/pacpan/internal/engine"
	"git.home.luguber.info/inful/pacpan/internal/engine/enginetest"
	perrors "git.home.luguber.info/inful/pacpan/internal/errors"
	"git.home.luguber.info/inful/pacpan/internal/metrics"
	"git.home.luguber.info/inful/pacpan/internal/report"
)

const testMap = `{"version":3,"sources":["src/index.js"],"sourcesContent":["globalThis.answer = 42;\n"],"names":[],"mappings":"AAAA"}`

func bundleWithMap(_ int, w io.Writer) error {
	_, err := io.WriteString(w, "(function () {\n  var answer = 42;\n  globalThis.answer = answer;\n})();\n"+
		"//# sourceMappingURL=data:application/json;base64,"+base64.StdEncoding.EncodeToString([]byte(testMap))+"\n")
	return err
}

func testConfig(t *testing.T) *config.BuildConfig {
	t.Helper()
	dir := t.TempDir()
	return &config.BuildConfig{
		Dir:       dir,
		Bundle:    filepath.Join(dir, "bundle", "2.1.0"),
		Entry:     filepath.Join(dir, "src", "index.js"),
		Expose:    "@acme/widgets",
		Version:   "2.1.0",
		Requires:  []string{"lodash"},
		Externals: []string{"react"},
	}
}

func TestRunWritesArtifactSet(t *testing.T) {
	cfg := testConfig(t)
	factory := enginetest.NewFactory(bundleWithMap)
	var out bytes.Buffer

	res, err := New(cfg, factory.New).WithReporter(report.New(&out, "@acme/widgets")).Run(context.Background())
	require.NoError(t, err)

	dir := cfg.Bundle
	assert.Equal(t, dir, res.Dir)
	assert.Equal(t, []string{
		"acmewidgets-2.1.0.js",
		"acmewidgets-2.1.0.js.map",
		"acmewidgets-2.1.0.min.js",
		"acmewidgets-2.1.0.min.js.map",
		"index.html",
		"panels.json",
	}, res.Artifacts)
	for _, name := range res.Artifacts {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, res.Listing, name)
	}

	js, err := os.ReadFile(filepath.Join(dir, "acmewidgets-2.1.0.js"))
	require.NoError(t, err)
	assert.NotContains(t, string(js), "data:application/json")
	assert.True(t, strings.HasSuffix(string(js), "//# sourceMappingURL=acmewidgets-2.1.0.js.map\n"))

	sm, err := os.ReadFile(filepath.Join(dir, "acmewidgets-2.1.0.js.map"))
	require.NoError(t, err)
	assert.JSONEq(t, testMap, string(sm))

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<script src=/acmewidgets-2.1.0.min.js></script>\n<script src=https://cdn.uxtemple.com/panels.js></script>\n")

	manifest, err := os.ReadFile(filepath.Join(dir, "panels.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "acmewidgets-2.1.0.min.js")
	assert.NotContains(t, string(manifest), `"app.js"`)

	assert.Contains(t, out.String(), `[@acme/widgets] PacPan is getting your Panels app "@acme/widgets" ready to go :)`)
	assert.Contains(t, out.String(), "Your bundle is at "+dir)

	engines := factory.Engines()
	require.Len(t, engines, 1)
	entry, expose, requires, externals := engines[0].Configured()
	assert.Equal(t, cfg.Entry, entry)
	assert.Equal(t, "@acme/widgets", expose)
	assert.Equal(t, []string{"lodash"}, requires)
	assert.Equal(t, []string{"react"}, externals)
	assert.True(t, engines[0].Settings.SourceMaps)
	assert.False(t, engines[0].Settings.Watch)
	assert.True(t, engines[0].Closed())
}

func TestRunBuildErrorIsFatal(t *testing.T) {
	cfg := testConfig(t)
	factory := enginetest.NewFactory(func(int, io.Writer) error {
		return &engine.BuildError{Kind: engine.KindSyntax, Message: "Unexpected token", Stack: "SyntaxError: Unexpected token"}
	})

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	_, err := New(cfg, factory.New).WithRecorder(rec).Run(context.Background())
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryBuild))

	var be *engine.BuildError
	assert.True(t, errors.As(err, &be))
	expected := `
# HELP pacpan_build_outcomes_total Bundle build outcomes by mode and final status
# TYPE pacpan_build_outcomes_total counter
pacpan_build_outcomes_total{mode="bundle",outcome="failed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pacpan_build_outcomes_total"))

	// No post-step ran.
	assert.NoFileExists(t, filepath.Join(cfg.Bundle, "index.html"))
}

func TestRunMissingSourceMapIsFatal(t *testing.T) {
	cfg := testConfig(t)
	factory := enginetest.NewFactory(func(_ int, w io.Writer) error {
		_, err := io.WriteString(w, "var a = 1;\n")
		return err
	})

	_, err := New(cfg, factory.New).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no inline source map")
}

func TestRunEngineFactoryError(t *testing.T) {
	cfg := testConfig(t)
	factory := enginetest.NewFactory(nil)
	factory.Err = errors.New("no engine")

	_, err := New(cfg, factory.New).Run(context.Background())
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryBuild))
}

func TestRunUnwritableOutputDir(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(cfg.Dir, "bundle")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))

	_, err := New(cfg, enginetest.NewFactory(bundleWithMap).New).Run(context.Background())
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryFileSystem))
}

func TestRunRecordsDuration(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, enginetest.NewFactory(bundleWithMap).New)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	p.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 1500 * time.Millisecond)
	}

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, res.Duration)
}
