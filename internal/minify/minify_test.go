package minify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinify(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app-1.0.0.js")
	code := "(function () {\n  var longVariableName = 40;\n  globalThis.answer = longVariableName + 2;\n})();\n"
	require.NoError(t, os.WriteFile(src, []byte(code), 0o644))

	res, err := Minify(context.Background(), src, "app-1.0.0.min.js")
	require.NoError(t, err)

	assert.Less(t, len(res.Code), len(code))
	assert.NotContains(t, string(res.Code), "longVariableName")
	assert.Contains(t, string(res.Code), "//# sourceMappingURL=app-1.0.0.min.js.map")
	assert.Contains(t, string(res.Map), `"mappings"`)
}

func TestMinifySyntaxError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.js")
	require.NoError(t, os.WriteFile(src, []byte("var = ;"), 0o644))

	_, err := Minify(context.Background(), src, "broken.min.js")
	assert.Error(t, err)
}

func TestMinifyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Minify(ctx, "unused.js", "unused.min.js")
	assert.ErrorIs(t, err, context.Canceled)
}
