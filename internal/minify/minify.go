// Package minify produces the production bundle from the unminified one.
package minify

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Result holds the minified code and its linked source map.
type Result struct {
	Code []byte
	Map  []byte
}

// Minify compresses the bundle at src. The output is named outName (a file
// name, not a path) and links outName + ".map". The source map of src, when
// linked through its sourceMappingURL comment, is chained into the result so
// mappings point at the original sources.
func Minify(ctx context.Context, src, outName string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Dir(src)
	res := api.Build(api.BuildOptions{
		EntryPoints:       []string{src},
		AbsWorkingDir:     dir,
		Outfile:           filepath.Join(dir, outName),
		Write:             false,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Sourcemap:         api.SourceMapLinked,
		SourcesContent:    api.SourcesContentInclude,
		Target:            api.ES2015,
		LogLevel:          api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, m := range res.Errors {
			msgs = append(msgs, m.Text)
		}
		return nil, fmt.Errorf("minify %s: %s", filepath.Base(src), strings.Join(msgs, "; "))
	}

	out := &Result{}
	for _, f := range res.OutputFiles {
		switch {
		case strings.HasSuffix(f.Path, ".map"):
			out.Map = f.Contents
		case strings.HasSuffix(f.Path, ".js"):
			out.Code = f.Contents
		}
	}
	if out.Code == nil {
		return nil, fmt.Errorf("minify %s: no output", filepath.Base(src))
	}
	return out, nil
}
