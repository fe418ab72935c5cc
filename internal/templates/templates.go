// Package templates holds the HTML shell and manifest shipped with every
// bundle and the rewrites that point them at a concrete bundle file.
package templates

import (
	_ "embed"
	"strings"
)

// RuntimeCDN is where production shells load the host runtime from.
const RuntimeCDN = "https://cdn.uxtemple.com/panels.js"

// AppPlaceholder is the manifest token replaced by the bundle file name.
const AppPlaceholder = "app.js"

const runtimeTag = "<script src=/panels.js></script>\n"

//go:embed assets/playground.html
var playground string

//go:embed assets/panels.json
var manifest string

// Playground returns the unmodified HTML shell used by the dev server.
func Playground() string { return playground }

// Manifest returns the unmodified manifest used by the dev server.
func Manifest() string { return manifest }

// RenderHTML points the shell at the given bundle file and loads the host
// runtime from the CDN instead of the dev server.
func RenderHTML(bundleFile string) string {
	return strings.Replace(playground, runtimeTag,
		"<script src=/"+bundleFile+"></script>\n<script src="+RuntimeCDN+"></script>\n", 1)
}

// RenderManifest replaces the placeholder bundle name in the manifest.
func RenderManifest(bundleFile string) string {
	return strings.Replace(manifest, AppPlaceholder, bundleFile, 1)
}
