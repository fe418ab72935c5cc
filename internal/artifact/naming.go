// Package artifact names the files a one-shot bundle produces.
package artifact

import (
	"path/filepath"
	"strings"
)

// Fixed artifact file names next to the versioned bundle files.
const (
	HTMLFile     = "index.html"
	ManifestFile = "panels.json"
)

var stripper = strings.NewReplacer("@", "", "/", "")

// BaseName derives the stable base file name for a build of exposed at version.
// Path-significant characters are dropped from the exposed name.
func BaseName(exposed, version string) string {
	return stripper.Replace(exposed) + "-" + version
}

// Set is the group of sibling files written by a single one-shot build.
type Set struct {
	Dir  string
	Base string
}

// NewSet names the artifacts of exposed@version inside dir.
func NewSet(dir, exposed, version string) Set {
	return Set{Dir: dir, Base: BaseName(exposed, version)}
}

func (s Set) JS() string              { return s.Base + ".js" }
func (s Set) JSMap() string           { return s.JS() + ".map" }
func (s Set) MinJS() string           { return s.Base + ".min.js" }
func (s Set) MinJSMap() string        { return s.MinJS() + ".map" }
func (s Set) HTML() string            { return HTMLFile }
func (s Set) Manifest() string        { return ManifestFile }
func (s Set) Path(name string) string { return filepath.Join(s.Dir, name) }

// Files lists every file name of the set in write order.
func (s Set) Files() []string {
	return []string{s.JS(), s.JSMap(), s.MinJS(), s.MinJSMap(), s.HTML(), s.Manifest()}
}
