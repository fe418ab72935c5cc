package artifact

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseName(t *testing.T) {
	cases := []struct {
		exposed, version, want string
	}{
		{"@acme/widgets", "2.1.0", "acmewidgets-2.1.0"},
		{"widgets.acme.com", "1.0.0", "widgets.acme.com-1.0.0"},
		{"@scope/a/b", "dev", "scopeab-dev"},
		{"plain", "0.0.1-beta.1", "plain-0.0.1-beta.1"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BaseName(c.exposed, c.version), "%s@%s", c.exposed, c.version)
	}
}

func TestBaseNameIsStable(t *testing.T) {
	assert.Equal(t, BaseName("@acme/widgets", "2.1.0"), BaseName("@acme/widgets", "2.1.0"))
}

func TestSetFiles(t *testing.T) {
	s := NewSet("/out", "@acme/widgets", "2.1.0")

	assert.Equal(t, []string{
		"acmewidgets-2.1.0.js",
		"acmewidgets-2.1.0.js.map",
		"acmewidgets-2.1.0.min.js",
		"acmewidgets-2.1.0.min.js.map",
		"index.html",
		"panels.json",
	}, s.Files())
	assert.Equal(t, filepath.Join("/out", "acmewidgets-2.1.0.min.js"), s.Path(s.MinJS()))
}
