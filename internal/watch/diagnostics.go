package watch

import (
	"errors"
	"regexp"

	"git.home.luguber.info/inful/pacpan/internal/engine"
	"git.home.luguber.info/inful/pacpan/internal/report"
)

var unresolvedImport = regexp.MustCompile(`Error: Could not resolve (.+?) from (.+?) while`)

// signature identifies an error for de-duplication: its full stack text.
func signature(err error) string {
	var be *engine.BuildError
	if errors.As(err, &be) {
		return be.Signature()
	}
	return err.Error()
}

// render writes the most helpful shape of err: the code frame when the
// error points at source, a missing-module hint for unresolved imports,
// the raw stack otherwise.
func render(r *report.Reporter, err error) {
	var be *engine.BuildError
	if errors.As(err, &be) && be.CodeFrame != "" {
		r.Diagnostic(be.Kind, be.ModuleID, be.CodeFrame)
		return
	}
	stack := signature(err)
	if m := unresolvedImport.FindStringSubmatch(stack); m != nil {
		r.ImportError(m[1], m[2])
		return
	}
	r.Error(stack)
}
