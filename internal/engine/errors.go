package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Error kinds reported by BuildError.
const (
	KindBuild   = "BuildError"
	KindSyntax  = "SyntaxError"
	KindResolve = "ResolveError"
)

// BuildError is a bundling failure rendered for humans.
type BuildError struct {
	Kind      string
	ModuleID  string // file the error points at, if known
	CodeFrame string // source excerpt around the error, if known
	Message   string
	Stack     string // full rendered text; identical failures render identically
}

func (e *BuildError) Error() string { return e.Kind + ": " + e.Message }

// Signature is the stable identity used to de-duplicate repeated failures.
func (e *BuildError) Signature() string { return e.Stack }

const resolvePrefix = "Could not resolve "

// requiresOrigin names where modules imported by the synthetic entry come from.
const requiresOrigin = "requires in package.json"

// fromMessages converts esbuild error messages into a BuildError. The first
// message shapes the error; the rest are appended to the stack.
func fromMessages(msgs []api.Message, entryName string) *BuildError {
	if len(msgs) == 0 {
		return &BuildError{Kind: KindBuild, Message: "unknown build failure", Stack: "Error: unknown build failure"}
	}
	first := msgs[0]
	be := &BuildError{Kind: classify(first.Text), Message: first.Text}

	file := ""
	if first.Location != nil {
		file = first.Location.File
		if file == "<stdin>" {
			file = entryName
		}
		be.ModuleID = file
	}

	switch {
	case be.Kind == KindResolve:
		importer := file
		if importer == "" || importer == entryName {
			importer = requiresOrigin
		}
		specifier := strings.Trim(strings.TrimPrefix(first.Text, resolvePrefix), `"`)
		be.Stack = fmt.Sprintf("Error: Could not resolve %s from %s while bundling", specifier, importer)
	case first.Location != nil:
		be.CodeFrame = codeFrame(first.Location)
		be.Stack = fmt.Sprintf("%s: %s\n    at %s:%d:%d", be.Kind, first.Text, file, first.Location.Line, first.Location.Column+1)
	default:
		be.Stack = "Error: " + first.Text
	}

	for _, m := range msgs[1:] {
		be.Stack += "\n" + formatMessage(m)
	}
	return be
}

func classify(text string) string {
	switch {
	case strings.HasPrefix(text, resolvePrefix):
		return KindResolve
	case strings.HasPrefix(text, "Expected"), strings.HasPrefix(text, "Unexpected"),
		strings.HasPrefix(text, "Unterminated"), strings.HasPrefix(text, "Syntax"):
		return KindSyntax
	default:
		return KindBuild
	}
}

// codeFrame renders the offending line with a marker under the error column.
func codeFrame(loc *api.Location) string {
	num := strconv.Itoa(loc.Line)
	gutter := strings.Repeat(" ", len(num))
	marker := "^"
	if loc.Length > 1 {
		marker += strings.Repeat("~", loc.Length-1)
	}
	col := loc.Column
	if col > len(loc.LineText) {
		col = len(loc.LineText)
	}
	return fmt.Sprintf("  %s | %s\n  %s | %s%s", num, loc.LineText, gutter, strings.Repeat(" ", col), marker)
}

// formatMessage renders a message on one line.
func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column+1, m.Text)
}
