// Package report writes operator-facing progress and diagnostics. Every line
// is tagged with the project's domain; colors are dropped on writers that are
// not terminals.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Reporter writes domain-prefixed lines. It is safe for concurrent use.
type Reporter struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string

	errStyle    lipgloss.Style
	moduleStyle lipgloss.Style
	dimStyle    lipgloss.Style
}

// New returns a Reporter writing to w with lines tagged [domain].
func New(w io.Writer, domain string) *Reporter {
	r := lipgloss.NewRenderer(w)
	dim := r.NewStyle().Foreground(lipgloss.Color("#888888"))
	return &Reporter{
		w:           w,
		prefix:      dim.Render("[" + domain + "]"),
		errStyle:    r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		moduleStyle: r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
		dimStyle:    dim,
	}
}

// Discard returns a Reporter that writes nothing.
func Discard() *Reporter { return New(io.Discard, "") }

// Info writes a plain message.
func (r *Reporter) Info(msg string) { r.lines(msg) }

// Infof formats and writes a plain message.
func (r *Reporter) Infof(format string, args ...any) { r.lines(fmt.Sprintf(format, args...)) }

// Error writes msg in the error color.
func (r *Reporter) Error(msg string) { r.lines(r.errStyle.Render(msg)) }

// Diagnostic writes "<kind> at <module>" followed by detail, used for build
// errors that point at a source location.
func (r *Reporter) Diagnostic(kind, module, detail string) {
	head := r.errStyle.Render(kind)
	if module != "" {
		head += " at " + r.moduleStyle.Render(module)
	}
	if detail == "" {
		r.lines(head)
		return
	}
	r.lines(head + "\n" + detail)
}

// ImportError explains an import that could not be resolved.
func (r *Reporter) ImportError(specifier, importer string) {
	r.lines(
		r.errStyle.Render("ImportError") + " at " + r.moduleStyle.Render(importer) + "\n" +
			"Does " + r.moduleStyle.Render(specifier) + " exist? Check that import statement.",
	)
}

// Listing writes the files produced into dir.
func (r *Reporter) Listing(dir string, files []string) {
	var b strings.Builder
	b.WriteString(r.dimStyle.Render(dir))
	for _, f := range files {
		b.WriteString("\n  " + f)
	}
	r.lines(b.String())
}

// lines writes each line of msg with the domain prefix.
func (r *Reporter) lines(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		fmt.Fprintf(r.w, "%s %s\n", r.prefix, line)
	}
}
