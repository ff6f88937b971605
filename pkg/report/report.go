// Package report prints compiler diagnostics for people.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gobasic/pkg/compiler"
)

// Printer writes styled reports to one writer. Colors are dropped
// automatically when the writer is not a terminal.
type Printer struct {
	w io.Writer

	name     lipgloss.Style
	kinds    map[compiler.ErrorKind]lipgloss.Style
	errStyle lipgloss.Style
	okStyle  lipgloss.Style
	dim      lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:    w,
		name: r.NewStyle().Bold(true),
		kinds: map[compiler.ErrorKind]lipgloss.Style{
			compiler.LabelError:       r.NewStyle().Foreground(lipgloss.Color("214")),
			compiler.TypeError:        r.NewStyle().Foreground(lipgloss.Color("196")),
			compiler.ControlFlowError: r.NewStyle().Foreground(lipgloss.Color("171")),
		},
		errStyle: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		okStyle:  r.NewStyle().Foreground(lipgloss.Color("42")),
		dim:      r.NewStyle().Faint(true),
	}
}

// Diagnostics prints one line per diagnostic followed by a summary line.
// Nothing but the summary is printed for a clean program.
func (p *Printer) Diagnostics(file string, ds compiler.Diagnostics) {
	for _, d := range ds {
		fmt.Fprintf(p.w, "%s: %s %s\n",
			p.name.Render(file),
			p.kinds[d.Kind].Render(d.Kind.String()+":"),
			d.Msg)
	}
	fmt.Fprintln(p.w, p.Summary(file, ds))
}

// Summary describes ds in one line, such as
// "prog.bas: 3 problems (2 label, 1 type)".
func (p *Printer) Summary(file string, ds compiler.Diagnostics) string {
	if len(ds) == 0 {
		return p.name.Render(file) + ": " + p.okStyle.Render("ok")
	}
	var parts []string
	for _, k := range []compiler.ErrorKind{compiler.LabelError, compiler.TypeError, compiler.ControlFlowError} {
		if n := ds.Count(k); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.TrimSuffix(k.String(), " error")))
		}
	}
	noun := "problems"
	if len(ds) == 1 {
		noun = "problem"
	}
	return fmt.Sprintf("%s: %s %s",
		p.name.Render(file),
		p.errStyle.Render(fmt.Sprintf("%d %s", len(ds), noun)),
		p.dim.Render("("+strings.Join(parts, ", ")+")"))
}

// Error prints a failure that stopped compilation or execution.
func (p *Printer) Error(file string, err error) {
	fmt.Fprintf(p.w, "%s: %s\n", p.name.Render(file), p.errStyle.Render(err.Error()))
}
