// Package printer writes human-facing status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/tkt/internal/core/styles"
)

type ctxKey struct{}

// Printer writes styled status messages. Machine-readable output does not go
// through a Printer.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Success prints a check mark, a title, and an optional muted detail.
func (p *Printer) Success(title, detail string) {
	line := styles.SuccessStyle.Render(styles.IconCheck) + " " + styles.ValueStyle.Render(title)
	if detail != "" {
		line += " " + styles.MutedStyle.Render(detail)
	}
	_, _ = fmt.Fprintln(p.w, line)
}

// Successf prints a formatted success line.
func (p *Printer) Successf(format string, args ...any) {
	p.Success(fmt.Sprintf(format, args...), "")
}

// Infof prints an informational line.
func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.MutedStyle.Render(styles.IconBullet)+" "+fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.WarningStyle.Render(styles.IconWarn+" "+fmt.Sprintf(format, args...)))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.ErrorStyle.Render(styles.IconCross+" "+fmt.Sprintf(format, args...)))
}

// Hint prints a follow-up command or instruction.
func (p *Printer) Hint(text string) {
	_, _ = fmt.Fprintln(p.w, "  "+styles.MutedStyle.Render(styles.IconArrow)+" "+styles.CommandStyle.Render(text))
}

// Field prints an aligned label/value pair.
func (p *Printer) Field(label, value string) {
	_, _ = fmt.Fprintln(p.w, "  "+styles.LabelStyle.Render(label)+styles.ValueStyle.Render(value))
}

// Header prints a bold section title.
func (p *Printer) Header(title string) {
	_, _ = fmt.Fprintln(p.w, styles.HeaderStyle.Render(title))
}

// Notes prints warnings followed by guidance hints.
func (p *Printer) Notes(warnings, guidance []string) {
	for _, w := range warnings {
		p.Warnf("%s", w)
	}
	for _, g := range guidance {
		p.Hint(g)
	}
}
