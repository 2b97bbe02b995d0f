package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Format is the output format of a report
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Printer writes diagnostics to an output stream
type Printer struct {
	Format  Format
	NoColor bool
}

// Print writes the diagnostics followed by a summary line (text format only)
func (p *Printer) Print(w io.Writer, diagnostics Diagnostics, files int) error {
	if p.Format == FormatJSON {
		text, err := diagnostics.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err
	}
	for _, item := range diagnostics {
		if _, err := fmt.Fprintln(w, p.line(item)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, p.summary(diagnostics, files))
	return err
}

func (p *Printer) line(d *Diagnostic) string {
	var severityColor *color.Color
	switch d.Severity {
	case SeverityError:
		severityColor = color.New(color.FgRed, color.Bold)
	case SeverityWarning:
		severityColor = color.New(color.FgYellow, color.Bold)
	default:
		severityColor = color.New(color.FgCyan)
	}
	location := color.New(color.Bold)
	code := color.New(color.FgHiBlack)
	if p.NoColor {
		severityColor.DisableColor()
		location.DisableColor()
		code.DisableColor()
	}

	var b strings.Builder
	location.Fprintf(&b, "%s:%d:", d.Path, d.Line)
	b.WriteString(" ")
	severityColor.Fprintf(&b, "%s:", d.Severity)
	b.WriteString(" ")
	b.WriteString(d.Message)
	if d.Code != "" && d.Severity != SeverityNote {
		b.WriteString("  ")
		code.Fprintf(&b, "[%s]", d.Code)
	}
	return b.String()
}

func (p *Printer) summary(diagnostics Diagnostics, files int) string {
	errCount, _, _ := diagnostics.Count()
	sourceFiles := plural(files, "source file")
	if errCount == 0 {
		green := color.New(color.FgGreen, color.Bold)
		if p.NoColor {
			green.DisableColor()
		}
		return green.Sprintf("Success: no issues found in %s", sourceFiles)
	}
	filesWithErrors := map[string]bool{}
	for _, item := range diagnostics {
		if item.Severity == SeverityError {
			filesWithErrors[item.Path] = true
		}
	}
	red := color.New(color.FgRed, color.Bold)
	if p.NoColor {
		red.DisableColor()
	}
	return red.Sprintf("Found %s in %s (checked %s)", plural(errCount, "error"), plural(len(filesWithErrors), "file"), sourceFiles)
}

func plural(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, noun)
	}
	return fmt.Sprintf("%d %ss", count, noun)
}
