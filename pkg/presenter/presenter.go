// Package presenter provides consistent CLI output for user-facing
// messages, including severity-tagged diagnostic findings, with color
// support and a quiet mode.
package presenter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/cjnuk/dskit/pkg/report"
)

// ColorMode controls colored output.
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables colored output.
	ColorNever
)

// TerminalPresenter writes user-facing messages to a terminal.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	input       io.Reader
	quiet       bool
}

// New creates a TerminalPresenter on stdout/stderr with color mode picked
// from NO_COLOR and DSKIT_COLOR.
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with explicit streams and
// color mode.
func NewWithOptions(output, errorOutput io.Writer, mode ColorMode) *TerminalPresenter {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		input:       os.Stdin,
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch os.Getenv("DSKIT_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error displays an error message to stderr. Errors are never suppressed
// by quiet mode.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		c.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message.
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning displays a warning message.
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info displays an informational message.
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays a section header with an underline.
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}
	c := color.New(color.Bold)
	c.Fprintf(p.output, "%s\n", title)
	c.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Separator displays a visual separator.
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// Prompt displays a question and reads a line of input. Returns the
// trimmed response, or the empty string on read failure.
func (p *TerminalPresenter) Prompt(question string, options ...string) string {
	c := color.New(color.FgCyan)
	if len(options) > 0 {
		c.Fprintf(p.output, "%s [%s]: ", question, strings.Join(options, "/"))
	} else {
		c.Fprintf(p.output, "%s: ", question)
	}
	line, err := bufio.NewReader(p.input).ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// Confirm asks a yes/no question and returns true on "y" or "yes".
func (p *TerminalPresenter) Confirm(question string) bool {
	answer := strings.ToLower(p.Prompt(question, "y", "N"))
	return answer == "y" || answer == "yes"
}

func severityColor(sev report.Severity) *color.Color {
	switch sev {
	case report.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case report.SeverityHigh:
		return color.New(color.FgRed)
	case report.SeverityMedium:
		return color.New(color.FgYellow)
	case report.SeverityLow:
		return color.New(color.FgCyan)
	default:
		return color.New(color.Faint)
	}
}

// Issue displays a single diagnostic finding.
func (p *TerminalPresenter) Issue(issue report.Issue) {
	if p.quiet {
		return
	}
	severityColor(issue.Severity).Fprintf(p.output, "[%s]", issue.Severity)
	if issue.Path != "" {
		fmt.Fprintf(p.output, " %s:", issue.Path)
	}
	fmt.Fprintf(p.output, " %s\n", issue.Message)
	if issue.Suggestion != "" {
		color.New(color.Faint).Fprintf(p.output, "        suggestion: %s\n", issue.Suggestion)
	}
}

// Report displays a full diagnostic report: section header, each issue in
// order, and the computed status line. Always prints the status line, even
// in quiet mode, so scripted callers get a single parseable result.
func (p *TerminalPresenter) Report(rep *report.Report) {
	p.Section(fmt.Sprintf("%s report %s", rep.Operation, rep.ID))
	if len(rep.Issues) == 0 {
		p.Info("no issues found")
	}
	for _, issue := range rep.Issues {
		p.Issue(issue)
	}
	status := rep.Status()
	c := color.New(color.Bold)
	switch status {
	case report.StatusCritical:
		c = color.New(color.FgRed, color.Bold)
	case report.StatusNeedsRepair:
		c = color.New(color.FgYellow, color.Bold)
	case report.StatusHealthy:
		c = color.New(color.FgGreen, color.Bold)
	}
	c.Fprintf(p.output, "status: %s\n", status)
}

// SetQuiet enables or disables quiet mode.
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

// SetInput overrides the prompt input stream. Used by tests.
func (p *TerminalPresenter) SetInput(r io.Reader) {
	p.input = r
}

var defaultPresenter = New()

// Error displays an error via the default presenter.
func Error(err error, context string) { defaultPresenter.Error(err, context) }

// Success displays a success message via the default presenter.
func Success(message string) { defaultPresenter.Success(message) }

// Warning displays a warning via the default presenter.
func Warning(message string) { defaultPresenter.Warning(message) }

// Info displays an informational message via the default presenter.
func Info(message string) { defaultPresenter.Info(message) }

// Section displays a section header via the default presenter.
func Section(title string) { defaultPresenter.Section(title) }

// Separator displays a separator via the default presenter.
func Separator() { defaultPresenter.Separator() }

// Prompt prompts for input via the default presenter.
func Prompt(question string, options ...string) string {
	return defaultPresenter.Prompt(question, options...)
}

// Confirm asks a yes/no question via the default presenter.
func Confirm(question string) bool { return defaultPresenter.Confirm(question) }

// Issue displays a finding via the default presenter.
func Issue(issue report.Issue) { defaultPresenter.Issue(issue) }

// Report displays a report via the default presenter.
func Report(rep *report.Report) { defaultPresenter.Report(rep) }

// SetQuiet toggles quiet mode on the default presenter.
func SetQuiet(quiet bool) { defaultPresenter.SetQuiet(quiet) }

// IsQuiet reports quiet mode of the default presenter.
func IsQuiet() bool { return defaultPresenter.IsQuiet() }
