// =============================================================================
// Vehicle Listing Importer - Terminal Output
// =============================================================================
//
// Human-facing output for the CLI. Log lines go to stderr through zerolog;
// everything printed here is the command's result and goes to stdout, except
// the progress bar, which renders on stderr only when stderr is a terminal.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UI prints command results.
type UI struct {
	out io.Writer
}

// NewUI creates a UI writing to out.
func NewUI(out io.Writer) *UI {
	return &UI{out: out}
}

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
	faintColor   = color.New(color.Faint)
)

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	successColor.Fprintf(ui.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	errorColor.Fprintf(ui.out, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	warningColor.Fprintf(ui.out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	infoColor.Fprintf(ui.out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Header prints a section title.
func (ui *UI) Header(format string, args ...interface{}) {
	headerColor.Fprintf(ui.out, "\n=== %s ===\n", fmt.Sprintf(format, args...))
}

// Line prints plain text.
func (ui *UI) Line(format string, args ...interface{}) {
	fmt.Fprintf(ui.out, format+"\n", args...)
}

// Faint prints de-emphasized text.
func (ui *UI) Faint(format string, args ...interface{}) {
	faintColor.Fprintf(ui.out, format+"\n", args...)
}

// =============================================================================
// PROGRESS
// =============================================================================

// Progress tracks files imported. A nil *Progress is a no-op.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress returns a progress bar over total files, or nil when stderr is
// not a terminal or there is only one file.
func NewProgress(total int) *Progress {
	if total < 2 || !IsTerminal(os.Stderr) {
		return nil
	}

	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription("importing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Progress{bar: bar}
}

// Done marks one file finished. Safe for concurrent use.
func (p *Progress) Done() {
	if p == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
