// Package report writes progress, diagnostics and run summaries to the
// terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/Zuo-Peng/compdb/internal/compdb"
	"github.com/Zuo-Peng/compdb/internal/pipeline"
)

var (
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleSkip    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// Reporter prints to w, colouring output only when w is a terminal.
type Reporter struct {
	w     io.Writer
	color bool
}

func New(w io.Writer) *Reporter {
	r := &Reporter{w: w}
	if f, ok := w.(*os.File); ok {
		r.color = term.IsTerminal(int(f.Fd()))
	}
	return r
}

// Stderr returns a Reporter for os.Stderr.
func Stderr() *Reporter {
	return New(os.Stderr)
}

func (r *Reporter) Printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) render(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// Warn prints a non-fatal problem.
func (r *Reporter) Warn(err error) {
	fmt.Fprintf(r.w, "  %s %v\n", r.render(styleWarn, "WARN:"), err)
}

// Diagnostic prints one skipped invocation.
func (r *Reporter) Diagnostic(d pipeline.Diagnostic) {
	label := "SKIP:"
	if d.Skip.Reason == compdb.AmbiguousPath {
		label = "AMBIGUOUS:"
	}
	fmt.Fprintf(r.w, "  %s %s\n", r.render(styleSkip, label), d)
}

// Result prints walk warnings, skip diagnostics and the stats line.
func (r *Reporter) Result(res *pipeline.Result, output string, elapsed time.Duration) {
	for _, err := range res.Warnings {
		r.Warn(err)
	}
	for _, d := range res.Diagnostics {
		r.Diagnostic(d)
	}
	fmt.Fprintf(r.w, "Indexed %d files (%d names) under %s\n",
		res.Stats.IndexedFiles, res.Stats.IndexedNames, res.Index.Root)
	done := r.render(styleSuccess, "Done.")
	fmt.Fprintf(r.w, "%s %s %s\n", done, res.Stats, r.render(styleDim, elapsed.Round(time.Millisecond).String()))
	if output != "" {
		fmt.Fprintf(r.w, "Wrote %d entries to %s\n", res.DB.Len(), output)
	}
}

// Progress returns a byte progress bar for reading a log of the given size,
// or io.Discard when the output is not a terminal.
func (r *Reporter) Progress(size int64) io.Writer {
	if !r.color {
		return io.Discard
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("Scanning log"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
