package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/repobind/repobind/pkg/discovery"
)

// colorized reports whether stdout is an interactive terminal.
func colorized() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

var (
	headerColor  = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#fafafa"}
	successColor = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	warnColor    = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	dimColor     = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
)

func styleFor(color lipgloss.AdaptiveColor, bold bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if !colorized() {
		return s
	}
	if bold {
		s = s.Bold(true)
	}
	return s.Foreground(color)
}

func errorStyle() lipgloss.Style {
	return styleFor(errorColor, true)
}

// renderReport prints one discovery report, one line per candidate,
// followed by a registered/skipped summary.
func renderReport(w io.Writer, report *discovery.Report) {
	header := styleFor(headerColor, true)
	registered := styleFor(successColor, false)
	skipped := styleFor(warnColor, false)
	dim := styleFor(dimColor, false)

	fmt.Fprintln(w, header.Render("Discovery report"))

	for _, e := range report.Entries {
		outcome := registered.Render(string(e.Outcome))
		if e.Outcome == discovery.OutcomeSkipped {
			outcome = skipped.Render(string(e.Outcome))
		}

		name := e.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "  %-10s  %-24s  %-13s  %s", outcome, name, e.Role, dim.Render(e.Type))
		if e.Reason != "" {
			fmt.Fprintf(w, "  (%s)", e.Reason)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s %d registered, %d skipped\n",
		header.Render("Summary:"), report.Registered, report.Skipped)
}
