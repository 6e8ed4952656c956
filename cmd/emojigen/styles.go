package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	success = lipgloss.Color("#8BC34A")
	warning = lipgloss.Color("#FFC107")
	failure = lipgloss.Color("#e53935")
	muted   = lipgloss.Color("#6b7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	okStyle      = lipgloss.NewStyle().Foreground(success)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Foreground(failure).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	versionStyle = lipgloss.NewStyle().Bold(true).Width(10)
)

// status of one generator or check.
type status int

const (
	statusOK status = iota
	statusSkipped
	statusFailed
)

func (s status) render() string {
	switch s {
	case statusOK:
		return okStyle.Render("✓")
	case statusSkipped:
		return warnStyle.Render("-")
	default:
		return errorStyle.Render("✗")
	}
}

// outcome is one line of a command summary.
type outcome struct {
	name   string
	status status
	detail string
}

// versionSummary groups outcomes for one emoji version.
type versionSummary struct {
	version  string
	outcomes []outcome
}

func (v versionSummary) failed() bool {
	for _, o := range v.outcomes {
		if o.status == statusFailed {
			return true
		}
	}
	return false
}

// renderSummary renders a per-version report.
func renderSummary(title string, summaries []versionSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	failed := 0
	for _, v := range summaries {
		if v.failed() {
			failed++
		}
		b.WriteString(versionStyle.Render("v" + v.version))
		b.WriteString("\n")
		for _, o := range v.outcomes {
			line := fmt.Sprintf("  %s %-14s", o.status.render(), o.name)
			if o.detail != "" {
				line += " " + mutedStyle.Render(o.detail)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	total := fmt.Sprintf("%d version(s), %d failed", len(summaries), failed)
	if failed > 0 {
		b.WriteString(errorStyle.Render(total))
	} else {
		b.WriteString(okStyle.Render(total))
	}
	b.WriteString("\n")
	return b.String()
}
