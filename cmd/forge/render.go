// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/invowk/forge/internal/build"
	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/internal/issue"
)

// issueStyle is the glamour style used for catalog guidance.
const issueStyle = "auto"

// newLogger returns a slog logger backed by a charmbracelet/log handler.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix: "forge",
		Level:  level,
	})
	return slog.New(handler)
}

// slogLevel maps an engine level onto slog. trace and verbose are debug.
func slogLevel(l diag.Level) slog.Level {
	switch l {
	case diag.LevelError:
		return slog.LevelError
	case diag.LevelWarn:
		return slog.LevelWarn
	case diag.LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// logMessages prints the normalized messages of one task.
func logMessages(ctx context.Context, logger *slog.Logger, name string, res *build.Result) {
	for _, m := range res.Messages {
		logger.Log(ctx, slogLevel(m.Level), diag.Render(m), "task", name)
	}
}

// renderReport writes one section per task: a status line, the output
// table and, for failed tasks, the failure.
func renderReport(w io.Writer, names []string, report *build.Report, verbose bool) {
	for i, res := range report.Builds {
		name := "<unnamed>"
		if i < len(names) {
			name = names[i]
		}

		status := SuccessStyle.Render("✓")
		if res.Failed() {
			status = ErrorStyle.Render("✗")
		}
		fmt.Fprintf(w, "%s %s %s\n", status, TitleStyle.Render(name), SubtitleStyle.Render(res.Outdir))

		if len(res.Outputs) > 0 {
			fmt.Fprintln(w, outputTable(res))
		}
		if res.Failed() {
			fmt.Fprintln(w, ErrorStyle.Render("error: ")+diag.Render(res.Failure.Message))
			if verbose && res.Failure.Stack != "" {
				fmt.Fprintln(w, VerboseStyle.Render(res.Failure.Stack))
			}
		}
	}

	failed := 0
	for _, res := range report.Builds {
		if res.Failed() {
			failed++
		}
	}
	summary := fmt.Sprintf("%d task(s), %s", len(report.Builds), formatBytes(report.Size()))
	if failed > 0 {
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("%s, %d failed", summary, failed)))
		return
	}
	fmt.Fprintln(w, SuccessStyle.Render(summary))
}

func outputTable(res *build.Result) string {
	rows := make([][]string, 0, len(res.Outputs))
	for _, o := range res.Outputs {
		rows = append(rows, []string{o.FileName, string(o.Kind), strconv.Itoa(len(o.Content()))})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("FILE", "KIND", "BYTES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 2:
				return tableNumberStyle
			default:
				return tableCellStyle
			}
		}).
		String()
}

func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method; verbose mode adds the cause chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError writes err followed by the catalog guidance it links to.
func renderError(w io.Writer, err error, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueID == 0 {
		return
	}
	renderIssue(w, issue.Get(ae.IssueID))
}

// renderGuidance writes the catalog entries linked to the report, each at
// most once: the build-failed summary, then entries keyed by diagnostic code.
func renderGuidance(w io.Writer, report *build.Report) {
	var entries []*issue.Issue
	seen := make(map[issue.Id]bool)
	add := func(entry *issue.Issue) {
		if entry != nil && !seen[entry.Id()] {
			seen[entry.Id()] = true
			entries = append(entries, entry)
		}
	}

	if report.Failed() {
		add(issue.Get(issue.BuildFailedId))
	}
	for _, res := range report.Builds {
		if res.Failed() {
			add(issue.ForCode(res.Failure.Code))
		}
		for _, m := range res.Messages {
			if m.Level == diag.LevelWarn || m.Level == diag.LevelError {
				add(issue.ForCode(m.Code))
			}
		}
	}

	for _, entry := range entries {
		renderIssue(w, entry)
	}
}

func renderIssue(w io.Writer, entry *issue.Issue) {
	if entry == nil {
		return
	}
	md, err := entry.Render(issueStyle)
	if err != nil {
		return
	}
	fmt.Fprint(w, md)
}
