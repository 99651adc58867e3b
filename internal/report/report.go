// Package report renders the outcome of a run as a table and mails it
// when something failed.
package report

import (
	"fmt"
	"io"
	"strings"
	"wikispider/internal/scheduler"

	"github.com/jedib0t/go-pretty/v6/table"
)

func sources(adapters []scheduler.AdapterResult) string {
	parts := make([]string, len(adapters))
	for i, a := range adapters {
		if a.Failed() {
			parts[i] = fmt.Sprintf("%s(%d) failed", a.Source, a.Priority)
			continue
		}
		parts[i] = fmt.Sprintf("%s(%d) %d", a.Source, a.Priority, a.Flattened)
	}
	return strings.Join(parts, "\n")
}

func status(result scheduler.GroupResult) string {
	switch {
	case result.Err != nil:
		return result.Err.Error()
	case result.Path == "":
		return "no data"
	}
	return result.Path
}

// Table builds the summary table of a run.
func Table(results []scheduler.GroupResult) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Game", "Category", "Sources", "Records", "Dropped", "Collisions", "Dataset"})

	total := 0
	for _, r := range results {
		t.AppendRow(table.Row{
			r.Game,
			r.Category,
			sources(r.Adapters),
			r.Records,
			r.Dropped,
			len(r.Collisions),
			status(r),
		})
		total += r.Records
	}
	t.AppendFooter(table.Row{"", "", "Total", total})
	t.SetStyle(table.StyleRounded)
	return t
}

// Render writes the summary table to out.
func Render(out io.Writer, results []scheduler.GroupResult) {
	t := Table(results)
	t.SetOutputMirror(out)
	t.Render()
}

// AnyFailed reports whether a group or adapter of the run failed.
func AnyFailed(results []scheduler.GroupResult) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// Failures lists a line per failed adapter or group.
func Failures(results []scheduler.GroupResult) []string {
	var lines []string
	for _, r := range results {
		for _, a := range r.Adapters {
			if a.Failed() {
				lines = append(lines, fmt.Sprintf("%s/%s %s: %v", r.Game, r.Category, a.Source, a.Err))
			}
		}
		if r.Err != nil {
			lines = append(lines, fmt.Sprintf("%s/%s: %v", r.Game, r.Category, r.Err))
		}
	}
	return lines
}
