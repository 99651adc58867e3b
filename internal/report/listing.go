package report

import (
	"time"
	"wikispider/internal/ledger"
	"wikispider/internal/spider"

	"github.com/jedib0t/go-pretty/v6/table"
)

// SourcesTable lists registered adapters, one row each, in the order given.
func SourcesTable(adapters []spider.Adapter) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Game", "Category", "Source", "Priority"})
	for _, a := range adapters {
		t.AppendRow(table.Row{a.Game(), a.Category(), a.Source(), a.Priority()})
	}
	t.SetStyle(table.StyleRounded)
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateTime)
}

// RunsTable lists past runs recorded in the ledger.
func RunsTable(runs []ledger.Run) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Started", "Finished", "Status", "Datasets", "Records", "Collisions"})
	for _, r := range runs {
		state := "ok"
		switch {
		case r.FinishedAt.IsZero():
			state = "unfinished"
		case r.Error != "":
			state = r.Error
		case r.Failed:
			state = "failed"
		}
		t.AppendRow(table.Row{
			r.ID,
			formatTime(r.StartedAt),
			formatTime(r.FinishedAt),
			state,
			r.Datasets,
			r.Records,
			r.Collisions,
		})
	}
	t.SetStyle(table.StyleRounded)
	return t
}

// CollisionsTable lists the merge collisions of one run.
func CollisionsTable(collisions []ledger.CollisionRow) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Game", "Category", "Key", "Field", "Kept", "Discarded", "Similarity"})
	for _, c := range collisions {
		t.AppendRow(table.Row{c.Game, c.Category, c.Key, c.Field, c.Kept, c.Discarded, c.Similarity})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Kept", WidthMax: 40},
		{Name: "Discarded", WidthMax: 40},
	})
	t.SetStyle(table.StyleRounded)
	return t
}
