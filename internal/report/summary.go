package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/maltedev/fridge-capacity-crawler/internal/storage"
)

// Summary renders the end-of-run table.
func Summary(w io.Writer, result models.Snapshot, outputs []storage.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("fridge capacity crawl")
	t.AppendHeader(table.Row{"Field", "Value"})

	t.AppendRow(table.Row{"run", result.RunID})
	t.AppendRow(table.Row{"pages visited", result.PagesVisited})
	t.AppendRow(table.Row{"rows", len(result.Rows)})
	t.AppendRow(table.Row{"stop reason", stopReason(result.StopReason)})
	if !result.FinishedAt.IsZero() {
		t.AppendRow(table.Row{"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)})
	}

	if len(outputs) > 0 {
		t.AppendSeparator()
		for _, out := range outputs {
			status := "saved"
			if out.Err != nil {
				status = "failed: " + out.Err.Error()
			}
			t.AppendRow(table.Row{out.Sink, status})
		}
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func stopReason(r models.StopReason) string {
	if r == models.StopNone {
		return "-"
	}
	return string(r)
}
