package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maltedev/fridge-capacity-crawler/internal/models"
)

// Header is the fixed output header: product name, total, freezer, fridge.
var Header = []string{"제품명", "총용량(L)", "냉동(L)", "냉장(L)"}

// Sink persists the result of a finished crawl.
type Sink interface {
	Name() string
	Save(ctx context.Context, result models.Snapshot) error
}

// Result is the outcome of one sink for the last Save.
type Result struct {
	Sink string
	Err  error
}

// Writer saves the primary sink first and then every optional exporter.
// Only a primary failure is returned; exporter failures are logged.
type Writer struct {
	primary   Sink
	exporters []Sink
	results   []Result
	logger    *slog.Logger
}

func NewWriter(primary Sink, exporters ...Sink) *Writer {
	return &Writer{
		primary:   primary,
		exporters: exporters,
		logger:    slog.Default().With("component", "storage"),
	}
}

func (w *Writer) Save(ctx context.Context, result models.Snapshot) error {
	if w.primary == nil {
		return errors.New("no primary sink configured")
	}

	w.results = w.results[:0]

	if err := w.primary.Save(ctx, result); err != nil {
		w.results = append(w.results, Result{Sink: w.primary.Name(), Err: err})
		return fmt.Errorf("failed to save %s: %w", w.primary.Name(), err)
	}
	w.results = append(w.results, Result{Sink: w.primary.Name()})
	w.logger.Info("results saved", "sink", w.primary.Name(), "rows", len(result.Rows))

	for _, exp := range w.exporters {
		err := exp.Save(ctx, result)
		w.results = append(w.results, Result{Sink: exp.Name(), Err: err})
		if err != nil {
			w.logger.Error("export failed", "sink", exp.Name(), "error", err)
			continue
		}
		w.logger.Info("results exported", "sink", exp.Name(), "rows", len(result.Rows))
	}

	return nil
}

// Results reports every sink attempted by the last Save, primary first.
func (w *Writer) Results() []Result {
	out := make([]Result, len(w.results))
	copy(out, w.results)
	return out
}
