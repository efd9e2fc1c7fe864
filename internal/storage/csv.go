package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maltedev/fridge-capacity-crawler/internal/models"
)

const DefaultCSVPath = "danawa_fridge_capacity.csv"

// utf8BOM lets spreadsheet tools detect UTF-8 for the Korean header.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type CSVSink struct {
	filename string
}

func NewCSVSink(filename string) *CSVSink {
	if filename == "" {
		filename = DefaultCSVPath
	}
	return &CSVSink{filename: filename}
}

func (s *CSVSink) Name() string { return "csv:" + s.filename }

func (s *CSVSink) Path() string { return s.filename }

// Save writes all rows in one go. The file is written under a temporary name
// and renamed into place. It does not watch ctx: rows gathered before a
// cancellation are still written.
func (s *CSVSink) Save(_ context.Context, result models.Snapshot) error {
	tmpFile := s.filename + ".tmp"
	if dir := filepath.Dir(s.filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	f, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpFile, err)
	}

	if err := writeCSV(f, result.Rows); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to close %s: %w", tmpFile, err)
	}

	return os.Rename(tmpFile, s.filename)
}

func writeCSV(f *os.File, rows []models.ProductRow) error {
	buf := bufio.NewWriter(f)
	if _, err := buf.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(buf)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write row %q: %w", row.Name, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Flush()
}
