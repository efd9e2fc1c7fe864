package storage

import (
	"context"
	"fmt"

	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// XLSXSink writes the same table as the CSV output into a workbook.
type XLSXSink struct {
	filename string
}

func NewXLSXSink(filename string) *XLSXSink {
	return &XLSXSink{filename: filename}
}

func (s *XLSXSink) Name() string { return "xlsx:" + s.filename }

func (s *XLSXSink) Path() string { return s.filename }

func (s *XLSXSink) Save(_ context.Context, result models.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range result.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Name, row.TotalL, row.FreezerL, row.FridgeL}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %q: %w", row.Name, err)
		}
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SaveAs(s.filename); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.filename, err)
	}
	return nil
}
