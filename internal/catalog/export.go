package catalog

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Products"

var exportHeader = []any{"ID", "Name", "Description", "Price", "Stock", "Category", "Image URL", "Created At", "Updated At"}

// WriteXLSX renders products as a single-sheet workbook in persisted order.
func WriteXLSX(w io.Writer, products []Product) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	if err := sw.SetRow("A1", exportHeader); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL,
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("row %d: %w", p.ID, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
