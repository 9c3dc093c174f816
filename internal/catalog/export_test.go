package catalog

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	products := []Product{
		{ID: 1, Name: "Mouse", Price: 25.5, Stock: 3, Category: "Computers", ImageURL: DefaultImageURL},
		{ID: 7, Name: "Desk", Price: 300, Stock: 0, Category: "Other",
			CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, products); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][6] != "Image URL" {
		t.Fatalf("header %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != "Mouse" || rows[1][3] != "25.5" {
		t.Fatalf("row 1 %v", rows[1])
	}
	if rows[2][0] != "7" || rows[2][7] != "2024-01-02T03:04:05Z" {
		t.Fatalf("row 2 %v", rows[2])
	}
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, nil); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, _ := f.GetRows(exportSheet)
	if len(rows) != 1 {
		t.Fatalf("rows=%d", len(rows))
	}
}
