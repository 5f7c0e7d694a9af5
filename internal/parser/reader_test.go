package parser

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	out, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	t.Cleanup(func() { _ = out.Close() })
	return out
}

func TestSheetReader_TypedCells(t *testing.T) {
	t.Parallel()

	date := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	f := buildWorkbook(t, "bills", [][]any{
		{"client_name", "client_org", "№", "sum", "date", "service"},
		{"Acme", "Acme Clinic", 5, 120.5, date, "лечение"},
		{nil, nil, nil, nil, nil, nil},
		{"Beta", nil, 6, "abc", nil, "-"},
	})

	sheet, err := NewSheetReader(f).FirstSheet()
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if sheet.Name != "bills" {
		t.Fatalf("unexpected sheet name: %s", sheet.Name)
	}
	if got := DetectLayout(sheet.Header); got != LayoutVariant1 {
		t.Fatalf("unexpected layout: %s", got)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("blank row should be skipped, got %d rows", len(sheet.Rows))
	}

	first := sheet.Rows[0]
	if first["client_name"] != "Acme" || first["№"] != int64(5) || first["sum"] != 120.5 {
		t.Fatalf("unexpected first row: %#v", first)
	}
	d, ok := first["date"].(time.Time)
	if !ok || d.Year() != 2023 || d.Month() != time.January || d.Day() != 10 {
		t.Fatalf("date cell should be time.Time, got %#v", first["date"])
	}

	second := sheet.Rows[1]
	if second["sum"] != "abc" {
		t.Fatalf("text sum should stay a string, got %#v", second["sum"])
	}
	if _, ok := second["client_org"]; ok {
		t.Fatalf("empty cell should be absent, got %#v", second["client_org"])
	}

	out := Validate(Normalize(first, LayoutVariant1), LayoutVariant1)
	if !out.Valid() {
		t.Fatalf("first row should be valid: %v", out.Violations)
	}
}

func TestSheetReader_MissingSheet(t *testing.T) {
	t.Parallel()

	f := buildWorkbook(t, "bills", [][]any{{"a"}})
	if _, err := NewSheetReader(f).ReadSheet("client"); err == nil {
		t.Fatalf("expected error for missing sheet")
	}
}

func TestSheetReader_WhitespaceRowIsKept(t *testing.T) {
	t.Parallel()

	date := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	f := buildWorkbook(t, "bills", [][]any{
		{"client_name", "client_org", "№", "sum", "date", "service"},
		{" ", "  ", nil, nil, nil, " "},
		{nil, nil, nil, nil, nil, nil},
		{"Acme", "Acme Clinic", 5, 120.5, date, "лечение"},
	})

	sheet, err := NewSheetReader(f).FirstSheet()
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("only the empty row should be skipped, got %d rows", len(sheet.Rows))
	}
	if sheet.Rows[0]["client_name"] != " " {
		t.Fatalf("whitespace cell should be kept as text, got %#v", sheet.Rows[0]["client_name"])
	}

	mapper := NewFieldMapper(LayoutVariant1)
	if out := Validate(mapper.Map(sheet.Rows[0]), LayoutVariant1); out.Valid() || len(out.Violations) != 6 {
		t.Fatalf("whitespace row should fail every check, got %v", out.Violations)
	}
	if out := Validate(mapper.Map(sheet.Rows[1]), LayoutVariant1); !out.Valid() {
		t.Fatalf("data row should stay valid: %v", out.Violations)
	}
}
