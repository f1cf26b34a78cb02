package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	content := "\ufeffNo Faktur,Quantity,Net Sales\nINV-001,2,100000\nINV-001,1,\n"
	headers, rows, err := Parse(strings.NewReader(content), "sales.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(headers) != 3 || headers[0] != "No Faktur" {
		t.Fatalf("unexpected headers %v", headers)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["No Faktur"] != "INV-001" || rows[0]["Net Sales"] != "100000" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1]["Net Sales"] != "" {
		t.Fatalf("expected empty cell preserved, got %q", rows[1]["Net Sales"])
	}
}

func TestParseCSVShortRecord(t *testing.T) {
	content := "A,B,C\n1,2\n"
	_, rows, err := Parse(strings.NewReader(content), "x.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[0]["C"] != "" {
		t.Fatalf("expected missing trailing cell padded, got %q", rows[0]["C"])
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	if _, _, err := Parse(strings.NewReader("x"), "data.pdf"); err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSalesTemplateRoundTrip(t *testing.T) {
	f, err := SalesTemplate()
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	headers, rows, err := Parse(bytes.NewReader(buf.Bytes()), "template.xlsx")
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	if headers[0] != "No Faktur" {
		t.Fatalf("unexpected first header %q", headers[0])
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 example row, got %d", len(rows))
	}
	if rows[0]["No Faktur"] != "INV-2026-001" {
		t.Fatalf("unexpected example invoice %q", rows[0]["No Faktur"])
	}
}

func TestStockTemplateHeaders(t *testing.T) {
	f, err := StockTemplate()
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	headers, _, err := Parse(bytes.NewReader(buf.Bytes()), "stock.xlsx")
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	want := []string{"NO_PART", "NAMA_PART", "GROUP_PART", "GROUP_MATERIAL", "QTY", "AMOUNT"}
	if len(headers) != len(want) {
		t.Fatalf("expected %d headers, got %v", len(want), headers)
	}
	for i, h := range want {
		if headers[i] != h {
			t.Fatalf("header %d: expected %s, got %s", i, h, headers[i])
		}
	}
}
