package service

import (
	"testing"

	"github.com/partslink/backend/internal/spreadsheet"
)

func row(line int, fields map[string]string) NormalizedRow {
	return NormalizedRow{Line: line, Fields: spreadsheet.Row(fields)}
}

func TestGroupByInvoice(t *testing.T) {
	rows := []NormalizedRow{
		row(2, map[string]string{FieldInvoiceNo: "INV-2"}),
		row(3, map[string]string{FieldInvoiceNo: "INV-1"}),
		row(4, map[string]string{FieldInvoiceNo: ""}),
		row(5, map[string]string{FieldInvoiceNo: "INV-2"}),
	}
	groups := GroupByInvoice(rows)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].InvoiceNo != "INV-2" || groups[1].InvoiceNo != "INV-1" {
		t.Fatalf("expected first-seen order INV-2, INV-1: %+v", groups)
	}
	if len(groups[0].Rows) != 2 {
		t.Fatalf("expected INV-2 to hold two rows, got %d", len(groups[0].Rows))
	}
}

func TestAggregateInvoiceSums(t *testing.T) {
	g := InvoiceGroup{
		InvoiceNo: "INV-1",
		Rows: []NormalizedRow{
			row(2, map[string]string{
				FieldInvoiceNo:    "INV-1",
				FieldInvoiceDate:  "2024-01-10",
				FieldCustomerNo:   "C001",
				FieldPartNo:       "P-1",
				FieldQuantity:     "1",
				FieldInvoiceTotal: "110000",
				FieldTax:          "10000",
				FieldNetSales:     "100000",
				FieldCostPrice:    "60000",
				FieldGrossProfit:  "40000",
			}),
			row(3, map[string]string{
				FieldInvoiceNo:    "INV-1",
				FieldInvoiceDate:  "2024-01-10",
				FieldCustomerNo:   "C001",
				FieldPartNo:       "P-2",
				FieldQuantity:     "4",
				FieldInvoiceTotal: "440000",
				FieldTax:          "40000",
				FieldNetSales:     "400000",
				FieldCostPrice:    "300000",
				FieldGrossProfit:  "100000",
			}),
		},
	}

	d, err := AggregateInvoice(g)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if d.Tx.TotalAmount != 550000 {
		t.Fatalf("total = %v, want 550000", d.Tx.TotalAmount)
	}
	if d.Tx.NetSales != 500000 {
		t.Fatalf("net sales = %v, want 500000", d.Tx.NetSales)
	}
	if d.Tx.GrossProfit != 140000 {
		t.Fatalf("gross profit = %v, want 140000", d.Tx.GrossProfit)
	}
	if d.Tx.GPPercent != 28 {
		t.Fatalf("gp%% = %v, want 28", d.Tx.GPPercent)
	}
	if d.Tx.PointsEarned != 1 {
		t.Fatalf("points = %d, want 1", d.Tx.PointsEarned)
	}
	if d.Tx.InvoiceType != "Regular" {
		t.Fatalf("invoice type = %q, want Regular default", d.Tx.InvoiceType)
	}
	if len(d.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(d.Items))
	}
	if d.RowRange() != "2-3" {
		t.Fatalf("row range = %q, want 2-3", d.RowRange())
	}
}

func TestAggregateInvoiceFallbacks(t *testing.T) {
	g := InvoiceGroup{
		InvoiceNo: "INV-9",
		Rows: []NormalizedRow{
			row(7, map[string]string{
				FieldInvoiceNo:    "INV-9",
				FieldInvoiceDate:  "2024-02-01",
				FieldInvoiceTotal: "110000",
				FieldTax:          "10000",
				FieldCostPrice:    "70000",
				FieldDiscount:     "-5000",
			}),
		},
	}

	d, err := AggregateInvoice(g)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if d.Tx.NetSales != 100000 {
		t.Fatalf("net sales fallback = %v, want total-tax = 100000", d.Tx.NetSales)
	}
	if d.Tx.GrossProfit != 30000 {
		t.Fatalf("gross profit fallback = %v, want total-tax-cost = 30000", d.Tx.GrossProfit)
	}
	if d.Tx.Discount != 5000 {
		t.Fatalf("discount = %v, want abs(-5000)", d.Tx.Discount)
	}
	if d.RowRange() != "7" {
		t.Fatalf("row range = %q, want 7", d.RowRange())
	}
}

func TestAggregateInvoiceBadDate(t *testing.T) {
	g := InvoiceGroup{
		InvoiceNo: "INV-BAD",
		Rows: []NormalizedRow{
			row(2, map[string]string{FieldInvoiceNo: "INV-BAD", FieldInvoiceDate: "soon"}),
		},
	}
	if _, err := AggregateInvoice(g); err == nil {
		t.Fatalf("expected a bad invoice date to fail the group")
	}
}

func TestMaterialGroupFallbackChain(t *testing.T) {
	cases := []struct {
		fields map[string]string
		want   string
	}{
		{map[string]string{FieldMaterialGroup: "Oil", FieldTOBPMGroup: "T", FieldPartGroup: "P"}, "Oil"},
		{map[string]string{FieldTOBPMGroup: "T", FieldPartGroup: "P"}, "T"},
		{map[string]string{FieldPartGroup: "P"}, "P"},
		{map[string]string{}, ""},
	}
	for _, c := range cases {
		if got := materialGroup(c.fields); got != c.want {
			t.Fatalf("materialGroup(%v) = %q, want %q", c.fields, got, c.want)
		}
	}
}
