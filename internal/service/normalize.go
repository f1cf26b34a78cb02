package service

import (
	"fmt"
	"strings"

	"github.com/partslink/backend/internal/spreadsheet"
)

// Canonical field names the rest of the pipeline reads. Headers outside the
// alias table are snake-cased and passed through unchanged.
const (
	FieldInvoiceNo     = "invoice_no"
	FieldInvoiceDate   = "invoice_date"
	FieldInvoiceType   = "invoice_type"
	FieldCustomerNo    = "customer_no"
	FieldCustomerName  = "customer_name"
	FieldPartNo        = "part_no"
	FieldPartName      = "part_name"
	FieldQuantity      = "quantity"
	FieldUnitPrice     = "unit_price"
	FieldDiscount      = "discount"
	FieldInvoiceTotal  = "invoice_total"
	FieldTax           = "tax"
	FieldCostPrice     = "cost_price"
	FieldGrossProfit   = "gross_profit"
	FieldNetSales      = "net_sales"
	FieldMaterialGroup = "material_group"
	FieldPartGroup     = "part_group"
	FieldTOBPMGroup    = "tobpm_group"
)

// salesHeaderAliases maps the distributor's spreadsheet headers to
// canonical field names.
var salesHeaderAliases = map[string]string{
	"No Faktur":      FieldInvoiceNo,
	"Tgl Faktur":     FieldInvoiceDate,
	"Transaksi":      "transaction_type",
	"Tipe Faktur":    FieldInvoiceType,
	"No Customer":    FieldCustomerNo,
	"Customer Name":  FieldCustomerName,
	"Tipe Part":      "part_type",
	"No Part":        FieldPartNo,
	"Nama Part":      FieldPartName,
	"Group Material": FieldMaterialGroup,
	"Rank":           "rank",
	"Quantity":       FieldQuantity,
	"Sales":          FieldUnitPrice,
	"Diskon":         FieldDiscount,
	"Total Faktur":   FieldInvoiceTotal,
	"DPP":            "taxable_amount",
	"PPN":            FieldTax,
	"Harga Pokok":    FieldCostPrice,
	"Gross Profit":   FieldGrossProfit,
	"Net Sales":      FieldNetSales,
	"Disc%":          "disc_percent",
	"GP%":            "gp_percent",
	"Day":            "day",
	"Month":          "month",
	"MATGROUP FIX":   "material_group_fix",
	"Group Part":     FieldPartGroup,
	"Group TOBPM":    FieldTOBPMGroup,
}

var requiredSalesHeaders = []string{
	"No Faktur", "Tgl Faktur", "No Customer", "No Part", "Nama Part",
	"Quantity", "Total Faktur", "Net Sales",
}

// SchemaError means the upload is missing required columns. It is fatal to
// the whole batch and surfaced before any persistence.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValidateSalesHeaders checks that every required sales column is present.
func ValidateSalesHeaders(headers []string) error {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, req := range requiredSalesHeaders {
		if _, ok := present[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// NormalizedRow is one spreadsheet row with canonical field names. Line is
// the 1-based spreadsheet row number; data starts at line 2 because line 1
// is the header.
type NormalizedRow struct {
	Line   int
	Fields spreadsheet.Row
}

// NormalizeRows rewrites every row's keys through the alias table,
// preserving row order.
func NormalizeRows(rows []spreadsheet.Row) []NormalizedRow {
	out := make([]NormalizedRow, 0, len(rows))
	for i, row := range rows {
		fields := make(spreadsheet.Row, len(row))
		for header, value := range row {
			fields[canonicalField(header)] = value
		}
		out = append(out, NormalizedRow{Line: i + 2, Fields: fields})
	}
	return out
}

func canonicalField(header string) string {
	h := strings.TrimSpace(header)
	if mapped, ok := salesHeaderAliases[h]; ok {
		return mapped
	}
	return snakeCase(h)
}

func snakeCase(h string) string {
	s := strings.ToLower(h)
	s = strings.Join(strings.Fields(s), "_")
	s = strings.ReplaceAll(s, "%", "_percent")
	return s
}
