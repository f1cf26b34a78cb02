package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/partslink/backend/internal/loyalty"
	"github.com/partslink/backend/internal/models"
)

// InvoiceGroup is the transient set of normalized rows sharing one invoice
// number, before aggregation.
type InvoiceGroup struct {
	InvoiceNo string
	Rows      []NormalizedRow
}

// InvoiceDraft is a fully aggregated invoice ready for persistence: the
// transaction header plus its line items and the source row span.
type InvoiceDraft struct {
	Tx        models.Transaction
	Items     []models.TransactionItem
	FirstLine int
	LastLine  int
	RowCount  int
}

// RowRange renders the draft's source rows for the error log.
func (d InvoiceDraft) RowRange() string {
	return formatRowRange(d.FirstLine, d.LastLine)
}

func formatRowRange(first, last int) string {
	if first == last {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

// GroupByInvoice partitions rows by invoice number, preserving first-seen
// invoice order. Rows without an invoice number are dropped.
func GroupByInvoice(rows []NormalizedRow) []InvoiceGroup {
	index := map[string]int{}
	var groups []InvoiceGroup
	for _, row := range rows {
		invoiceNo := strings.TrimSpace(row.Fields[FieldInvoiceNo])
		if invoiceNo == "" {
			continue
		}
		i, ok := index[invoiceNo]
		if !ok {
			i = len(groups)
			index[invoiceNo] = i
			groups = append(groups, InvoiceGroup{InvoiceNo: invoiceNo})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// AggregateInvoice derives the transaction header from an invoice group.
// Header-level fields come from the group's first row; financial figures
// are summed across the line items. A bad invoice date fails the whole
// group, which is the pipeline's unit of failure isolation.
func AggregateInvoice(g InvoiceGroup) (InvoiceDraft, error) {
	header := g.Rows[0].Fields

	invoiceDate, err := ParseInvoiceDate(header[FieldInvoiceDate])
	if err != nil {
		return InvoiceDraft{}, err
	}

	invoiceType := strings.TrimSpace(header[FieldInvoiceType])
	if invoiceType == "" {
		invoiceType = "Regular"
	}

	draft := InvoiceDraft{
		Tx: models.Transaction{
			InvoiceNo:   g.InvoiceNo,
			InvoiceDate: invoiceDate,
			CustomerNo:  strings.TrimSpace(header[FieldCustomerNo]),
			InvoiceType: invoiceType,
		},
		FirstLine: g.Rows[0].Line,
		LastLine:  g.Rows[0].Line,
		RowCount:  len(g.Rows),
	}

	for _, row := range g.Rows {
		if row.Line < draft.FirstLine {
			draft.FirstLine = row.Line
		}
		if row.Line > draft.LastLine {
			draft.LastLine = row.Line
		}

		total := ParseAmount(row.Fields[FieldInvoiceTotal])
		tax := ParseAmount(row.Fields[FieldTax])
		cost := ParseAmount(row.Fields[FieldCostPrice])
		discount := math.Abs(ParseAmount(row.Fields[FieldDiscount]))

		netSales := ParseAmount(row.Fields[FieldNetSales])
		if netSales == 0 {
			netSales = total - tax
		}
		grossProfit := ParseAmount(row.Fields[FieldGrossProfit])
		if grossProfit == 0 {
			grossProfit = total - tax - cost
		}

		draft.Tx.TotalAmount += total
		draft.Tx.Discount += discount
		draft.Tx.NetSales += netSales
		draft.Tx.GrossProfit += grossProfit

		draft.Items = append(draft.Items, models.TransactionItem{
			PartNo:        strings.TrimSpace(row.Fields[FieldPartNo]),
			PartName:      strings.TrimSpace(row.Fields[FieldPartName]),
			Quantity:      ParseAmount(row.Fields[FieldQuantity]),
			UnitPrice:     ParseAmount(row.Fields[FieldUnitPrice]),
			Subtotal:      netSales,
			Discount:      discount,
			CostPrice:     cost,
			GrossProfit:   grossProfit,
			MaterialGroup: materialGroup(row.Fields),
		})
	}

	if draft.Tx.NetSales > 0 {
		draft.Tx.GPPercent = draft.Tx.GrossProfit / draft.Tx.NetSales * 100
	}
	draft.Tx.PointsEarned = loyalty.PointsFor(draft.Tx.NetSales)
	return draft, nil
}

func materialGroup(fields map[string]string) string {
	for _, field := range []string{FieldMaterialGroup, FieldTOBPMGroup, FieldPartGroup} {
		if v := strings.TrimSpace(fields[field]); v != "" {
			return v
		}
	}
	return ""
}
