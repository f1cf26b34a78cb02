package spreadsheet

import (
	"github.com/xuri/excelize/v2"
)

var salesTemplateHeaders = []string{
	"No Faktur", "Tgl Faktur", "Transaksi", "Tipe Faktur", "No Customer",
	"Customer Name", "Tipe Part", "No Part", "Nama Part", "Group Material",
	"Rank", "Quantity", "Sales", "Diskon", "Total Faktur", "DPP", "PPN",
	"Harga Pokok", "Gross Profit", "Net Sales", "Disc%", "GP%",
}

var salesTemplateExample = []any{
	"INV-2026-001", "2026-01-15", "Penjualan", "Regular", "CUST001",
	"Budi Santoso", "OEM", "HND-BRK-001", "Kampas Rem Depan Honda Beat",
	"Honda", "A", 2, 70000, 5000, 1500000, 1363636, 136364, 52500, 12500,
	65000, 7.14, 19.23,
}

var stockTemplateHeaders = []string{
	"NO_PART", "NAMA_PART", "GROUP_PART", "GROUP_MATERIAL", "QTY", "AMOUNT",
}

var stockTemplateExample = []any{
	"HND-001", "Kampas Rem Depan Honda Beat", "Brake System", "Honda", 45, 35000,
}

// SalesTemplate builds an .xlsx workbook with the distributor's sales
// headers and a single example row.
func SalesTemplate() (*excelize.File, error) {
	return buildTemplate("Sales Data", salesTemplateHeaders, salesTemplateExample)
}

// StockTemplate builds an .xlsx workbook with the stock upload headers and
// a single example row.
func StockTemplate() (*excelize.File, error) {
	return buildTemplate("Stock Data", stockTemplateHeaders, stockTemplateExample)
}

func buildTemplate(sheet string, headers []string, example []any) (*excelize.File, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A2", &example); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := float64(len(h) + 2)
		if width < 15 {
			width = 15
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}
	return f, nil
}
