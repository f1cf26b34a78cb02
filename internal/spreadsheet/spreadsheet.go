// Package spreadsheet decodes uploaded .xlsx and .csv files into ordered,
// loosely-typed row records keyed by the sheet's header row.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps a header cell to the raw value of that column in one data row.
// Missing trailing cells are filled with "" so every row carries the full
// header set.
type Row map[string]string

var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")

// Parse decodes the first sheet of an .xlsx file, or a whole .csv file,
// into the header list and one Row per data row. Row order is preserved.
func Parse(r io.Reader, filename string) ([]string, []Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return nil, nil, ErrUnsupportedFormat
	}
}

func parseXLSX(r io.Reader) ([]string, []Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	return buildRows(cells)
}

func parseCSV(r io.Reader) ([]string, []Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var cells [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		cells = append(cells, rec)
	}
	return buildRows(cells)
}

func buildRows(cells [][]string) ([]string, []Row, error) {
	if len(cells) == 0 {
		return nil, nil, errors.New("file is empty")
	}

	headers := make([]string, 0, len(cells[0]))
	for _, h := range cells[0] {
		headers = append(headers, strings.TrimSpace(stripBOM(h)))
	}

	rows := make([]Row, 0, len(cells)-1)
	for _, rec := range cells[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func stripBOM(s string) string {
	return strings.ReplaceAll(s, "\ufeff", "")
}
