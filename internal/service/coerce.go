package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseAmount converts a raw spreadsheet cell to a number. Thousands
// separators, percent signs, currency prefixes and whitespace are stripped
// before parsing; anything still unparseable yields 0 so a single garbled
// numeric cell never fails an otherwise valid row.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimPrefix(s, "IDR")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

var invoiceDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseInvoiceDate is stricter than ParseAmount: an unparseable or empty
// date is an error, which fails the row's whole invoice group.
func ParseInvoiceDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("invoice date is empty")
	}
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable invoice date %q", s)
}
