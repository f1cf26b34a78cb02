package service

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1000", 1000},
		{"1,250,000", 1250000},
		{" 42.5 ", 42.5},
		{"Rp 1,000", 1000},
		{"IDR250000", 250000},
		{"-15000", -15000},
		{"12.5%", 12.5},
		{"", 0},
		{"abc", 0},
		{"1.2.3", 0},
	}
	for _, c := range cases {
		if got := ParseAmount(c.in); got != c.want {
			t.Fatalf("ParseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseInvoiceDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"15-03-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseInvoiceDate(c.in)
		if err != nil {
			t.Fatalf("ParseInvoiceDate(%q): %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("ParseInvoiceDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseInvoiceDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "32/13/2024"} {
		if _, err := ParseInvoiceDate(in); err == nil {
			t.Fatalf("ParseInvoiceDate(%q) expected error", in)
		}
	}
}
