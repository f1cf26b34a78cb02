package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/partslink/backend/internal/models"
	"github.com/partslink/backend/internal/spreadsheet"
)

type partStore struct {
	parts map[string]models.Part
	fail  map[string]error
}

func (s *partStore) UpsertPart(_ context.Context, p models.Part) error {
	if err := s.fail[p.PartNo]; err != nil {
		return err
	}
	if s.parts == nil {
		s.parts = map[string]models.Part{}
	}
	s.parts[p.PartNo] = p
	return nil
}

func TestValidateStockHeadersCaseInsensitive(t *testing.T) {
	if err := ValidateStockHeaders([]string{"no_part", "Nama_Part", "QTY"}); err != nil {
		t.Fatalf("mixed-case headers should validate: %v", err)
	}
	err := ValidateStockHeaders([]string{"NO_PART"})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 2 {
		t.Fatalf("missing = %v, want NAMA_PART and QTY", schemaErr.Missing)
	}
}

func TestStockPipelineRun(t *testing.T) {
	store := &partStore{fail: map[string]error{"P-ERR": errors.New("disk full")}}
	p := &StockPipeline{Store: store, Logger: zerolog.Nop()}

	headers := []string{"NO_PART", "NAMA_PART", "GROUP_PART", "GROUP_MATERIAL", "QTY", "AMOUNT"}
	rows := []spreadsheet.Row{
		{"NO_PART": "P-1", "NAMA_PART": "Filter", "GROUP_PART": "FLT", "GROUP_MATERIAL": "Oil", "QTY": "12", "AMOUNT": "1,200,000"},
		{"NO_PART": "", "NAMA_PART": "Ghost", "QTY": "1"},
		{"NO_PART": "P-ERR", "NAMA_PART": "Broken", "QTY": "3"},
	}

	report, err := p.Run(context.Background(), headers, rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.SuccessCount != 1 || report.FailedCount != 2 {
		t.Fatalf("report = %d/%d, want 1/2", report.SuccessCount, report.FailedCount)
	}
	part, ok := store.parts["P-1"]
	if !ok {
		t.Fatalf("P-1 not stored")
	}
	if part.Qty != 12 || part.Amount != 1200000 {
		t.Fatalf("numeric coercion failed: %+v", part)
	}
	if len(report.Errors) != 2 {
		t.Fatalf("expected 2 error entries, got %+v", report.Errors)
	}
	if report.Errors[0].Row != "3" || report.Errors[1].Row != "4" {
		t.Fatalf("error rows = %+v, want 3 and 4", report.Errors)
	}
}

func TestStockPipelineAllFailedStatus(t *testing.T) {
	store := &partStore{}
	p := &StockPipeline{Store: store, Logger: zerolog.Nop()}
	rows := []spreadsheet.Row{{"NO_PART": "", "NAMA_PART": "x", "QTY": "1"}}
	report, err := p.Run(context.Background(), []string{"NO_PART", "NAMA_PART", "QTY"}, rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Status() != StatusFailed {
		t.Fatalf("status = %q, want failed", report.Status())
	}
}
