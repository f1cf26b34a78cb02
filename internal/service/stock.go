package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/partslink/backend/internal/models"
	"github.com/partslink/backend/internal/spreadsheet"
)

var requiredStockHeaders = []string{"NO_PART", "NAMA_PART", "QTY"}

// StockStorage is the persistence surface of the stock upload path.
type StockStorage interface {
	UpsertPart(ctx context.Context, part models.Part) error
}

// StockPipeline replaces the parts table row by row. Unlike the sales path
// there is no grouping: each row is an independent upsert keyed by part
// number.
type StockPipeline struct {
	Store  StockStorage
	Logger zerolog.Logger
}

// ValidateStockHeaders checks the required stock columns,
// case-insensitively as the source files vary between upper and lower case.
func ValidateStockHeaders(headers []string) error {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[strings.ToUpper(strings.TrimSpace(h))] = struct{}{}
	}
	var missing []string
	for _, req := range requiredStockHeaders {
		if _, ok := present[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

func (p *StockPipeline) Run(ctx context.Context, headers []string, rows []spreadsheet.Row) (*BatchReport, error) {
	report := NewBatchReport(len(rows))

	if err := ValidateStockHeaders(headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		line := i + 2
		fields := upperKeys(row)
		part := models.Part{
			PartNo:        strings.TrimSpace(fields["NO_PART"]),
			PartName:      strings.TrimSpace(fields["NAMA_PART"]),
			PartGroup:     strings.TrimSpace(fields["GROUP_PART"]),
			MaterialGroup: strings.TrimSpace(fields["GROUP_MATERIAL"]),
			Qty:           ParseAmount(fields["QTY"]),
			Amount:        ParseAmount(fields["AMOUNT"]),
			LastUpdated:   time.Now().UTC(),
		}
		if part.PartNo == "" {
			report.Fail(formatRowRange(line, line), 1, fmt.Errorf("part number is empty"))
			continue
		}
		if err := p.Store.UpsertPart(ctx, part); err != nil {
			report.Fail(formatRowRange(line, line), 1, err)
			continue
		}
		report.Success(1)
	}

	p.Logger.Info().
		Int("rows", report.RowsProcessed).
		Int("success", report.SuccessCount).
		Int("failed", report.FailedCount).
		Msg("stock batch processed")
	return report, nil
}

func upperKeys(row spreadsheet.Row) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}
