package service

import (
	"encoding/json"

	"github.com/partslink/backend/internal/models"
)

// MaxErrorLogEntries bounds the error log persisted with an upload record;
// entries past the cap are dropped.
const MaxErrorLogEntries = 50

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// BatchReport accumulates per-invoice outcomes across one upload. Success
// and failure counts are in source rows, not invoices, so a failed
// ten-line invoice reports ten failed rows.
type BatchReport struct {
	RowsProcessed int
	SuccessCount  int
	FailedCount   int
	Errors        []models.UploadError
}

func NewBatchReport(rowsProcessed int) *BatchReport {
	return &BatchReport{RowsProcessed: rowsProcessed}
}

func (r *BatchReport) Success(rows int) {
	r.SuccessCount += rows
}

func (r *BatchReport) Fail(rowRange string, rows int, err error) {
	r.FailedCount += rows
	if len(r.Errors) < MaxErrorLogEntries {
		r.Errors = append(r.Errors, models.UploadError{Row: rowRange, Error: err.Error()})
	}
}

// Status derives the final upload status: failed only when nothing
// succeeded and something failed. A batch with failures among successes is
// still completed.
func (r *BatchReport) Status() string {
	if r.SuccessCount == 0 && r.FailedCount > 0 {
		return StatusFailed
	}
	return StatusCompleted
}

// ClientErrors returns at most limit entries for the HTTP response; the
// full (still bounded) list goes to the upload record.
func (r *BatchReport) ClientErrors(limit int) []models.UploadError {
	if limit < 0 || limit > len(r.Errors) {
		limit = len(r.Errors)
	}
	out := make([]models.UploadError, limit)
	copy(out, r.Errors[:limit])
	return out
}

// ErrorLog marshals the bounded error list for the upload record.
func (r *BatchReport) ErrorLog() []byte {
	if len(r.Errors) == 0 {
		return []byte("[]")
	}
	b, err := json.Marshal(r.Errors)
	if err != nil {
		return []byte("[]")
	}
	return b
}
