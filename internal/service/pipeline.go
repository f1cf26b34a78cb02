package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/partslink/backend/internal/models"
	"github.com/partslink/backend/internal/spreadsheet"
)

// Statement-size bounds for the chunked persistence calls.
const (
	customerChunkSize    = 500
	transactionChunkSize = 200
	itemChunkSize        = 300
)

// Storage is the persistence surface the sales pipeline drives. *db.Store
// implements it; pipeline tests use an in-memory fake.
type Storage interface {
	UpsertCustomers(ctx context.Context, batch []models.CustomerUpsert) error
	CustomerIDsByNo(ctx context.Context, customerNos []string) (map[string]int64, error)
	UpsertTransactions(ctx context.Context, batch []models.Transaction) (map[string]int64, error)
	DeleteTransactionItems(ctx context.Context, transactionIDs []int64) error
	InsertTransactionItems(ctx context.Context, batch []models.TransactionItem) error
	RecalculateLoyalty(ctx context.Context, customerID int64) error
}

type SalesPipeline struct {
	Store  Storage
	Logger zerolog.Logger
}

// Run processes one decoded sales upload end to end: validate headers,
// normalize, group by invoice, resolve customers, persist in chunks and
// recalculate loyalty for every touched customer. Failures below the batch
// level are converted into report entries; only a SchemaError or storage
// I/O failure returns a non-nil error.
func (p *SalesPipeline) Run(ctx context.Context, headers []string, rows []spreadsheet.Row) (*BatchReport, error) {
	report := NewBatchReport(len(rows))

	if err := ValidateSalesHeaders(headers); err != nil {
		return nil, err
	}

	normalized := NormalizeRows(rows)
	groups := GroupByInvoice(normalized)

	var drafts []*InvoiceDraft
	for _, g := range groups {
		draft, err := AggregateInvoice(g)
		if err != nil {
			first, last := groupSpan(g)
			report.Fail(formatRowRange(first, last), len(g.Rows), err)
			continue
		}
		d := draft
		drafts = append(drafts, &d)
	}

	customerIDs, err := p.resolveCustomers(ctx, groups)
	if err != nil {
		return nil, err
	}
	for _, d := range drafts {
		if id, ok := customerIDs[d.Tx.CustomerNo]; ok {
			cid := id
			d.Tx.CustomerID = &cid
		}
	}

	failed := map[string]bool{}
	txIDs := p.persistHeaders(ctx, drafts, failed, report)

	// The full id set must be known before the single set-based item
	// delete; no delete may interleave with a header chunk still pending.
	allIDs := make([]int64, 0, len(txIDs))
	for _, id := range txIDs {
		allIDs = append(allIDs, id)
	}
	if len(allIDs) > 0 {
		if err := p.Store.DeleteTransactionItems(ctx, allIDs); err != nil {
			return nil, fmt.Errorf("delete transaction items: %w", err)
		}
	}

	p.persistItems(ctx, drafts, txIDs, failed, report)

	touched := map[int64]struct{}{}
	for _, d := range drafts {
		if failed[d.Tx.InvoiceNo] {
			continue
		}
		report.Success(d.RowCount)
		if d.Tx.CustomerID != nil {
			touched[*d.Tx.CustomerID] = struct{}{}
		}
	}

	p.recalculateLoyalty(ctx, touched)

	p.Logger.Info().
		Int("rows", report.RowsProcessed).
		Int("success", report.SuccessCount).
		Int("failed", report.FailedCount).
		Int("invoices", len(drafts)).
		Int("customers", len(touched)).
		Msg("sales batch processed")
	return report, nil
}

// resolveCustomers upserts every customer referenced by the batch and
// returns the customer-number → internal-id map. The map is read back
// rather than taken from upsert results because customers referenced but
// untouched by this upsert still need ids.
func (p *SalesPipeline) resolveCustomers(ctx context.Context, groups []InvoiceGroup) (map[string]int64, error) {
	upserts := CollectCustomers(groups)
	if len(upserts) == 0 {
		return map[string]int64{}, nil
	}
	for _, chunk := range Chunks(upserts, customerChunkSize) {
		if err := p.Store.UpsertCustomers(ctx, chunk); err != nil {
			return nil, fmt.Errorf("upsert customers: %w", err)
		}
	}
	nos := make([]string, len(upserts))
	for i, u := range upserts {
		nos[i] = u.CustomerNo
	}
	ids, err := p.Store.CustomerIDsByNo(ctx, nos)
	if err != nil {
		return nil, fmt.Errorf("read customer ids: %w", err)
	}
	return ids, nil
}

// persistHeaders upserts transaction headers in chunks. A failed chunk is
// retried invoice by invoice so one bad invoice never sinks the rest of
// its chunk.
func (p *SalesPipeline) persistHeaders(ctx context.Context, drafts []*InvoiceDraft, failed map[string]bool, report *BatchReport) map[string]int64 {
	txIDs := map[string]int64{}
	for _, chunk := range Chunks(drafts, transactionChunkSize) {
		batch := make([]models.Transaction, len(chunk))
		for i, d := range chunk {
			batch[i] = d.Tx
		}
		ids, err := p.Store.UpsertTransactions(ctx, batch)
		if err == nil {
			for no, id := range ids {
				txIDs[no] = id
			}
			continue
		}
		p.Logger.Warn().Err(err).Int("chunk_size", len(chunk)).Msg("transaction chunk failed, retrying per invoice")
		for _, d := range chunk {
			ids, err := p.Store.UpsertTransactions(ctx, []models.Transaction{d.Tx})
			if err != nil {
				failed[d.Tx.InvoiceNo] = true
				report.Fail(d.RowRange(), d.RowCount, err)
				continue
			}
			for no, id := range ids {
				txIDs[no] = id
			}
		}
	}
	return txIDs
}

// persistItems bulk-inserts the new item sets, chunking whole invoices up
// to itemChunkSize rows. A failed chunk is retried per invoice; an invoice
// whose items cannot be written counts as failed even though its header
// was already upserted.
func (p *SalesPipeline) persistItems(ctx context.Context, drafts []*InvoiceDraft, txIDs map[string]int64, failed map[string]bool, report *BatchReport) {
	type invoiceItems struct {
		draft *InvoiceDraft
		items []models.TransactionItem
	}

	var pending []invoiceItems
	for _, d := range drafts {
		if failed[d.Tx.InvoiceNo] {
			continue
		}
		id, ok := txIDs[d.Tx.InvoiceNo]
		if !ok {
			continue
		}
		items := make([]models.TransactionItem, len(d.Items))
		for i, item := range d.Items {
			item.TransactionID = id
			items[i] = item
		}
		pending = append(pending, invoiceItems{draft: d, items: items})
	}

	flush := func(batch []invoiceItems) {
		var rows []models.TransactionItem
		for _, b := range batch {
			rows = append(rows, b.items...)
		}
		if err := p.Store.InsertTransactionItems(ctx, rows); err == nil {
			return
		}
		for _, b := range batch {
			if err := p.Store.InsertTransactionItems(ctx, b.items); err != nil {
				failed[b.draft.Tx.InvoiceNo] = true
				report.Fail(b.draft.RowRange(), b.draft.RowCount, err)
			}
		}
	}

	var batch []invoiceItems
	size := 0
	for _, inv := range pending {
		if size > 0 && size+len(inv.items) > itemChunkSize {
			flush(batch)
			batch = nil
			size = 0
		}
		batch = append(batch, inv)
		size += len(inv.items)
	}
	if len(batch) > 0 {
		flush(batch)
	}
}

// recalculateLoyalty recomputes lifetime points and tier for every touched
// customer. Per-customer failures are logged and swallowed; totals stay
// stale until the next upload touching that customer.
func (p *SalesPipeline) recalculateLoyalty(ctx context.Context, touched map[int64]struct{}) {
	ids := make([]int64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := p.Store.RecalculateLoyalty(ctx, id); err != nil {
			p.Logger.Warn().Err(err).Int64("customer_id", id).Msg("loyalty recalculation failed")
		}
	}
}

// CollectCustomers scans all invoice groups once and produces the
// deduplicated upsert set. The first-seen name wins unless it was empty
// and a later row supplies one.
func CollectCustomers(groups []InvoiceGroup) []models.CustomerUpsert {
	var order []string
	names := map[string]string{}
	for _, g := range groups {
		for _, row := range g.Rows {
			no := strings.TrimSpace(row.Fields[FieldCustomerNo])
			if no == "" {
				continue
			}
			name := strings.TrimSpace(row.Fields[FieldCustomerName])
			existing, seen := names[no]
			if !seen {
				order = append(order, no)
				names[no] = name
				continue
			}
			if existing == "" && name != "" {
				names[no] = name
			}
		}
	}
	out := make([]models.CustomerUpsert, 0, len(order))
	for _, no := range order {
		out = append(out, models.CustomerUpsert{CustomerNo: no, Name: names[no]})
	}
	return out
}

func groupSpan(g InvoiceGroup) (int, int) {
	first, last := g.Rows[0].Line, g.Rows[0].Line
	for _, row := range g.Rows {
		if row.Line < first {
			first = row.Line
		}
		if row.Line > last {
			last = row.Line
		}
	}
	return first, last
}
