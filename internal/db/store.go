package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partslink/backend/internal/loyalty"
	"github.com/partslink/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpsertCustomers writes one bounded batch keyed by customer_no. New
// customers start at zero points and the base tier via column defaults; on
// conflict only the name (when non-empty) and updated_at change, so
// loyalty fields are never clobbered by an upload.
func (s *Store) UpsertCustomers(ctx context.Context, batch []models.CustomerUpsert) error {
	if len(batch) == 0 {
		return nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(batch)*2)
	sb.WriteString(`INSERT INTO customers (customer_no, name) VALUES `)
	for i, c := range batch {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "($%d,$%d)", i*2+1, i*2+2)
		args = append(args, c.CustomerNo, c.Name)
	}
	sb.WriteString(` ON CONFLICT (customer_no) DO UPDATE SET
		name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE customers.name END,
		updated_at = NOW()`)
	_, err := s.Pool.Exec(ctx, sb.String(), args...)
	return err
}

func (s *Store) CustomerIDsByNo(ctx context.Context, customerNos []string) (map[string]int64, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, customer_no FROM customers WHERE customer_no = ANY($1)`, customerNos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var id int64
		var no string
		if err := rows.Scan(&id, &no); err != nil {
			return nil, err
		}
		out[no] = id
	}
	return out, rows.Err()
}

// UpsertTransactions writes one bounded batch keyed by invoice_no,
// overwriting every derived field on conflict, and returns the
// invoice-number → internal-id mapping for item persistence.
func (s *Store) UpsertTransactions(ctx context.Context, batch []models.Transaction) (map[string]int64, error) {
	if len(batch) == 0 {
		return map[string]int64{}, nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(batch)*11)
	sb.WriteString(`INSERT INTO transactions
		(invoice_no, invoice_date, customer_id, customer_no, invoice_type,
		 total_amount, discount, net_sales, gp_percent, gross_profit, points_earned) VALUES `)
	for i, t := range batch {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 11
		sb.WriteString("(")
		for j := 1; j <= 11; j++ {
			if j > 1 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteString(")")
		args = append(args, t.InvoiceNo, t.InvoiceDate, t.CustomerID, t.CustomerNo, t.InvoiceType,
			t.TotalAmount, t.Discount, t.NetSales, t.GPPercent, t.GrossProfit, t.PointsEarned)
	}
	sb.WriteString(` ON CONFLICT (invoice_no) DO UPDATE SET
		invoice_date = EXCLUDED.invoice_date,
		customer_id = EXCLUDED.customer_id,
		customer_no = EXCLUDED.customer_no,
		invoice_type = EXCLUDED.invoice_type,
		total_amount = EXCLUDED.total_amount,
		discount = EXCLUDED.discount,
		net_sales = EXCLUDED.net_sales,
		gp_percent = EXCLUDED.gp_percent,
		gross_profit = EXCLUDED.gross_profit,
		points_earned = EXCLUDED.points_earned
		RETURNING id, invoice_no`)

	rows, err := s.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64, len(batch))
	for rows.Next() {
		var id int64
		var no string
		if err := rows.Scan(&id, &no); err != nil {
			return nil, err
		}
		out[no] = id
	}
	return out, rows.Err()
}

// DeleteTransactionItems removes the prior item sets of every transaction
// touched by a batch in one set-based statement.
func (s *Store) DeleteTransactionItems(ctx context.Context, transactionIDs []int64) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	_, err := s.Pool.Exec(ctx, `DELETE FROM transaction_items WHERE transaction_id = ANY($1::bigint[])`, transactionIDs)
	return err
}

func (s *Store) InsertTransactionItems(ctx context.Context, batch []models.TransactionItem) error {
	if len(batch) == 0 {
		return nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(batch)*10)
	sb.WriteString(`INSERT INTO transaction_items
		(transaction_id, part_no, part_name, quantity, unit_price, subtotal,
		 discount, cost_price, gross_profit, material_group) VALUES `)
	for i, item := range batch {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 10
		sb.WriteString("(")
		for j := 1; j <= 10; j++ {
			if j > 1 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteString(")")
		args = append(args, item.TransactionID, item.PartNo, item.PartName, item.Quantity, item.UnitPrice,
			item.Subtotal, item.Discount, item.CostPrice, item.GrossProfit, item.MaterialGroup)
	}
	_, err := s.Pool.Exec(ctx, sb.String(), args...)
	return err
}

// RecalculateLoyalty recomputes a customer's lifetime points and tier from
// the persisted transaction history. The aggregate read and the write
// happen in one transaction holding a row lock on the customer, so
// concurrent uploads touching the same customer serialize here instead of
// losing updates.
func (s *Store) RecalculateLoyalty(ctx context.Context, customerID int64) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, customerID).Scan(&id); err != nil {
			return err
		}
		var totalPoints int64
		var lifetimeNetSales float64
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(points_earned), 0), COALESCE(SUM(net_sales), 0)
			FROM transactions WHERE customer_id = $1
		`, customerID).Scan(&totalPoints, &lifetimeNetSales)
		if err != nil {
			return err
		}
		tier := loyalty.TierFor(lifetimeNetSales)
		_, err = tx.Exec(ctx, `UPDATE customers SET total_points = $1, tier = $2, updated_at = NOW() WHERE id = $3`,
			totalPoints, tier, customerID)
		return err
	})
}

func (s *Store) UpsertPart(ctx context.Context, p models.Part) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO parts (part_no, part_name, part_group, material_group, qty, amount, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		ON CONFLICT (part_no) DO UPDATE SET
			part_name = EXCLUDED.part_name,
			part_group = EXCLUDED.part_group,
			material_group = EXCLUDED.material_group,
			qty = EXCLUDED.qty,
			amount = EXCLUDED.amount,
			last_updated = NOW()
	`, p.PartNo, p.PartName, p.PartGroup, p.MaterialGroup, p.Qty, p.Amount)
	return err
}

func (s *Store) CreateUpload(ctx context.Context, uploadedBy, fileType, fileName string, rowsProcessed int) (int64, error) {
	var id int64
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO upload_history (uploaded_by, file_type, file_name, rows_processed, status)
		VALUES ($1, $2, $3, $4, 'processing') RETURNING id
	`, uploadedBy, fileType, fileName, rowsProcessed).Scan(&id)
	return id, err
}

func (s *Store) FinishUpload(ctx context.Context, id int64, successCount, failedCount int, status string, errorLog []byte) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE upload_history SET success_count = $1, failed_count = $2, status = $3, error_log = $4, finished_at = NOW() WHERE id = $5
	`, successCount, failedCount, status, errorLog, id)
	return err
}

func (s *Store) ListUploads(ctx context.Context, fileType, status string, limit, offset int) ([]models.UploadRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, uploaded_by, file_type, file_name, rows_processed, success_count, failed_count, status, error_log, created_at
		FROM upload_history`
	var args []any
	var wheres []string
	if fileType != "" {
		args = append(args, fileType)
		wheres = append(wheres, fmt.Sprintf("file_type = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UploadRecord
	for rows.Next() {
		var u models.UploadRecord
		if err := rows.Scan(&u.ID, &u.UploadedBy, &u.FileType, &u.FileName, &u.RowsProcessed,
			&u.SuccessCount, &u.FailedCount, &u.Status, &u.ErrorLog, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) InsertActivityLog(ctx context.Context, entry models.ActivityLog) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO activity_logs (user_name, action, description, ip_address)
		VALUES ($1, $2, $3, $4)
	`, entry.UserName, entry.Action, entry.Description, entry.IPAddress)
	return err
}

func (s *Store) CreateCustomer(ctx context.Context, customerNo, name string) (models.Customer, error) {
	var c models.Customer
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO customers (customer_no, name) VALUES ($1, $2)
		RETURNING id, customer_no, name, total_points, tier, created_at, updated_at
	`, customerNo, name).Scan(&c.ID, &c.CustomerNo, &c.Name, &c.TotalPoints, &c.Tier, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context, search, tier string, limit, offset int) ([]models.Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, customer_no, name, total_points, tier, created_at, updated_at FROM customers`
	var args []any
	var wheres []string
	if search != "" {
		args = append(args, "%"+search+"%")
		wheres = append(wheres, fmt.Sprintf("(customer_no ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if tier != "" {
		args = append(args, tier)
		wheres = append(wheres, fmt.Sprintf("tier = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY total_points DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.CustomerNo, &c.Name, &c.TotalPoints, &c.Tier, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCustomer returns the customer row plus its lifetime net sales, which
// the API needs for next-tier progress.
func (s *Store) GetCustomer(ctx context.Context, id int64) (models.Customer, float64, error) {
	var c models.Customer
	var lifetimeNetSales float64
	err := s.Pool.QueryRow(ctx, `
		SELECT c.id, c.customer_no, c.name, c.total_points, c.tier, c.created_at, c.updated_at,
			COALESCE((SELECT SUM(t.net_sales) FROM transactions t WHERE t.customer_id = c.id), 0)
		FROM customers c WHERE c.id = $1
	`, id).Scan(&c.ID, &c.CustomerNo, &c.Name, &c.TotalPoints, &c.Tier, &c.CreatedAt, &c.UpdatedAt, &lifetimeNetSales)
	return c, lifetimeNetSales, err
}

func (s *Store) ListTransactions(ctx context.Context, search string, customerID int64, from, to time.Time, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, invoice_no, invoice_date, customer_id, customer_no, invoice_type,
		total_amount, discount, net_sales, gp_percent, gross_profit, points_earned FROM transactions`
	var args []any
	var wheres []string
	if search != "" {
		args = append(args, "%"+search+"%")
		wheres = append(wheres, fmt.Sprintf("(invoice_no ILIKE $%d OR customer_no ILIKE $%d)", len(args), len(args)))
	}
	if customerID > 0 {
		args = append(args, customerID)
		wheres = append(wheres, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if !from.IsZero() {
		args = append(args, from)
		wheres = append(wheres, fmt.Sprintf("invoice_date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		wheres = append(wheres, fmt.Sprintf("invoice_date <= $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY invoice_date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (models.Transaction, []models.TransactionItem, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, invoice_no, invoice_date, customer_id, customer_no, invoice_type,
			total_amount, discount, net_sales, gp_percent, gross_profit, points_earned
		FROM transactions WHERE id = $1
	`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return models.Transaction{}, nil, err
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, transaction_id, part_no, part_name, quantity, unit_price, subtotal,
			discount, cost_price, gross_profit, material_group
		FROM transaction_items WHERE transaction_id = $1 ORDER BY id ASC
	`, id)
	if err != nil {
		return models.Transaction{}, nil, err
	}
	defer rows.Close()

	var items []models.TransactionItem
	for rows.Next() {
		var item models.TransactionItem
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.PartNo, &item.PartName, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.Discount, &item.CostPrice, &item.GrossProfit, &item.MaterialGroup); err != nil {
			return models.Transaction{}, nil, err
		}
		items = append(items, item)
	}
	return t, items, rows.Err()
}

func (s *Store) DashboardSummary(ctx context.Context) (models.DashboardSummary, error) {
	var summary models.DashboardSummary
	err := s.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM transactions),
			COALESCE((SELECT SUM(net_sales) FROM transactions), 0),
			(SELECT COUNT(*) FROM upload_history WHERE status = 'processing')
	`).Scan(&summary.Customers, &summary.Transactions, &summary.TotalNetSales, &summary.PendingUploads)
	return summary, err
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	var invoiceDate time.Time
	err := row.Scan(&t.ID, &t.InvoiceNo, &invoiceDate, &t.CustomerID, &t.CustomerNo, &t.InvoiceType,
		&t.TotalAmount, &t.Discount, &t.NetSales, &t.GPPercent, &t.GrossProfit, &t.PointsEarned)
	if err != nil {
		return models.Transaction{}, err
	}
	t.InvoiceDate = invoiceDate
	return t, nil
}
