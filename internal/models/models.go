package models

import "time"

type Customer struct {
	ID          int64     `json:"id"`
	CustomerNo  string    `json:"customer_no"`
	Name        string    `json:"name"`
	TotalPoints int64     `json:"total_points"`
	Tier        string    `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerUpsert is the deduplicated (customer_no, name) pair a sales batch
// feeds into the chunked customer upsert.
type CustomerUpsert struct {
	CustomerNo string `json:"customer_no"`
	Name       string `json:"name"`
}

type Transaction struct {
	ID           int64     `json:"id"`
	InvoiceNo    string    `json:"invoice_no"`
	InvoiceDate  time.Time `json:"invoice_date"`
	CustomerID   *int64    `json:"customer_id"`
	CustomerNo   string    `json:"customer_no"`
	InvoiceType  string    `json:"invoice_type"`
	TotalAmount  float64   `json:"total_amount"`
	Discount     float64   `json:"discount"`
	NetSales     float64   `json:"net_sales"`
	GPPercent    float64   `json:"gp_percent"`
	GrossProfit  float64   `json:"gross_profit"`
	PointsEarned int64     `json:"points_earned"`
}

type TransactionItem struct {
	ID            int64   `json:"id"`
	TransactionID int64   `json:"transaction_id"`
	PartNo        string  `json:"part_no"`
	PartName      string  `json:"part_name"`
	Quantity      float64 `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	CostPrice     float64 `json:"cost_price"`
	GrossProfit   float64 `json:"gross_profit"`
	MaterialGroup string  `json:"material_group"`
}

type Part struct {
	ID            int64     `json:"id"`
	PartNo        string    `json:"part_no"`
	PartName      string    `json:"part_name"`
	PartGroup     string    `json:"part_group"`
	MaterialGroup string    `json:"material_group"`
	Qty           float64   `json:"qty"`
	Amount        float64   `json:"amount"`
	LastUpdated   time.Time `json:"last_updated"`
}

type UploadRecord struct {
	ID            int64     `json:"id"`
	UploadedBy    string    `json:"uploaded_by"`
	FileType      string    `json:"file_type"`
	FileName      string    `json:"file_name"`
	RowsProcessed int       `json:"rows_processed"`
	SuccessCount  int       `json:"success_count"`
	FailedCount   int       `json:"failed_count"`
	Status        string    `json:"status"`
	ErrorLog      []byte    `json:"error_log,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// UploadError is one entry of an upload's bounded error log. Row holds a
// spreadsheet row range ("7" or "7-12") so invoice-level failures keep
// their full span visible.
type UploadError struct {
	Row   string `json:"row"`
	Error string `json:"error"`
}

type ActivityLog struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"user_name"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}

type DashboardSummary struct {
	Customers      int64   `json:"customers"`
	Transactions   int64   `json:"transactions"`
	TotalNetSales  float64 `json:"total_net_sales"`
	PendingUploads int64   `json:"pending_uploads"`
}
