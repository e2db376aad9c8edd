package models

import "time"

// SaleRecord is the journal entry persisted for every checkout attempt.
// Quantities are stored as strings to keep the document precise and
// driver-agnostic.
type SaleRecord struct {
	Reference  string           `bson:"reference" json:"reference"`
	SessionID  string           `bson:"session_id" json:"session_id"`
	Completed  bool             `bson:"completed" json:"completed"`
	Lines      []SaleLineRecord `bson:"lines" json:"lines"`
	RecordedAt time.Time        `bson:"recorded_at" json:"recorded_at"`
}

// SaleLineRecord captures one line's terminal state and batch draws.
type SaleLineRecord struct {
	LineID      string          `bson:"line_id" json:"line_id"`
	ProductID   string          `bson:"product_id" json:"product_id"`
	ProductName string          `bson:"product_name,omitempty" json:"product_name,omitempty"`
	Qty         string          `bson:"qty" json:"qty"`
	State       string          `bson:"state" json:"state"`
	Error       string          `bson:"error,omitempty" json:"error,omitempty"`
	Batches     []SaleBatchDraw `bson:"batches" json:"batches"`
}

// SaleBatchDraw is one batch deduction inside a committed line.
type SaleBatchDraw struct {
	BatchID string `bson:"batch_id" json:"batch_id"`
	Qty     string `bson:"qty" json:"qty"`
}

// DailySalesSummary aggregates the journal for one calendar day.
type DailySalesSummary struct {
	Day      time.Time
	Sales    int
	Products []ProductSalesTotal
}

// ProductSalesTotal is the total committed quantity of one product for a day.
type ProductSalesTotal struct {
	ProductID   string
	ProductName string
	TotalQty    string
	LineCount   int
}
