package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchRecord is one receivable lot of a product as reported by the
// inventory service. A nil Expiry means the batch never expires.
type BatchRecord struct {
	ID           string          `json:"id"`
	BatchNumber  string          `json:"batch_number"`
	Expiry       *time.Time      `json:"expiry,omitempty"`
	AvailableQty decimal.Decimal `json:"available_qty"`
}

// HasExpiry reports whether the batch carries an expiry date.
func (b BatchRecord) HasExpiry() bool {
	return b.Expiry != nil && !b.Expiry.IsZero()
}

// ExpiredAt reports whether the batch is past its expiry at the given instant.
// Batches without an expiry date never expire.
func (b BatchRecord) ExpiredAt(at time.Time) bool {
	return b.HasExpiry() && b.Expiry.Before(at)
}

// AllocationLine is one (batch, quantity) draw inside an allocation, either
// proposed by the inventory service or finalized during commit.
type AllocationLine struct {
	BatchID    string          `json:"batch_id"`
	Qty        decimal.Decimal `json:"qty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// AllocationTotal sums the drawn quantity across a set of allocation lines.
func AllocationTotal(lines []AllocationLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Qty)
	}
	return total
}
