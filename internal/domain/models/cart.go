package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineState tracks a cart line through the allocate/commit protocol.
type LineState string

const (
	// LineStateAllocated means the inventory service holds a reservation
	// for the line but stock has not been deducted yet.
	LineStateAllocated LineState = "ALLOCATED"
	// LineStateCommitted means the reservation was finalized and stock
	// permanently deducted.
	LineStateCommitted LineState = "COMMITTED"
	// LineStateFailed means the commit attempt was refused; the line stays
	// in the cart so the operator can retry or remove it.
	LineStateFailed LineState = "FAILED"
)

// CartLine is one product entry in an in-progress sale. A line only exists
// after a successful allocate call, so its zero state is ALLOCATED.
type CartLine struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name,omitempty"`
	Qty         decimal.Decimal  `json:"qty"`
	Allocation  []AllocationLine `json:"allocation"`
	State       LineState        `json:"state"`
	// IdempotencyKey is generated once per line and reused on every commit
	// attempt so a retried commit cannot deduct stock twice.
	IdempotencyKey string    `json:"-"`
	AddedAt        time.Time `json:"added_at"`
	FailureReason  string    `json:"failure_reason,omitempty"`
}

// Cart holds the lines of one POS session's in-progress sale, in insertion
// order. Commits at checkout are issued in exactly this order.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// LineOutcome is the terminal result of one cart line inside a checkout.
type LineOutcome struct {
	LineID    string          `json:"line_id"`
	ProductID string          `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	State     LineState       `json:"state"`
	Error     string          `json:"error,omitempty"`
}

// CheckoutReport is the per-line record of a checkout attempt. Completed is
// true only when every line committed; otherwise the failed lines remain in
// the cart for retry.
type CheckoutReport struct {
	Reference  string        `json:"reference"`
	SessionID  string        `json:"session_id"`
	Completed  bool          `json:"completed"`
	Lines      []LineOutcome `json:"lines"`
	FinishedAt time.Time     `json:"finished_at"`
}

// CommittedCount returns how many lines reached COMMITTED.
func (r CheckoutReport) CommittedCount() int {
	n := 0
	for _, l := range r.Lines {
		if l.State == LineStateCommitted {
			n++
		}
	}
	return n
}
