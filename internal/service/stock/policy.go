package stock

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medikart/pos-engine/internal/domain/models"
)

// ErrNoBatchSelected indicates a quantity was validated without a batch.
var ErrNoBatchSelected = errors.New("no batch selected")

// ErrInvalidQuantity indicates the requested quantity is zero or negative.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrOutOfStock indicates the chosen batch has nothing left to draw.
var ErrOutOfStock = errors.New("selected batch is out of stock")

// InsufficientStockError indicates the batch cannot cover the requested
// quantity; Available reports what the batch can still supply.
type InsufficientStockError struct {
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: only %s available", e.Available)
}

// SortByExpiry orders batches ascending by expiry with no-expiry batches
// last. The sort is stable so batches sharing an expiry keep the order the
// inventory service sent them in. Sorting an already-sorted list is a no-op.
func SortByExpiry(batches []models.BatchRecord) {
	sort.SliceStable(batches, func(i, j int) bool {
		switch {
		case !batches[i].HasExpiry():
			return false
		case !batches[j].HasExpiry():
			return true
		default:
			return batches[i].Expiry.Before(*batches[j].Expiry)
		}
	})
}

// BestBatch picks the default draw from a list sorted by SortByExpiry: the
// first batch still valid at the given instant, which by construction is the
// soonest-to-expire valid one. When every batch has expired it falls back to
// the largest remaining quantity so a sale is not blocked purely by expiry
// bookkeeping; callers should flag that choice to the operator. Returns nil
// for an empty list.
func BestBatch(batches []models.BatchRecord, at time.Time) *models.BatchRecord {
	if len(batches) == 0 {
		return nil
	}

	for i := range batches {
		if !batches[i].ExpiredAt(at) {
			return &batches[i]
		}
	}

	best := &batches[0]
	for i := range batches {
		if batches[i].AvailableQty.GreaterThan(best.AvailableQty) {
			best = &batches[i]
		}
	}
	return best
}

// ValidateQuantity is the client-side pre-flight check for an explicit
// (quantity, batch) pairing. It exists for immediate operator feedback only;
// the inventory service remains the authority during allocate.
func ValidateQuantity(qty decimal.Decimal, batch *models.BatchRecord) error {
	if batch == nil {
		return ErrNoBatchSelected
	}
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	if !batch.AvailableQty.IsPositive() {
		return ErrOutOfStock
	}
	if qty.GreaterThan(batch.AvailableQty) {
		return &InsufficientStockError{Available: batch.AvailableQty}
	}
	return nil
}
