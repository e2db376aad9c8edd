package stock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikart/pos-engine/internal/domain/models"
)

func batch(id string, expiry *time.Time, qty int64) models.BatchRecord {
	return models.BatchRecord{
		ID:           id,
		BatchNumber:  "LOT-" + id,
		Expiry:       expiry,
		AvailableQty: decimal.NewFromInt(qty),
	}
}

func expiryAt(t time.Time) *time.Time {
	return &t
}

func TestSortByExpiry(t *testing.T) {
	now := time.Now()

	t.Run("orders ascending with no-expiry batches last", func(t *testing.T) {
		batches := []models.BatchRecord{
			batch("no-expiry", nil, 10),
			batch("late", expiryAt(now.Add(60*24*time.Hour)), 5),
			batch("soon", expiryAt(now.Add(5*24*time.Hour)), 8),
		}

		SortByExpiry(batches)

		require.Len(t, batches, 3)
		assert.Equal(t, "soon", batches[0].ID)
		assert.Equal(t, "late", batches[1].ID)
		assert.Equal(t, "no-expiry", batches[2].ID)
	})

	t.Run("keeps server order for equal expiries", func(t *testing.T) {
		shared := now.Add(10 * 24 * time.Hour)
		batches := []models.BatchRecord{
			batch("first", expiryAt(shared), 3),
			batch("second", expiryAt(shared), 7),
		}

		SortByExpiry(batches)

		assert.Equal(t, "first", batches[0].ID)
		assert.Equal(t, "second", batches[1].ID)
	})

	t.Run("re-sorting a sorted list is a no-op", func(t *testing.T) {
		batches := []models.BatchRecord{
			batch("a", expiryAt(now.Add(24*time.Hour)), 1),
			batch("b", expiryAt(now.Add(48*time.Hour)), 2),
			batch("c", nil, 3),
		}

		SortByExpiry(batches)
		sorted := make([]models.BatchRecord, len(batches))
		copy(sorted, batches)

		SortByExpiry(batches)
		assert.Equal(t, sorted, batches)
	})
}

func TestBestBatch(t *testing.T) {
	now := time.Now()

	t.Run("picks the earliest-expiring valid batch", func(t *testing.T) {
		batches := []models.BatchRecord{
			batch("b1", expiryAt(now.Add(10*24*time.Hour)), 5),
			batch("b2", expiryAt(now.Add(30*24*time.Hour)), 10),
		}
		SortByExpiry(batches)

		best := BestBatch(batches, now)
		require.NotNil(t, best)
		assert.Equal(t, "b1", best.ID)
	})

	t.Run("treats no-expiry batches as valid but after dated ones", func(t *testing.T) {
		batches := []models.BatchRecord{
			batch("forever", nil, 50),
			batch("dated", expiryAt(now.Add(24*time.Hour)), 2),
		}
		SortByExpiry(batches)

		best := BestBatch(batches, now)
		require.NotNil(t, best)
		assert.Equal(t, "dated", best.ID)
	})

	t.Run("falls back to max quantity when everything expired", func(t *testing.T) {
		batches := []models.BatchRecord{
			batch("old-small", expiryAt(now.Add(-200*24*time.Hour)), 3),
			batch("old-big", expiryAt(now.Add(-30*24*time.Hour)), 9),
		}
		SortByExpiry(batches)

		best := BestBatch(batches, now)
		require.NotNil(t, best)
		assert.Equal(t, "old-big", best.ID)
		assert.True(t, best.ExpiredAt(now))
	})

	t.Run("returns nil for empty input", func(t *testing.T) {
		assert.Nil(t, BestBatch(nil, now))
		assert.Nil(t, BestBatch([]models.BatchRecord{}, now))
	})
}

func TestValidateQuantity(t *testing.T) {
	available := batch("b1", nil, 3)

	t.Run("rejects a missing batch", func(t *testing.T) {
		err := ValidateQuantity(decimal.NewFromInt(1), nil)
		assert.ErrorIs(t, err, ErrNoBatchSelected)
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		err := ValidateQuantity(decimal.Zero, &available)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		err = ValidateQuantity(decimal.NewFromInt(-2), &available)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		empty := batch("b2", nil, 0)
		err := ValidateQuantity(decimal.NewFromInt(1), &empty)
		assert.ErrorIs(t, err, ErrOutOfStock)
	})

	t.Run("reports available quantity when short", func(t *testing.T) {
		err := ValidateQuantity(decimal.NewFromInt(5), &available)

		var short *InsufficientStockError
		require.ErrorAs(t, err, &short)
		assert.True(t, short.Available.Equal(decimal.NewFromInt(3)))
	})

	t.Run("accepts drawing the full batch", func(t *testing.T) {
		assert.NoError(t, ValidateQuantity(decimal.NewFromInt(3), &available))
	})
}
