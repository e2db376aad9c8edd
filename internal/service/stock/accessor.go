package stock

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/medikart/pos-engine/internal/domain/models"
	"github.com/medikart/pos-engine/pkg/clients/inventory"
)

// ErrMissingProductID indicates a batch read was attempted without a product.
var ErrMissingProductID = errors.New("product id must not be empty")

// Accessor reads batch lists from the inventory service and returns them in
// canonical FEFO order, ready for policy evaluation.
type Accessor struct {
	client inventory.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewAccessor wires a batch accessor backed by the given inventory client.
func NewAccessor(client inventory.Client, logger *zap.Logger) *Accessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accessor{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// ListBatches fetches and sorts the batch list for a product. On failure the
// caller gets an empty list alongside the error so display code can always
// range over the result.
func (a *Accessor) ListBatches(ctx context.Context, productID string) ([]models.BatchRecord, error) {
	if productID == "" {
		return []models.BatchRecord{}, ErrMissingProductID
	}

	batches, err := a.client.ListBatches(ctx, productID)
	if err != nil {
		a.logger.Warn("batch fetch failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return []models.BatchRecord{}, err
	}

	SortByExpiry(batches)

	a.logger.Debug("batches fetched",
		zap.String("product_id", productID),
		zap.Int("count", len(batches)))

	return batches, nil
}

// Suggest fetches the batch list and pairs it with the FEFO pick the
// terminal should preselect. The expired flag marks the expired-stock
// fallback so the operator can see what they are about to draw from.
func (a *Accessor) Suggest(ctx context.Context, productID string) ([]models.BatchRecord, *models.BatchRecord, bool, error) {
	batches, err := a.ListBatches(ctx, productID)
	if err != nil {
		return batches, nil, false, err
	}

	now := a.now()
	best := BestBatch(batches, now)
	expired := best != nil && best.ExpiredAt(now)
	return batches, best, expired, nil
}
