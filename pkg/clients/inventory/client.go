package inventory

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/medikart/pos-engine/internal/config"
	"github.com/medikart/pos-engine/internal/domain/models"
)

// StrategyFEFO is the only allocation strategy this client exercises. The
// protocol carries the strategy name so the backend can grow alternatives
// (LIFO, manual picks) without a client contract change.
const StrategyFEFO = "FEFO"

// Client exposes the inventory service operations used by the engine.
type Client interface {
	// ListBatches reads the current batch list for a product. The returned
	// order is whatever the service sent; sorting is the accessor's job.
	ListBatches(ctx context.Context, productID string) ([]models.BatchRecord, error)
	// Allocate asks the service to reserve a batch breakdown for the
	// requested quantity. A business rejection surfaces as
	// *AllocationRejectedError; anything else is a transport failure.
	Allocate(ctx context.Context, req AllocateRequest) ([]models.AllocationLine, error)
	// Commit finalizes a previously allocated breakdown against a business
	// reference, permanently deducting stock.
	Commit(ctx context.Context, req CommitRequest) error
}

// AllocateRequest names the product, quantity and strategy for a reservation.
type AllocateRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Strategy  string          `json:"strategy"`
}

// CommitRequest finalizes an allocation against a reference. IdempotencyKey
// is generated client-side per cart line so a retried commit cannot deduct
// the same stock twice.
type CommitRequest struct {
	ProductID      string                  `json:"product_id"`
	Allocation     []models.AllocationLine `json:"allocation"`
	Reference      string                  `json:"reference"`
	IdempotencyKey string                  `json:"idempotency_key"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	// fetchClient retries transient transport failures on batch reads.
	// rpcClient never retries: allocate and commit mutate server state.
	fetchClient *resty.Client
	rpcClient   *resty.Client
}

// NewClient builds an inventory API client from the provided configuration.
func NewClient(cfg config.InventoryConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	newBase := func() *resty.Client {
		c := resty.New().
			SetBaseURL(base).
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Timeout)
		if cfg.APIToken != "" {
			c.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIToken))
		}
		return c
	}

	fetchClient := newBase().
		SetRetryCount(cfg.FetchRetries).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Retry only transport-level failures, never HTTP error
			// responses the service actually produced.
			return err != nil
		})

	return &APIClient{
		fetchClient: fetchClient,
		rpcClient:   newBase(),
	}
}

type batchListResponse struct {
	Data  []models.BatchRecord `json:"data"`
	Error string               `json:"error"`
}

type allocateResponse struct {
	OK         bool                    `json:"ok"`
	Allocation []models.AllocationLine `json:"allocation"`
	Error      string                  `json:"error"`
}

type serviceError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e serviceError) text(fallback string) string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	default:
		return fallback
	}
}

// BatchFetchError reports a failed batch read, carrying the service-provided
// message when one was present.
type BatchFetchError struct {
	ProductID  string
	StatusCode int
	Message    string
}

func (e *BatchFetchError) Error() string {
	return fmt.Sprintf("fetch batches for product %s: %s (status %d)", e.ProductID, e.Message, e.StatusCode)
}

// AllocationRejectedError is a business rejection of an allocate request:
// the service answered but refused the reservation. The message is meant to
// be shown to the operator verbatim.
type AllocationRejectedError struct {
	Message string
}

func (e *AllocationRejectedError) Error() string {
	return e.Message
}

// CommitFailedError reports a refused or failed commit call.
type CommitFailedError struct {
	StatusCode int
	Message    string
}

func (e *CommitFailedError) Error() string {
	return fmt.Sprintf("commit refused: %s (status %d)", e.Message, e.StatusCode)
}

// ListBatches reads the batch list for a product.
func (c *APIClient) ListBatches(ctx context.Context, productID string) ([]models.BatchRecord, error) {
	result := new(batchListResponse)
	svcErr := new(serviceError)

	resp, err := c.fetchClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(svcErr).
		Get(fmt.Sprintf("/api/hms/products/%s/batches", productID))
	if err != nil {
		return nil, fmt.Errorf("fetch batches: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &BatchFetchError{
			ProductID:  productID,
			StatusCode: resp.StatusCode(),
			Message:    svcErr.text("failed to fetch batches"),
		}
	}

	return result.Data, nil
}

// Allocate reserves a batch breakdown for the requested quantity. The
// response allocation is verified against the requested quantity before it
// is handed back: a breakdown that does not add up is never usable.
func (c *APIClient) Allocate(ctx context.Context, req AllocateRequest) ([]models.AllocationLine, error) {
	if req.Strategy == "" {
		req.Strategy = StrategyFEFO
	}

	result := new(allocateResponse)
	rejection := new(allocateResponse)

	resp, err := c.rpcClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(rejection).
		Post("/api/stock/allocate")
	if err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		if rejection.Error != "" {
			return nil, &AllocationRejectedError{Message: rejection.Error}
		}
		return nil, fmt.Errorf("allocate: inventory service returned status %d", resp.StatusCode())
	}

	if !result.OK {
		message := result.Error
		if message == "" {
			message = "allocation refused"
		}
		return nil, &AllocationRejectedError{Message: message}
	}

	if total := models.AllocationTotal(result.Allocation); !total.Equal(req.Quantity) {
		return nil, fmt.Errorf("allocate: breakdown sums to %s, requested %s", total, req.Quantity)
	}

	return result.Allocation, nil
}

// Commit finalizes an allocation. The response body is treated as opaque;
// only the HTTP status decides success.
func (c *APIClient) Commit(ctx context.Context, req CommitRequest) error {
	svcErr := new(serviceError)

	resp, err := c.rpcClient.R().
		SetContext(ctx).
		SetBody(req).
		SetError(svcErr).
		Post("/api/stock/commit")
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return &CommitFailedError{
			StatusCode: resp.StatusCode(),
			Message:    svcErr.text("commit rejected by inventory service"),
		}
	}

	return nil
}
