package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikart/pos-engine/internal/config"
	"github.com/medikart/pos-engine/internal/domain/models"
)

func testClient(t *testing.T, handler http.Handler) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.InventoryConfig{
		BaseURL:      server.URL,
		Timeout:      5 * time.Second,
		FetchRetries: 0,
	})
}

func TestListBatches(t *testing.T) {
	t.Run("decodes the batch list", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/hms/products/prod-1/batches", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[
				{"id":"b1","batch_number":"LOT-1","expiry":"2025-03-01T00:00:00Z","available_qty":"5"},
				{"id":"b2","batch_number":"LOT-2","available_qty":"12"}
			]}`))
		}))

		batches, err := client.ListBatches(context.Background(), "prod-1")
		require.NoError(t, err)

		require.Len(t, batches, 2)
		assert.Equal(t, "b1", batches[0].ID)
		assert.True(t, batches[0].HasExpiry())
		assert.True(t, batches[0].AvailableQty.Equal(decimal.NewFromInt(5)))
		assert.False(t, batches[1].HasExpiry())
	})

	t.Run("carries the service message on failure", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"unknown product"}`))
		}))

		_, err := client.ListBatches(context.Background(), "prod-x")

		var fetchErr *BatchFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.Equal(t, "unknown product", fetchErr.Message)
	})

	t.Run("falls back to a generic message", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.ListBatches(context.Background(), "prod-x")

		var fetchErr *BatchFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "failed to fetch batches", fetchErr.Message)
	})
}

func TestAllocate(t *testing.T) {
	t.Run("returns the breakdown verbatim", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/stock/allocate", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "prod-1", body["product_id"])
			assert.Equal(t, "FEFO", body["strategy"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"allocation":[
				{"batch_id":"b1","qty":"2","expiry_date":"2025-03-01T00:00:00Z"}
			]}`))
		}))

		allocation, err := client.Allocate(context.Background(), AllocateRequest{
			ProductID: "prod-1",
			Quantity:  decimal.NewFromInt(2),
		})
		require.NoError(t, err)

		require.Len(t, allocation, 1)
		assert.Equal(t, "b1", allocation[0].BatchID)
		assert.True(t, allocation[0].Qty.Equal(decimal.NewFromInt(2)))
	})

	t.Run("maps ok false to a rejection with the message intact", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":false,"error":"insufficient stock"}`))
		}))

		_, err := client.Allocate(context.Background(), AllocateRequest{
			ProductID: "prod-2",
			Quantity:  decimal.NewFromInt(100),
		})

		var rejection *AllocationRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, "insufficient stock", rejection.Message)
	})

	t.Run("rejects a breakdown that does not sum to the request", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"allocation":[{"batch_id":"b1","qty":"1"}]}`))
		}))

		_, err := client.Allocate(context.Background(), AllocateRequest{
			ProductID: "prod-1",
			Quantity:  decimal.NewFromInt(3),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sums to 1")
	})
}

func TestCommit(t *testing.T) {
	expiry := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	allocation := []models.AllocationLine{
		{BatchID: "b1", Qty: decimal.NewFromInt(2), ExpiryDate: &expiry},
	}

	t.Run("sends the full commit payload", func(t *testing.T) {
		var got map[string]any
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/stock/commit", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"done"}`))
		}))

		err := client.Commit(context.Background(), CommitRequest{
			ProductID:      "P1",
			Allocation:     allocation,
			Reference:      "INV-100",
			IdempotencyKey: "key-1",
		})
		require.NoError(t, err)

		assert.Equal(t, "P1", got["product_id"])
		assert.Equal(t, "INV-100", got["reference"])
		assert.Equal(t, "key-1", got["idempotency_key"])
		require.Len(t, got["allocation"], 1)
	})

	t.Run("surfaces a refused commit", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"allocation expired"}`))
		}))

		err := client.Commit(context.Background(), CommitRequest{
			ProductID:  "P1",
			Allocation: allocation,
			Reference:  "INV-101",
		})

		var commitErr *CommitFailedError
		require.ErrorAs(t, err, &commitErr)
		assert.Equal(t, http.StatusConflict, commitErr.StatusCode)
		assert.Equal(t, "allocation expired", commitErr.Message)
	})
}
