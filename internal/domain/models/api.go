package models

import "github.com/shopspring/decimal"

// AddItemRequest is the payload for adding a product line to a session cart.
type AddItemRequest struct {
	ProductID   string          `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CheckoutRequest finalizes a session cart against a business reference,
// typically an invoice number.
type CheckoutRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// BatchListResponse is returned by the batches endpoint: the sorted batch
// list plus the FEFO suggestion the terminal should preselect. BestExpired
// flags the expired-stock fallback so the operator sees it.
type BatchListResponse struct {
	Data        []BatchRecord `json:"data"`
	Best        *BatchRecord  `json:"best,omitempty"`
	BestExpired bool          `json:"best_expired,omitempty"`
	Error       string        `json:"error,omitempty"`
}
