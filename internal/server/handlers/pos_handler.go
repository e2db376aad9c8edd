package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medikart/pos-engine/internal/domain/models"
	"github.com/medikart/pos-engine/internal/service/pos"
	"github.com/medikart/pos-engine/internal/service/stock"
	"github.com/medikart/pos-engine/pkg/clients/inventory"
)

// POSHandler exposes the allocation engine to POS terminals over HTTP.
type POSHandler struct {
	engine  *pos.Engine
	batches *stock.Accessor
	logger  *zap.Logger
}

// NewPOSHandler constructs the HTTP handler adapter.
func NewPOSHandler(engine *pos.Engine, batches *stock.Accessor, logger *zap.Logger) *POSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &POSHandler{engine: engine, batches: batches, logger: logger}
}

// OpenSession starts a new POS session and returns its id.
func (h *POSHandler) OpenSession(c *gin.Context) {
	session := h.engine.OpenSession()
	c.JSON(http.StatusCreated, gin.H{"session_id": session.ID})
}

// CloseSession discards a session and its cart.
func (h *POSHandler) CloseSession(c *gin.Context) {
	h.engine.CloseSession(c.Param("sessionID"))
	c.Status(http.StatusNoContent)
}

// ListBatches returns the product's batches in FEFO order together with the
// suggested default pick. A failed fetch still answers with an empty list so
// the terminal always has something to render.
func (h *POSHandler) ListBatches(c *gin.Context) {
	productID := c.Param("productID")

	batches, best, expired, err := h.batches.Suggest(c.Request.Context(), productID)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, stock.ErrMissingProductID) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.BatchListResponse{Data: batches, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.BatchListResponse{
		Data:        batches,
		Best:        best,
		BestExpired: expired,
	})
}

// AddItem allocates stock for a product and appends the resulting line to
// the session cart.
func (h *POSHandler) AddItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add item payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	line, err := h.engine.AddProduct(c.Request.Context(), session, req.ProductID, req.ProductName, req.Quantity)
	if err != nil {
		var rejection *inventory.AllocationRejectedError
		switch {
		case errors.As(err, &rejection):
			// The service message goes to the operator verbatim.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rejection.Message})
		case errors.Is(err, pos.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("allocation request failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "inventory service unavailable"})
		}
		return
	}

	c.JSON(http.StatusCreated, line)
}

// GetCart returns the session's current cart.
func (h *POSHandler) GetCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.Cart(session))
}

// RemoveItem deletes a cart line without committing it.
func (h *POSHandler) RemoveItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.engine.RemoveLine(session, c.Param("lineID")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout commits every cart line against the supplied reference and
// returns the per-line report. When some lines failed the cart keeps them
// and the response is 409 so the terminal knows the sale is not finished.
func (h *POSHandler) Checkout(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid checkout payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.engine.Checkout(c.Request.Context(), session, req.Reference)
	if err != nil {
		if errors.Is(err, pos.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("checkout failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout could not be processed"})
		return
	}

	status := http.StatusOK
	if !report.Completed {
		status = http.StatusConflict
	}
	c.JSON(status, report)
}

// Health reports liveness plus the number of open POS sessions.
func (h *POSHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"open_sessions": h.engine.SessionCount(),
	})
}

func (h *POSHandler) session(c *gin.Context) (*pos.Session, bool) {
	session, err := h.engine.Session(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return session, true
}
