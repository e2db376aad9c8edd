package pos

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/medikart/pos-engine/internal/domain/models"
	"github.com/medikart/pos-engine/internal/repository/mongodb"
	"github.com/medikart/pos-engine/pkg/clients/inventory"
)

// ErrSessionNotFound indicates an unknown or already closed POS session.
var ErrSessionNotFound = errors.New("pos session not found")

// ErrLineNotFound indicates the cart has no line with the given id.
var ErrLineNotFound = errors.New("cart line not found")

// ErrEmptyCart indicates a checkout was attempted on a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidQuantity indicates the requested line quantity is not positive.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Session owns one in-progress sale. All cart mutations happen under the
// session lock, so within a session the cart behaves single-threaded and
// commits at checkout are strictly sequential.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	cart       models.Cart
	lastActive time.Time
}

// Engine drives the two-phase allocate/commit protocol for every open POS
// session and records finished checkouts in the sales journal.
type Engine struct {
	client  inventory.Client
	journal mongodb.Repository
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewEngine wires a POS engine. The journal may be nil, in which case
// checkouts are not recorded.
func NewEngine(client inventory.Client, journal mongodb.Repository, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		client:   client,
		journal:  journal,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// OpenSession creates and registers a new POS session.
func (e *Engine) OpenSession() *Session {
	now := e.now()
	session := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		lastActive: now,
	}

	e.mu.Lock()
	e.sessions[session.ID] = session
	e.mu.Unlock()

	e.logger.Info("pos session opened", zap.String("session_id", session.ID))
	return session
}

// Session looks up an open session by id.
func (e *Engine) Session(id string) (*Session, error) {
	e.mu.RLock()
	session, ok := e.sessions[id]
	e.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// CloseSession discards a session and whatever cart it still holds. Any
// lines left ALLOCATED are abandoned client-side; releasing the reservation
// is the inventory service's lease to expire.
func (e *Engine) CloseSession(id string) {
	e.mu.Lock()
	delete(e.sessions, id)
	e.mu.Unlock()
}

// SweepIdle drops sessions that have been inactive longer than the given
// duration and returns how many were removed.
func (e *Engine) SweepIdle(olderThan time.Duration) int {
	cutoff := e.now().Add(-olderThan)

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for id, session := range e.sessions {
		session.mu.Lock()
		idle := session.lastActive.Before(cutoff)
		session.mu.Unlock()
		if idle {
			delete(e.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		e.logger.Info("idle pos sessions swept", zap.Int("removed", removed))
	}
	return removed
}

// AddProduct allocates stock for a product and, on success, appends a new
// cart line carrying the service's batch breakdown verbatim. On failure the
// cart is left untouched and the error is returned for the operator; a
// rejection surfaces as *inventory.AllocationRejectedError with the service
// message intact.
func (e *Engine) AddProduct(ctx context.Context, session *Session, productID, productName string, qty decimal.Decimal) (*models.CartLine, error) {
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	allocation, err := e.client.Allocate(ctx, inventory.AllocateRequest{
		ProductID: productID,
		Quantity:  qty,
		Strategy:  inventory.StrategyFEFO,
	})
	if err != nil {
		e.logger.Warn("allocation failed",
			zap.String("session_id", session.ID),
			zap.String("product_id", productID),
			zap.String("qty", qty.String()),
			zap.Error(err))
		return nil, err
	}

	line := models.CartLine{
		ID:             uuid.NewString(),
		ProductID:      productID,
		ProductName:    productName,
		Qty:            qty,
		Allocation:     allocation,
		State:          models.LineStateAllocated,
		IdempotencyKey: uuid.NewString(),
		AddedAt:        e.now(),
	}

	session.mu.Lock()
	session.cart.Lines = append(session.cart.Lines, line)
	session.lastActive = e.now()
	session.mu.Unlock()

	e.logger.Info("cart line added",
		zap.String("session_id", session.ID),
		zap.String("line_id", line.ID),
		zap.String("product_id", productID),
		zap.Int("batches", len(allocation)))

	return &line, nil
}

// RemoveLine deletes a cart line without committing it.
func (e *Engine) RemoveLine(session *Session, lineID string) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	for i, line := range session.cart.Lines {
		if line.ID == lineID {
			session.cart.Lines = append(session.cart.Lines[:i], session.cart.Lines[i+1:]...)
			session.lastActive = e.now()
			return nil
		}
	}
	return ErrLineNotFound
}

// Cart returns a copy of the session's current cart.
func (e *Engine) Cart(session *Session) models.Cart {
	session.mu.Lock()
	defer session.mu.Unlock()

	lines := make([]models.CartLine, len(session.cart.Lines))
	copy(lines, session.cart.Lines)
	return models.Cart{Lines: lines}
}

// Checkout commits every cart line against the given reference, one line at
// a time in insertion order. A commit for line N+1 never starts before line
// N's call has returned. Committed lines leave the cart; failed lines stay
// FAILED with their reason so the operator can retry only those. The report
// names each line's terminal state and is journaled regardless of outcome.
func (e *Engine) Checkout(ctx context.Context, session *Session, reference string) (*models.CheckoutReport, error) {
	if reference == "" {
		return nil, errors.New("reference must not be empty")
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if len(session.cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	report := &models.CheckoutReport{
		Reference: reference,
		SessionID: session.ID,
	}

	var saleLines []models.SaleLineRecord
	remaining := session.cart.Lines[:0]
	for i := range session.cart.Lines {
		line := &session.cart.Lines[i]

		err := e.client.Commit(ctx, inventory.CommitRequest{
			ProductID:      line.ProductID,
			Allocation:     line.Allocation,
			Reference:      reference,
			IdempotencyKey: line.IdempotencyKey,
		})

		outcome := models.LineOutcome{
			LineID:    line.ID,
			ProductID: line.ProductID,
			Qty:       line.Qty,
		}

		if err != nil {
			line.State = models.LineStateFailed
			line.FailureReason = err.Error()
			outcome.State = models.LineStateFailed
			outcome.Error = err.Error()
			remaining = append(remaining, *line)

			e.logger.Error("commit failed",
				zap.String("session_id", session.ID),
				zap.String("line_id", line.ID),
				zap.String("reference", reference),
				zap.Error(err))
		} else {
			line.State = models.LineStateCommitted
			line.FailureReason = ""
			outcome.State = models.LineStateCommitted
		}

		report.Lines = append(report.Lines, outcome)
		saleLines = append(saleLines, models.SaleLineRecord{
			LineID:      line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Qty:         line.Qty.String(),
			State:       string(outcome.State),
			Error:       outcome.Error,
			Batches:     batchDraws(line.Allocation),
		})
	}

	session.cart.Lines = remaining
	session.lastActive = e.now()

	report.Completed = len(remaining) == 0
	report.FinishedAt = e.now()

	e.journalCheckout(ctx, report, saleLines)

	e.logger.Info("checkout finished",
		zap.String("session_id", session.ID),
		zap.String("reference", reference),
		zap.Bool("completed", report.Completed),
		zap.Int("committed", report.CommittedCount()),
		zap.Int("failed", len(report.Lines)-report.CommittedCount()))

	return report, nil
}

// journalCheckout persists the checkout outcome for audit. Journal failures
// are logged, never surfaced: the sale already happened server-side.
func (e *Engine) journalCheckout(ctx context.Context, report *models.CheckoutReport, lines []models.SaleLineRecord) {
	if e.journal == nil {
		return
	}

	record := models.SaleRecord{
		Reference:  report.Reference,
		SessionID:  report.SessionID,
		Completed:  report.Completed,
		Lines:      lines,
		RecordedAt: report.FinishedAt,
	}

	if err := e.journal.SaveSale(ctx, record); err != nil {
		e.logger.Error("failed to journal checkout",
			zap.String("reference", report.Reference),
			zap.Error(err))
	}
}

func batchDraws(allocation []models.AllocationLine) []models.SaleBatchDraw {
	draws := make([]models.SaleBatchDraw, 0, len(allocation))
	for _, line := range allocation {
		draws = append(draws, models.SaleBatchDraw{
			BatchID: line.BatchID,
			Qty:     line.Qty.String(),
		})
	}
	return draws
}

// SessionCount reports how many sessions are currently open.
func (e *Engine) SessionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}
