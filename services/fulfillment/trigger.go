package fulfillment

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"
	nmi "nmi-gateway/nmi"

	// External Packages
	"go.uber.org/zap"
)

// Orchestrator is the slice of the transaction orchestrator the trigger
// drives.
type Orchestrator interface {
	CaptureTransaction(ctx context.Context, transactionID string, amount *float64) (nmi.Response, error)
	VoidTransaction(ctx context.Context, transactionID string) (nmi.Response, error)
}

// PaymentStore reads and updates the persisted order payment state.
type PaymentStore interface {
	Get(ctx context.Context, orderID string) (*models.OrderPayment, error)
	MarkCaptured(ctx context.Context, orderID, captureTxID string) (bool, error)
	MarkVoided(ctx context.Context, orderID string) error
}

// Guard is the capture idempotency marker taken before the processor call.
type Guard interface {
	Acquire(ctx context.Context, orderID string) (bool, error)
	Release(ctx context.Context, orderID string)
}

// DeadLetterStore receives records that cannot be decoded.
type DeadLetterStore interface {
	Add(ctx context.Context, record models.Record) error
}

// Trigger reacts to order status changes: it captures held authorizations
// when an order leaves on-hold for fulfillment, and voids them when the
// order is cancelled. It must tolerate the host platform redelivering the
// same transition; the guard plus the store's conditional captured flag
// make a duplicate event a no-op.
type Trigger struct {
	Logger       *zap.Logger
	Orchestrator Orchestrator
	Store        PaymentStore
	Guard        Guard
	DeadLetters  DeadLetterStore
}

func NewTrigger(logger *zap.Logger, orchestrator Orchestrator, store PaymentStore, guard Guard, deadLetters DeadLetterStore) *Trigger {
	return &Trigger{
		Logger:       logger,
		Orchestrator: orchestrator,
		Store:        store,
		Guard:        guard,
		DeadLetters:  deadLetters,
	}
}

// ProcessRecords decodes and handles a batch of order status events.
// Undecodable records go to the dead-letter store; a handling failure stops
// the batch so the consumer does not commit past it.
func (t *Trigger) ProcessRecords(ctx context.Context, records []models.Record) error {
	for _, record := range records {
		var evt models.OrderStatusEvent
		if err := json.Unmarshal(record.Value, &evt); err != nil {
			t.Logger.Error("failed to unmarshal order status event", zap.Error(err))
			_ = t.DeadLetters.Add(ctx, record)
			continue
		}

		if err := t.HandleStatusChange(ctx, evt); err != nil {
			return fmt.Errorf("handling status change for order %s: %w", evt.OrderID, err)
		}
	}
	return nil
}

// HandleStatusChange applies one order transition to the payment state
// machine.
func (t *Trigger) HandleStatusChange(ctx context.Context, evt models.OrderStatusEvent) error {
	switch evt.NewStatus {
	case models.OrderStatusProcessing, models.OrderStatusCompleted:
		if evt.OldStatus != models.OrderStatusOnHold {
			return nil
		}
		return t.captureOrder(ctx, evt.OrderID)
	case models.OrderStatusCancelled:
		return t.voidOrder(ctx, evt.OrderID)
	}
	return nil
}

// captureOrder settles the held authorization for an order exactly once.
func (t *Trigger) captureOrder(ctx context.Context, orderID string) error {
	payment, err := t.Store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(errors.NotFound, err) {
			// Not an order this gateway paid for.
			return nil
		}
		return err
	}

	if !payment.CanBeCaptured() {
		t.Logger.Debug("order not eligible for capture",
			zap.String("order_id", orderID),
			zap.String("transaction_mode", payment.TransactionMode),
			zap.Bool("captured", payment.Captured),
		)
		return nil
	}

	acquired, err := t.Guard.Acquire(ctx, orderID)
	if err != nil {
		return err
	}
	if !acquired {
		t.Logger.Info("capture already in progress or done, skipping",
			zap.String("order_id", orderID))
		return nil
	}

	t.Logger.Info("capturing payment for fulfilled order",
		zap.String("order_id", orderID),
		zap.String("transaction_id", payment.TransactionID),
		zap.Float64("amount", payment.AuthAmount),
	)

	resp, err := t.Orchestrator.CaptureTransaction(ctx, payment.TransactionID, &payment.AuthAmount)
	if err != nil {
		// Release so a later, legitimate attempt can retry; the processor
		// itself was not charged.
		t.Guard.Release(ctx, orderID)
		t.Logger.Error("capture failed",
			zap.String("order_id", orderID),
			zap.String("transaction_id", payment.TransactionID),
			zap.String("response_code", resp.ResponseCode),
			zap.Error(err),
		)
		return err
	}

	applied, err := t.Store.MarkCaptured(ctx, orderID, resp.TransactionID)
	if err != nil {
		return err
	}
	if !applied {
		t.Logger.Warn("capture succeeded but state was already marked captured",
			zap.String("order_id", orderID))
	}

	t.Logger.Info("payment captured",
		zap.String("order_id", orderID),
		zap.String("capture_transaction_id", resp.TransactionID),
	)
	return nil
}

// voidOrder cancels an uncaptured authorization when the order is
// cancelled. Refunded orders are never voided.
func (t *Trigger) voidOrder(ctx context.Context, orderID string) error {
	payment, err := t.Store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(errors.NotFound, err) {
			return nil
		}
		return err
	}

	if !payment.CanBeVoided() {
		return nil
	}

	t.Logger.Info("voiding authorization for cancelled order",
		zap.String("order_id", orderID),
		zap.String("transaction_id", payment.TransactionID),
	)

	if _, err := t.Orchestrator.VoidTransaction(ctx, payment.TransactionID); err != nil {
		t.Logger.Error("void failed",
			zap.String("order_id", orderID),
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
		return err
	}

	return t.Store.MarkVoided(ctx, orderID)
}
