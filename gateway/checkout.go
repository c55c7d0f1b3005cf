package gateway

import (
	// Go Internal Packages
	"context"
	"fmt"
	"sync/atomic"
	"time"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"
	nmi "nmi-gateway/nmi"

	// External Packages
	"go.uber.org/zap"
)

// Meta keys the gateway writes onto the order record.
const (
	MetaTransactionID   = "nmi_transaction_id"
	MetaAuthAmount      = "nmi_auth_amount"
	MetaTransactionMode = "nmi_transaction_mode"
)

// Order is the opaque order record the host commerce engine exposes. The
// gateway reads totals and addresses and writes payment outcome; everything
// else about the order stays with the engine.
type Order interface {
	ID() string
	Number() string
	Total() float64
	BillingAddress() models.Address
	ShippingAddress() *models.Address

	Meta(key string) string
	SetMeta(key, value string)
	UpdateStatus(status, note string)
	AddNote(note string)
	PaymentComplete(transactionID string)
	ReduceStock()
	Save() error
}

// CheckoutInput is the client-to-server submission contract: a token or raw
// card fields, plus the optional save flag and step-up evidence.
type CheckoutInput struct {
	PaymentToken    string
	CustomerVaultID string
	CardNumber      string
	CardExpiry      string
	CardCVV         string

	SavePaymentMethod bool

	ThreeDS        models.ThreeDSEvidence
	ThreeDSWarning string
}

// Result is the uniform success/failure contract handed back to the
// checkout controller. Failures carry only a sanitized message; full
// diagnostics go to the logger.
type Result struct {
	Success       bool
	TransactionID string
	AuthCode      string
	ResponseCode  string
	Message       string
}

// Checkout guards the single checkout submission path. The in-flight flag
// is the explicit replacement for disabling a submit control: exactly one
// attempt may be outstanding, re-armed on every terminal outcome.
type Checkout struct {
	orchestrator *Orchestrator
	settings     Settings
	store        PaymentStore
	logger       *zap.Logger
	inFlight     atomic.Bool
}

func NewCheckout(orchestrator *Orchestrator, settings Settings, store PaymentStore, logger *zap.Logger) *Checkout {
	return &Checkout{
		orchestrator: orchestrator,
		settings:     settings,
		store:        store,
		logger:       logger,
	}
}

// ProcessPayment drives one payment attempt for an order: builds payment
// data from the order record and submission input, runs sale or auth per
// the configured transaction mode, and applies the outcome to the order's
// financial state. The caller decides whether a failed attempt may be
// retried with new input; nothing here retries.
func (c *Checkout) ProcessPayment(ctx context.Context, order Order, input CheckoutInput) (Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Result{}, errors.E(errors.Invalid, "a payment submission is already in flight", nil)
	}
	defer c.inFlight.Store(false)

	data := c.buildPaymentData(order, input)

	var (
		resp nmi.Response
		err  error
	)
	if c.settings.TransactionMode == models.TransactionModeAuth {
		resp, err = c.orchestrator.ProcessAuth(ctx, data)
	} else {
		resp, err = c.orchestrator.ProcessSale(ctx, data)
	}

	if err != nil {
		message := errors.Message(err)
		c.logger.Error("payment attempt failed",
			zap.String("order_id", order.ID()),
			zap.String("response_code", resp.ResponseCode),
			zap.Error(err),
		)
		order.AddNote("Payment failed: " + message)
		return Result{Success: false, Message: message}, err
	}

	if input.ThreeDSWarning != "" {
		order.AddNote("Step-up authentication warning: " + input.ThreeDSWarning + " (flagged for risk review)")
	}

	c.applySuccess(ctx, order, resp)

	return Result{
		Success:       true,
		TransactionID: resp.TransactionID,
		AuthCode:      resp.AuthCode,
		ResponseCode:  resp.ResponseCode,
		Message:       resp.ResponseMessage,
	}, nil
}

// applySuccess transitions the order per the transaction mode and records
// the state the capture trigger later relies on.
func (c *Checkout) applySuccess(ctx context.Context, order Order, resp nmi.Response) {
	order.SetMeta(MetaTransactionID, resp.TransactionID)

	payment := &models.OrderPayment{
		OrderID:         order.ID(),
		TransactionID:   resp.TransactionID,
		TransactionMode: c.settings.TransactionMode,
		UpdatedAt:       time.Now().UTC(),
	}

	if c.settings.TransactionMode == models.TransactionModeAuth {
		payment.AuthAmount = order.Total()
		order.SetMeta(MetaAuthAmount, nmi.FormatAmount(order.Total()))
		order.SetMeta(MetaTransactionMode, models.TransactionModeAuth)
		order.UpdateStatus(models.OrderStatusOnHold, fmt.Sprintf(
			"Payment authorized. Transaction ID: %s. Funds are captured when the order is fulfilled.",
			resp.TransactionID))
	} else {
		order.PaymentComplete(resp.TransactionID)
		order.ReduceStock()
		order.AddNote("Payment completed. Transaction ID: " + resp.TransactionID)
	}

	order.AddNote(fmt.Sprintf("AVS Response: %s, CVV Response: %s",
		nmi.AVSResponseText(resp.AVSResponse),
		nmi.CVVResponseText(resp.CVVResponse)))
	if resp.ResponseCode != "" {
		order.AddNote("Response Code: " + nmi.ResultCodeText(resp.ResponseCode))
	}

	if err := c.store.Upsert(ctx, payment); err != nil {
		c.logger.Error("storing order payment state",
			zap.String("order_id", order.ID()), zap.Error(err))
	}
	if err := order.Save(); err != nil {
		c.logger.Error("saving order", zap.String("order_id", order.ID()), zap.Error(err))
	}
}

// ProcessRefund refunds a prior transaction for the order. A nil amount
// refunds in full.
func (c *Checkout) ProcessRefund(ctx context.Context, order Order, amount *float64, reason string) error {
	transactionID := order.Meta(MetaTransactionID)
	if transactionID == "" {
		return errors.E(errors.NotFound, "transaction id not found for order", nil)
	}

	resp, err := c.orchestrator.RefundTransaction(ctx, transactionID, amount)
	if err != nil {
		return err
	}

	amountText := "full amount"
	if amount != nil {
		amountText = nmi.FormatAmount(*amount)
	}
	order.AddNote(fmt.Sprintf("Refunded %s - Refund ID: %s - Reason: %s",
		amountText, resp.TransactionID, reason))

	if err := c.store.MarkRefunded(ctx, order.ID()); err != nil {
		c.logger.Error("marking order refunded",
			zap.String("order_id", order.ID()), zap.Error(err))
	}
	return order.Save()
}

// buildPaymentData assembles the request input from the order record, the
// submission contract and merchant settings.
func (c *Checkout) buildPaymentData(order Order, input CheckoutInput) *models.PaymentData {
	return &models.PaymentData{
		Amount:            order.Total(),
		CustomerVaultID:   input.CustomerVaultID,
		PaymentToken:      input.PaymentToken,
		CardNumber:        input.CardNumber,
		CardExpiry:        input.CardExpiry,
		CardCVV:           input.CardCVV,
		Billing:           order.BillingAddress(),
		Shipping:          order.ShippingAddress(),
		OrderID:           order.Number(),
		OrderDescription:  fmt.Sprintf("Order #%s", order.Number()),
		SavePaymentMethod: input.SavePaymentMethod,
		SendReceipt:       c.settings.SendReceipts,
		ThreeDS:           input.ThreeDS,
	}
}
