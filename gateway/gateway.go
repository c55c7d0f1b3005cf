package gateway

import (
	// Go Internal Packages
	"context"
	"net/url"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"
	nmi "nmi-gateway/nmi"

	// External Packages
	"go.uber.org/zap"
)

// TransactionClient is the processor exchange the orchestrator drives.
// Satisfied by *nmi.Client.
type TransactionClient interface {
	Send(ctx context.Context, req url.Values) (nmi.Response, error)
}

// Settings is the merchant-level policy read once at construction.
type Settings struct {
	TransactionMode     string
	SendReceipts        bool
	RestrictedCardTypes []string
	Descriptor          nmi.Descriptor
}

// Orchestrator sequences transaction calls against the processor and applies
// merchant policy before anything goes on the wire. All collaborators are
// injected; there is no ambient lookup.
type Orchestrator struct {
	client     TransactionClient
	settings   Settings
	store      PaymentStore
	logger     *zap.Logger
	restricted map[models.CardBrand]bool
}

// PaymentStore persists the order payment state the gateway owns.
type PaymentStore interface {
	Upsert(ctx context.Context, payment *models.OrderPayment) error
	MarkRefunded(ctx context.Context, orderID string) error
}

func NewOrchestrator(client TransactionClient, settings Settings, store PaymentStore, logger *zap.Logger) *Orchestrator {
	restricted := make(map[models.CardBrand]bool, len(settings.RestrictedCardTypes))
	for _, brand := range settings.RestrictedCardTypes {
		restricted[models.CardBrand(brand)] = true
	}
	return &Orchestrator{
		client:     client,
		settings:   settings,
		store:      store,
		logger:     logger,
		restricted: restricted,
	}
}

// ProcessSale submits an immediate authorize-and-capture transaction.
func (o *Orchestrator) ProcessSale(ctx context.Context, data *models.PaymentData) (nmi.Response, error) {
	if err := o.checkCardPolicy(data); err != nil {
		return nmi.Response{}, err
	}

	req, err := nmi.BuildSaleRequest(data, o.settings.Descriptor)
	if err != nil {
		return nmi.Response{}, err
	}

	o.logger.Info("processing sale transaction", zap.String("orderid", data.OrderID))
	return o.send(ctx, req)
}

// ProcessAuth submits an authorization-only transaction: sale-shaped data
// with the type overridden.
func (o *Orchestrator) ProcessAuth(ctx context.Context, data *models.PaymentData) (nmi.Response, error) {
	if err := o.checkCardPolicy(data); err != nil {
		return nmi.Response{}, err
	}

	req, err := nmi.BuildSaleRequest(data, o.settings.Descriptor)
	if err != nil {
		return nmi.Response{}, err
	}
	req.Set("type", nmi.TypeAuth)

	o.logger.Info("processing auth transaction", zap.String("orderid", data.OrderID))
	return o.send(ctx, req)
}

// CaptureTransaction settles a prior authorization. A nil amount captures
// the full held amount; a partial amount is formatted to two decimals.
func (o *Orchestrator) CaptureTransaction(ctx context.Context, transactionID string, amount *float64) (nmi.Response, error) {
	req := url.Values{}
	req.Set("type", nmi.TypeCapture)
	req.Set("transactionid", transactionID)
	if amount != nil {
		req.Set("amount", nmi.FormatAmount(*amount))
	}

	o.logger.Info("capturing transaction", zap.String("transaction_id", transactionID))
	return o.send(ctx, req)
}

// VoidTransaction cancels a transaction before settlement.
func (o *Orchestrator) VoidTransaction(ctx context.Context, transactionID string) (nmi.Response, error) {
	req := url.Values{}
	req.Set("type", nmi.TypeVoid)
	req.Set("transactionid", transactionID)

	o.logger.Info("voiding transaction", zap.String("transaction_id", transactionID))
	return o.send(ctx, req)
}

// RefundTransaction returns funds against a settled transaction. A nil
// amount refunds in full.
func (o *Orchestrator) RefundTransaction(ctx context.Context, transactionID string, amount *float64) (nmi.Response, error) {
	req := url.Values{}
	req.Set("type", nmi.TypeRefund)
	req.Set("transactionid", transactionID)
	if amount != nil {
		req.Set("amount", nmi.FormatAmount(*amount))
	}

	o.logger.Info("refunding transaction", zap.String("transaction_id", transactionID))
	return o.send(ctx, req)
}

// ValidateCard runs a zero-value authorization check. Not a financial
// transaction: the amount is forced to 0.00.
func (o *Orchestrator) ValidateCard(ctx context.Context, card *models.PaymentData) (nmi.Response, error) {
	if err := o.checkCardPolicy(card); err != nil {
		return nmi.Response{}, err
	}

	req, err := nmi.BuildSaleRequest(card, nmi.Descriptor{})
	if err != nil {
		return nmi.Response{}, err
	}
	req.Set("type", nmi.TypeValidate)
	req.Set("amount", "0.00")

	o.logger.Info("validating card")
	return o.send(ctx, req)
}

// send performs the exchange and folds the three-way classification into the
// error taxonomy: declines and processor faults surface as tagged errors
// alongside the full response.
func (o *Orchestrator) send(ctx context.Context, req url.Values) (nmi.Response, error) {
	resp, err := o.client.Send(ctx, req)
	if err != nil {
		return resp, err
	}

	switch {
	case resp.Success:
		return resp, nil
	case resp.Declined:
		return resp, errors.DeclinedErr(resp.ResponseMessage)
	case resp.Error:
		return resp, errors.ProcessorErr(resp.ResponseMessage)
	}
	return resp, errors.ProcessorErr("unrecognized processor response")
}

// checkCardPolicy rejects restricted card brands before any network call.
// Only raw-card flows can be checked here; token and vault flows carry no
// number to inspect.
func (o *Orchestrator) checkCardPolicy(data *models.PaymentData) error {
	if len(o.restricted) == 0 || !data.HasRawCard() || data.CardNumber == "" {
		return nil
	}

	brand := models.DetectCardBrand(data.CardNumber)
	if o.restricted[brand] {
		o.logger.Warn("card brand rejected by merchant policy",
			zap.String("brand", string(brand)),
			zap.String("ccnumber", models.MaskCardNumber(data.CardNumber)),
		)
		return errors.PolicyErr(string(brand) + " cards are not accepted")
	}
	return nil
}
