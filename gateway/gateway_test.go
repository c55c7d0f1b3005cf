package gateway

import (
	// Go Internal Packages
	"context"
	"net/url"
	"testing"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"
	nmi "nmi-gateway/nmi"

	// External Packages
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient scripts processor replies and records every request sent.
type fakeClient struct {
	requests []url.Values
	resp     nmi.Response
	err      error
}

func (f *fakeClient) Send(_ context.Context, req url.Values) (nmi.Response, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

type fakeStore struct {
	upserted []*models.OrderPayment
	refunded []string
}

func (f *fakeStore) Upsert(_ context.Context, payment *models.OrderPayment) error {
	f.upserted = append(f.upserted, payment)
	return nil
}

func (f *fakeStore) MarkRefunded(_ context.Context, orderID string) error {
	f.refunded = append(f.refunded, orderID)
	return nil
}

func approvedResponse() nmi.Response {
	return nmi.Response{
		Success:       true,
		Approved:      true,
		TransactionID: "tx-1",
		AuthCode:      "A1",
		ResponseCode:  "100",
	}
}

func newTestOrchestrator(client *fakeClient, settings Settings) *Orchestrator {
	return NewOrchestrator(client, settings, &fakeStore{}, zap.NewNop())
}

func TestProcessSale(t *testing.T) {
	client := &fakeClient{resp: approvedResponse()}
	o := newTestOrchestrator(client, Settings{})

	resp, err := o.ProcessSale(context.Background(), &models.PaymentData{
		Amount:       25,
		PaymentToken: "tok-1",
		OrderID:      "1001",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	require.Equal(t, "sale", req.Get("type"))
	require.Equal(t, "25.00", req.Get("amount"))
	require.Equal(t, "tok-1", req.Get("payment_token"))
}

func TestProcessAuth_OverridesType(t *testing.T) {
	client := &fakeClient{resp: approvedResponse()}
	o := newTestOrchestrator(client, Settings{})

	_, err := o.ProcessAuth(context.Background(), &models.PaymentData{
		Amount:       25,
		PaymentToken: "tok-1",
	})
	require.NoError(t, err)
	require.Equal(t, "auth", client.requests[0].Get("type"))
}

func TestCaptureTransaction(t *testing.T) {
	client := &fakeClient{resp: approvedResponse()}
	o := newTestOrchestrator(client, Settings{})

	t.Run("partial amount", func(t *testing.T) {
		amount := 12.5
		_, err := o.CaptureTransaction(context.Background(), "tx-1", &amount)
		require.NoError(t, err)

		req := client.requests[len(client.requests)-1]
		require.Equal(t, "capture", req.Get("type"))
		require.Equal(t, "tx-1", req.Get("transactionid"))
		require.Equal(t, "12.50", req.Get("amount"))
	})

	t.Run("nil amount captures in full", func(t *testing.T) {
		_, err := o.CaptureTransaction(context.Background(), "tx-1", nil)
		require.NoError(t, err)

		req := client.requests[len(client.requests)-1]
		_, hasAmount := req["amount"]
		require.False(t, hasAmount)
	})
}

func TestVoidAndRefund(t *testing.T) {
	client := &fakeClient{resp: approvedResponse()}
	o := newTestOrchestrator(client, Settings{})

	_, err := o.VoidTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	require.Equal(t, "void", client.requests[0].Get("type"))
	require.Equal(t, "tx-1", client.requests[0].Get("transactionid"))

	amount := 3.0
	_, err = o.RefundTransaction(context.Background(), "tx-1", &amount)
	require.NoError(t, err)
	require.Equal(t, "refund", client.requests[1].Get("type"))
	require.Equal(t, "3.00", client.requests[1].Get("amount"))
}

func TestValidateCard_ForcesZeroAmount(t *testing.T) {
	client := &fakeClient{resp: approvedResponse()}
	o := newTestOrchestrator(client, Settings{})

	_, err := o.ValidateCard(context.Background(), &models.PaymentData{
		Amount:     99.99, // ignored: validation is not a financial transaction
		CardNumber: "4111111111111111",
		CardExpiry: "1225",
		CardCVV:    "123",
	})
	require.NoError(t, err)

	req := client.requests[0]
	require.Equal(t, "validate", req.Get("type"))
	require.Equal(t, "0.00", req.Get("amount"))
}

func TestSend_FoldsClassificationIntoErrors(t *testing.T) {
	t.Run("decline", func(t *testing.T) {
		client := &fakeClient{resp: nmi.Response{Declined: true, ResponseMessage: "DECLINE"}}
		o := newTestOrchestrator(client, Settings{})

		resp, err := o.ProcessSale(context.Background(), &models.PaymentData{PaymentToken: "tok-1"})
		require.Error(t, err)
		require.True(t, errors.Is(errors.Declined, err))
		require.Equal(t, "DECLINE", errors.Message(err))
		require.True(t, resp.Declined, "the full response still comes back alongside the error")
	})

	t.Run("processor error", func(t *testing.T) {
		client := &fakeClient{resp: nmi.Response{Error: true, ResponseMessage: "Invalid merchant configuration."}}
		o := newTestOrchestrator(client, Settings{})

		_, err := o.ProcessSale(context.Background(), &models.PaymentData{PaymentToken: "tok-1"})
		require.Error(t, err)
		require.True(t, errors.Is(errors.ProcessorFault, err))
	})

	t.Run("unrecognized response", func(t *testing.T) {
		client := &fakeClient{resp: nmi.Response{}}
		o := newTestOrchestrator(client, Settings{})

		_, err := o.ProcessSale(context.Background(), &models.PaymentData{PaymentToken: "tok-1"})
		require.Error(t, err)
		require.True(t, errors.Is(errors.ProcessorFault, err))
	})
}

func TestCheckCardPolicy(t *testing.T) {
	settings := Settings{RestrictedCardTypes: []string{"visa", "amex"}}

	t.Run("restricted brand is rejected before any network call", func(t *testing.T) {
		client := &fakeClient{resp: approvedResponse()}
		o := newTestOrchestrator(client, settings)

		_, err := o.ProcessSale(context.Background(), &models.PaymentData{
			CardNumber: "4111111111111111",
			CardExpiry: "1225",
			CardCVV:    "123",
		})
		require.Error(t, err)
		require.True(t, errors.Is(errors.Policy, err))
		require.Equal(t, "visa cards are not accepted", errors.Message(err))
		require.Empty(t, client.requests, "policy rejection must not touch the processor")
	})

	t.Run("unrestricted brand passes", func(t *testing.T) {
		client := &fakeClient{resp: approvedResponse()}
		o := newTestOrchestrator(client, settings)

		_, err := o.ProcessSale(context.Background(), &models.PaymentData{
			CardNumber: "5105105105105100",
			CardExpiry: "1225",
			CardCVV:    "123",
		})
		require.NoError(t, err)
		require.Len(t, client.requests, 1)
	})

	t.Run("token flows carry no number to inspect", func(t *testing.T) {
		client := &fakeClient{resp: approvedResponse()}
		o := newTestOrchestrator(client, settings)

		_, err := o.ProcessSale(context.Background(), &models.PaymentData{PaymentToken: "tok-1"})
		require.NoError(t, err)
	})
}
