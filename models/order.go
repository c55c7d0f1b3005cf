package models

import "time"

// Order statuses of interest to the payment flow. The order engine owns the
// full status model; the gateway only reads and writes these.
const (
	OrderStatusOnHold     = "on-hold"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Transaction modes configured per merchant.
const (
	TransactionModeSale = "sale"
	TransactionModeAuth = "auth"
)

// OrderPayment is the persisted payment state of one order: the attributes
// the gateway writes while the order engine owns the order itself.
type OrderPayment struct {
	OrderID         string    `json:"order_id" bson:"_id"`
	TransactionID   string    `json:"transaction_id" bson:"transaction_id"`
	TransactionMode string    `json:"transaction_mode" bson:"transaction_mode"`
	AuthAmount      float64   `json:"auth_amount" bson:"auth_amount"`
	Captured        bool      `json:"captured" bson:"captured"`
	CaptureTxID     string    `json:"capture_transaction_id,omitempty" bson:"capture_transaction_id,omitempty"`
	Voided          bool      `json:"voided" bson:"voided"`
	Refunded        bool      `json:"refunded" bson:"refunded"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// CanBeCaptured reports whether a capture attempt is permitted: only an
// uncaptured, unvoided authorization qualifies, and only once.
func (p *OrderPayment) CanBeCaptured() bool {
	return p.TransactionMode == TransactionModeAuth &&
		p.TransactionID != "" && !p.Captured && !p.Voided && !p.Refunded
}

// CanBeVoided reports whether the held authorization can still be voided.
// Refunded orders are never voided.
func (p *OrderPayment) CanBeVoided() bool {
	return p.TransactionMode == TransactionModeAuth &&
		p.TransactionID != "" && !p.Captured && !p.Voided && !p.Refunded
}
