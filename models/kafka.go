package models

type Record struct {
	Key   []byte
	Value []byte
	Topic string
}

// OrderStatusEvent is the order engine's status-change notification as it
// arrives on the fulfillment topic.
type OrderStatusEvent struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
