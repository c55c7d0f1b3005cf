package mongodb

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	database   = "payments"
	collection = "order_payments"
)

// OrderRepository persists the payment state the gateway owns per order:
// transaction id, mode, held amount and the captured/voided/refunded
// markers the fulfillment trigger depends on.
type OrderRepository struct {
	client *mongo.Client
}

func NewOrderRepository(client *mongo.Client) *OrderRepository {
	return &OrderRepository{client: client}
}

func (r *OrderRepository) col() *mongo.Collection {
	return r.client.Database(database).Collection(collection)
}

// Get loads the payment state for an order.
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*models.OrderPayment, error) {
	var payment models.OrderPayment
	err := r.col().FindOne(ctx, bson.M{"_id": orderID}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, errors.E(errors.NotFound, "no payment state for order "+orderID, nil)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Upsert writes the payment state recorded at checkout time.
func (r *OrderRepository) Upsert(ctx context.Context, payment *models.OrderPayment) error {
	payment.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.col().ReplaceOne(ctx, bson.M{"_id": payment.OrderID}, payment, opts)
	return err
}

// MarkCaptured flips the captured marker, but only when it is still unset.
// The conditional update is the persistent half of the double-capture
// guard: it reports whether this call applied, so a redelivered event
// observes false and stops.
func (r *OrderRepository) MarkCaptured(ctx context.Context, orderID, captureTxID string) (bool, error) {
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": orderID, "captured": false},
		bson.M{"$set": bson.M{
			"captured":               true,
			"capture_transaction_id": captureTxID,
			"updated_at":             time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// MarkVoided records a void of the held authorization.
func (r *OrderRepository) MarkVoided(ctx context.Context, orderID string) error {
	_, err := r.col().UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"voided": true, "updated_at": time.Now().UTC()}},
	)
	return err
}

// MarkRefunded records a refund against the order's transaction.
func (r *OrderRepository) MarkRefunded(ctx context.Context, orderID string) error {
	_, err := r.col().UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"refunded": true, "updated_at": time.Now().UTC()}},
	)
	return err
}
