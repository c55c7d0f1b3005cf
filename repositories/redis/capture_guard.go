package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"time"

	// Local Packages
	models "nmi-gateway/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// guardTTL keeps stale markers from pinning an order forever if the
// process dies between taking the marker and persisting the capture.
const guardTTL = 24 * time.Hour

// CaptureGuard is the fast half of the double-capture guard: a SETNX
// marker taken before a capture is attempted. The durable half lives in
// the order payment store's conditional captured flag.
type CaptureGuard struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCaptureGuard(client *redis.Client, logger *zap.Logger) *CaptureGuard {
	return &CaptureGuard{client: client, logger: logger}
}

// Acquire takes the capture marker for an order. It returns false when the
// marker is already held, meaning another delivery of the same event got
// there first.
func (g *CaptureGuard) Acquire(ctx context.Context, orderID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, captureKey(orderID), "1", guardTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release drops the marker so a later attempt can retry after a failed
// capture.
func (g *CaptureGuard) Release(ctx context.Context, orderID string) {
	if err := g.client.Del(ctx, captureKey(orderID)).Err(); err != nil {
		g.logger.Error("failed to release capture marker",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

func captureKey(orderID string) string {
	return fmt.Sprintf("capture:%s", orderID)
}

// DeadLetters stores order events that could not be processed, keyed by
// order id, for later inspection.
type DeadLetters struct {
	client *redis.Client
	logger *zap.Logger
}

func NewDeadLetters(client *redis.Client, logger *zap.Logger) *DeadLetters {
	return &DeadLetters{client: client, logger: logger}
}

// Add stores one undeliverable record.
func (d *DeadLetters) Add(ctx context.Context, record models.Record) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		d.logger.Error("failed to marshal dead letter", zap.Error(err))
		return err
	}

	key := fmt.Sprintf("dead-letter:%s", record.Key)
	if err := d.client.Set(ctx, key, jsonData, 0).Err(); err != nil {
		d.logger.Error("failed to store dead letter", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
