package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mq"
	"go.uber.org/zap"
)

const queueBatchSize = 100

// QueueService sweeps fulfillable orders into the relay queue: paid orders
// plus zero-priced ones that skip payment entirely. MarkQueued gates each
// order so overlapping sweeps never enqueue the same order twice.
type QueueService interface {
	EnqueueFulfillable(ctx context.Context)
}

type queue struct {
	orders    repository.OrderRepository
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewQueueService(orders repository.OrderRepository, publisher mq.Publisher, logger *zap.Logger) QueueService {
	return &queue{orders: orders, publisher: publisher, logger: logger}
}

func (q *queue) EnqueueFulfillable(ctx context.Context) {
	rows, err := q.orders.FindFulfillable(queueBatchSize)
	if err != nil {
		q.logger.Error("Failed to list fulfillable orders", zap.Error(err))
		return
	}

	for _, row := range rows {
		cmd := RelayOrderCommand{
			OrderID:       row.ID,
			OrderType:     string(row.Type),
			ContactTarget: row.ContactTarget,
		}

		body, err := json.Marshal(cmd)
		if err != nil {
			q.logger.Error("Failed to encode relay command",
				zap.Error(err),
				zap.Int64("orderID", row.ID))
			continue
		}

		if err := q.publisher.Publish(ctx, "", RelayQueue, body); err != nil {
			q.logger.Error("Failed to publish relay command",
				zap.Error(err),
				zap.Int64("orderID", row.ID))
			continue
		}

		err = q.orders.MarkQueued(ctx, row.ID, time.Now())
		if err != nil && !errors.Is(err, repository.ErrNoRowsAffected) {
			q.logger.Error("Failed to mark order queued",
				zap.Error(err),
				zap.Int64("orderID", row.ID))
			continue
		}

		q.logger.Info("Order queued for relay",
			zap.Int64("orderID", row.ID),
			zap.String("type", string(row.Type)))
	}
}
