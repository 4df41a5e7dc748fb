package service

import (
	"context"
	"errors"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mq"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/relayer"
	"go.uber.org/zap"
)

// RelayQueue carries orders handed to the fulfillment pipeline.
const RelayQueue = "order.relay"

const (
	maxDeliveryAttempts = 3
	claimStaleAfter     = 5 * time.Minute
)

type RelayService interface {
	ProcessOrder(ctx context.Context, cmd RelayOrderCommand) error
}

type relay struct {
	orders     repository.OrderRepository
	dispatcher relayer.Dispatcher
	logger     *zap.Logger
}

func NewRelayService(orders repository.OrderRepository, dispatcher relayer.Dispatcher, logger *zap.Logger) RelayService {
	return &relay{orders: orders, dispatcher: dispatcher, logger: logger}
}

// ProcessOrder claims a queued order, hands it to the delivery backend and
// records the terminal outcome. Storage outages return a temporary error so
// the delivery is requeued; anything undeliverable is dropped after logging.
func (r *relay) ProcessOrder(ctx context.Context, cmd RelayOrderCommand) error {
	row, err := r.orders.GetByID(cmd.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			r.logger.Warn("Relay message references unknown order",
				zap.Int64("orderID", cmd.OrderID))
			return nil
		}
		return mq.Temporary(err)
	}

	// Unpaid orders never belong in the queue unless they are free.
	if row.Status == model.OrderStatusPending && !row.Price.IsZero() {
		r.logger.Warn("Dropping relay message for unpaid order",
			zap.Int64("orderID", cmd.OrderID),
			zap.String("price", row.Price.String()))
		return nil
	}

	attempt := row.AttemptCount + 1
	if attempt > maxDeliveryAttempts {
		r.logger.Warn("Order exceeded max delivery attempts",
			zap.Int64("orderID", cmd.OrderID),
			zap.Int("attempts", row.AttemptCount))

		if err := r.markFailed(ctx, cmd.OrderID); err != nil {
			return mq.Temporary(err)
		}
		return nil
	}

	err = r.orders.ClaimForDelivery(ctx, cmd.OrderID, attempt, time.Now().Add(-claimStaleAfter))
	if err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			r.logger.Info("Order claimed by another consumer or already delivered",
				zap.Int64("orderID", cmd.OrderID),
				zap.String("status", string(row.Status)))
			return nil
		}
		return mq.Temporary(err)
	}

	req := relayer.Request{
		OrderID:       row.ID,
		OrderType:     string(row.Type),
		ContactTarget: row.ContactTarget,
		ContactMethod: row.ContactMethod,
		Content:       row.Content,
	}
	if row.Remark != nil {
		req.Remark = *row.Remark
	}

	resp, err := r.dispatcher.Dispatch(ctx, req)
	if err == nil {
		r.logger.Info("Order delivered",
			zap.Int64("orderID", cmd.OrderID),
			zap.String("dispatchID", resp.DispatchID),
			zap.Int("attempt", attempt))

		if err := r.orders.UpdateStatusGuarded(ctx, cmd.OrderID,
			model.OrderStatusCompleted, model.OrderStatusProcessing); err != nil {
			r.logger.Error("Failed to mark order completed",
				zap.Int64("orderID", cmd.OrderID), zap.Error(err))
		}
		return nil
	}

	if err.Error() == relayer.ErrorCodeInvalidTarget {
		r.logger.Warn("Order rejected by delivery backend",
			zap.Int64("orderID", cmd.OrderID),
			zap.Error(err))

		if err := r.markFailed(ctx, cmd.OrderID); err != nil {
			return mq.Temporary(err)
		}
		return nil
	}

	r.logger.Warn("Delivery attempt failed",
		zap.Int64("orderID", cmd.OrderID),
		zap.Int("attempt", attempt),
		zap.Int("remaining", maxDeliveryAttempts-attempt),
		zap.Error(err))

	return mq.Temporary(err)
}

func (r *relay) markFailed(ctx context.Context, orderID int64) error {
	err := r.orders.UpdateStatusGuarded(ctx, orderID, model.OrderStatusFailed,
		model.OrderStatusPaid, model.OrderStatusPending, model.OrderStatusProcessing)
	if err != nil && !errors.Is(err, repository.ErrNoRowsAffected) {
		return err
	}
	return nil
}
