package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/mocks"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestQueue_EnqueueFulfillable(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks each fulfillable order", func(t *testing.T) {
		orders := &mocks.OrderRepository{}
		publisher := &mocks.Publisher{}
		svc := service.NewQueueService(orders, publisher, zap.NewNop())

		rows := []model.Order{
			{ID: 1, Type: model.OrderTypeSMS, ContactTarget: "13812345678",
				Status: model.OrderStatusPaid, Price: decimal.RequireFromString("1.00")},
			{ID: 2, Type: model.OrderTypeHuman, ContactTarget: "wx-123",
				Status: model.OrderStatusPending, Price: decimal.Zero},
		}

		orders.On("FindFulfillable", mock.Anything).Return(rows, nil)
		publisher.On("Publish", ctx, "", service.RelayQueue, mock.MatchedBy(func(body []byte) bool {
			var cmd service.RelayOrderCommand
			return json.Unmarshal(body, &cmd) == nil && (cmd.OrderID == 1 || cmd.OrderID == 2)
		})).Return(nil).Twice()
		orders.On("MarkQueued", ctx, int64(1), mock.Anything).Return(nil)
		orders.On("MarkQueued", ctx, int64(2), mock.Anything).Return(nil)

		svc.EnqueueFulfillable(ctx)

		orders.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("publish failure leaves the order unqueued", func(t *testing.T) {
		orders := &mocks.OrderRepository{}
		publisher := &mocks.Publisher{}
		svc := service.NewQueueService(orders, publisher, zap.NewNop())

		rows := []model.Order{{ID: 1, Type: model.OrderTypeSMS, Status: model.OrderStatusPaid}}

		orders.On("FindFulfillable", mock.Anything).Return(rows, nil)
		publisher.On("Publish", ctx, "", service.RelayQueue, mock.Anything).
			Return(errors.New("channel closed"))

		svc.EnqueueFulfillable(ctx)

		orders.AssertNotCalled(t, "MarkQueued", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("listing failure is swallowed", func(t *testing.T) {
		orders := &mocks.OrderRepository{}
		publisher := &mocks.Publisher{}
		svc := service.NewQueueService(orders, publisher, zap.NewNop())

		orders.On("FindFulfillable", mock.Anything).Return(nil, errors.New("connection reset"))

		svc.EnqueueFulfillable(ctx)

		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
