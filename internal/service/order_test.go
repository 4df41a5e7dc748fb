package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/mocks"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type orderFixture struct {
	orders     *mocks.OrderRepository
	users      *mocks.UserRepository
	tokens     *mocks.TokenService
	pricing    *mocks.PricingService
	moderation *mocks.ModerationService
	tx         *mocks.TxManager
	svc        service.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:     &mocks.OrderRepository{},
		users:      &mocks.UserRepository{},
		tokens:     &mocks.TokenService{},
		pricing:    &mocks.PricingService{},
		moderation: &mocks.ModerationService{},
		tx:         &mocks.TxManager{},
	}

	f.svc = service.NewOrderService(f.orders, f.users, f.tokens, f.pricing, f.moderation,
		f.tx, zap.NewNop())
	return f
}

func smsCommand() service.SubmitOrderCommand {
	return service.SubmitOrderCommand{
		UserID:          7,
		Type:            model.OrderTypeSMS,
		ContactTarget:   "13812345678",
		Content:         "记得带伞,今天有雨",
		IdempotencyKey:  "idem-001",
		SubmissionToken: "tok-001",
	}
}

func assertServiceCode(t *testing.T, err error, code string) {
	t.Helper()

	var serviceErr service.Error
	assert.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, code, serviceErr.Code)
}

func TestOrder_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a priced pending order", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		price := decimal.RequireFromString("1.00")

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound).Once()
		f.pricing.On("ComputePrice", cmd.Type, cmd.Content, cmd.ContactMethod).Return(price)
		f.moderation.On("Check", ctx, cmd.Content).Return(service.ModerationResult{Pass: true})
		f.users.On("GetByID", cmd.UserID).Return(&model.User{ID: cmd.UserID}, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.orders.On("Create", ctx, mock.MatchedBy(func(row *model.Order) bool {
			row.ID = 42
			return row.UserID == cmd.UserID &&
				row.Status == model.OrderStatusPending &&
				row.Price.Equal(price) &&
				row.IdempotencyKey != nil && *row.IdempotencyKey == cmd.IdempotencyKey
		})).Return(nil)

		resp, err := f.svc.Submit(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), resp.OrderID)
		assert.True(t, resp.Price.Equal(price))
		assert.False(t, resp.IsDuplicate)
		f.orders.AssertExpectations(t)
		f.tokens.AssertExpectations(t)
	})

	t.Run("rejects unknown order type before consuming the token", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		cmd.Type = model.OrderType("fax")

		_, err := f.svc.Submit(ctx, cmd)

		assertServiceCode(t, err, constants.ErrCodeInvalidOrderType)
		f.tokens.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token failure stops the submit", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).
			Return(service.NewServiceError(constants.ErrCodeTokenExpired, errors.New("expired")))

		_, err := f.svc.Submit(ctx, cmd)

		assertServiceCode(t, err, constants.ErrCodeTokenExpired)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repeated idempotency key returns the stored order", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		stored := &model.Order{ID: 42, UserID: cmd.UserID, Price: decimal.RequireFromString("1.00")}

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).Return(stored, nil)

		resp, err := f.svc.Submit(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), resp.OrderID)
		assert.True(t, resp.IsDuplicate)
		assert.True(t, resp.Price.Equal(stored.Price))
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.pricing.AssertNotCalled(t, "ComputePrice", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("losing the insert race resolves to the winner row", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		price := decimal.RequireFromString("1.00")
		winner := &model.Order{ID: 99, UserID: cmd.UserID, Price: price}

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound).Once()
		f.pricing.On("ComputePrice", cmd.Type, cmd.Content, cmd.ContactMethod).Return(price)
		f.moderation.On("Check", ctx, cmd.Content).Return(service.ModerationResult{Pass: true})
		f.users.On("GetByID", cmd.UserID).Return(&model.User{ID: cmd.UserID}, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.orders.On("Create", ctx, mock.Anything).Return(repository.ErrOrderDuplicate)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).Return(winner, nil).Once()

		resp, err := f.svc.Submit(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, int64(99), resp.OrderID)
		assert.True(t, resp.IsDuplicate)
		f.orders.AssertExpectations(t)
	})

	t.Run("rejects multiple phone numbers in one order", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		cmd.ContactTarget = "13812345678,13987654321"

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound)

		_, err := f.svc.Submit(ctx, cmd)

		assertServiceCode(t, err, constants.ErrCodePhoneFormatInvalid)
	})

	t.Run("rejects malformed phone number", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		cmd.ContactTarget = "12012345678"

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound)

		_, err := f.svc.Submit(ctx, cmd)

		assertServiceCode(t, err, constants.ErrCodePhoneFormatInvalid)
	})

	t.Run("rejects content over the length cap", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		cmd.Content = strings.Repeat("好", 501)

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound)

		_, err := f.svc.Submit(ctx, cmd)

		assertServiceCode(t, err, constants.ErrCodeContentTooLong)
	})

	t.Run("rejects empty sms content", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		cmd.Content = ""

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound)

		_, err := f.svc.Submit(ctx, cmd)

		assertServiceCode(t, err, constants.ErrCodeContentTooLong)
	})

	t.Run("moderation rejection carries the matched words", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		price := decimal.RequireFromString("1.00")

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound)
		f.pricing.On("ComputePrice", cmd.Type, cmd.Content, cmd.ContactMethod).Return(price)
		f.moderation.On("Check", ctx, cmd.Content).
			Return(service.ModerationResult{Pass: false, ForbiddenWords: []string{"赌博"}})

		_, err := f.svc.Submit(ctx, cmd)

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeContentRejected, serviceErr.Code)
		assert.Equal(t, "赌博", serviceErr.Detail)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("moderation outage does not block the order", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		price := decimal.RequireFromString("1.00")

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound)
		f.pricing.On("ComputePrice", cmd.Type, cmd.Content, cmd.ContactMethod).Return(price)
		f.moderation.On("Check", ctx, cmd.Content).
			Return(service.ModerationResult{Pass: true, Skipped: true})
		f.users.On("GetByID", cmd.UserID).Return(&model.User{ID: cmd.UserID}, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.orders.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Submit(ctx, cmd)

		assert.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newOrderFixture()
		cmd := smsCommand()
		price := decimal.RequireFromString("1.00")

		f.tokens.On("Consume", ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type).Return(nil)
		f.orders.On("GetByIdempotencyKey", cmd.UserID, cmd.IdempotencyKey).
			Return(nil, repository.ErrOrderNotFound)
		f.pricing.On("ComputePrice", cmd.Type, cmd.Content, cmd.ContactMethod).Return(price)
		f.moderation.On("Check", ctx, cmd.Content).Return(service.ModerationResult{Pass: true})
		f.users.On("GetByID", cmd.UserID).Return(nil, repository.ErrUserNotFound)

		_, err := f.svc.Submit(ctx, cmd)

		assertServiceCode(t, err, constants.ErrCodeUserNotFound)
	})
}

func TestOrder_GetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("owner reads the order", func(t *testing.T) {
		f := newOrderFixture()
		stored := &model.Order{ID: 42, UserID: 7}

		f.orders.On("GetByID", int64(42)).Return(stored, nil)

		row, err := f.svc.GetOrder(ctx, 42, 7)

		assert.NoError(t, err)
		assert.Equal(t, stored, row)
	})

	t.Run("other users are refused", func(t *testing.T) {
		f := newOrderFixture()

		f.orders.On("GetByID", int64(42)).Return(&model.Order{ID: 42, UserID: 8}, nil)

		_, err := f.svc.GetOrder(ctx, 42, 7)

		assertServiceCode(t, err, constants.ErrCodeForbidden)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newOrderFixture()

		f.orders.On("GetByID", int64(42)).Return(nil, repository.ErrOrderNotFound)

		_, err := f.svc.GetOrder(ctx, 42, 7)

		assertServiceCode(t, err, constants.ErrCodeOrderNotFound)
	})
}

func TestOrder_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates the status", func(t *testing.T) {
		f := newOrderFixture()

		f.orders.On("GetByID", int64(42)).Return(&model.Order{ID: 42, UserID: 7}, nil)
		f.orders.On("UpdateStatus", ctx, int64(42), model.OrderStatusCancelled).Return(nil)

		err := f.svc.UpdateStatus(ctx, service.UpdateOrderStatusCommand{
			OrderID: 42, RequesterID: 7, Status: model.OrderStatusCancelled,
		})

		assert.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		f := newOrderFixture()

		f.orders.On("GetByID", int64(42)).Return(&model.Order{ID: 42, UserID: 8}, nil)

		err := f.svc.UpdateStatus(ctx, service.UpdateOrderStatusCommand{
			OrderID: 42, RequesterID: 7, Status: model.OrderStatusCancelled,
		})

		assertServiceCode(t, err, constants.ErrCodeForbidden)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
