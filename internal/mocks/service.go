package mocks

import (
	"context"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type TokenService struct {
	mock.Mock
}

func (m *TokenService) Issue(ctx context.Context, userID uint64, orderType model.OrderType) (service.IssueTokenResponse, error) {
	args := m.Called(ctx, userID, orderType)
	return args.Get(0).(service.IssueTokenResponse), args.Error(1)
}

func (m *TokenService) Consume(ctx context.Context, token string, userID uint64, orderType model.OrderType) error {
	args := m.Called(ctx, token, userID, orderType)
	return args.Error(0)
}

func (m *TokenService) PurgeExpired(ctx context.Context) {
	m.Called(ctx)
}

type PricingService struct {
	mock.Mock
}

func (m *PricingService) ComputePrice(orderType model.OrderType, content, contactMethod string) decimal.Decimal {
	args := m.Called(orderType, content, contactMethod)
	return args.Get(0).(decimal.Decimal)
}

type ModerationService struct {
	mock.Mock
}

func (m *ModerationService) Check(ctx context.Context, text string) service.ModerationResult {
	args := m.Called(ctx, text)
	return args.Get(0).(service.ModerationResult)
}

type OrderService struct {
	mock.Mock
}

func (m *OrderService) Submit(ctx context.Context, cmd service.SubmitOrderCommand) (service.SubmitOrderResponse, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.SubmitOrderResponse), args.Error(1)
}

func (m *OrderService) GetOrder(ctx context.Context, orderID int64, requesterID uint64) (*model.Order, error) {
	args := m.Called(ctx, orderID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *OrderService) UpdateStatus(ctx context.Context, cmd service.UpdateOrderStatusCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) CreateOrderPayment(ctx context.Context, cmd service.CreateOrderPaymentCommand) (service.PayIntentResponse, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.PayIntentResponse), args.Error(1)
}

func (m *PaymentService) CreateRecharge(ctx context.Context, cmd service.CreateRechargeCommand) (service.PayIntentResponse, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.PayIntentResponse), args.Error(1)
}

func (m *PaymentService) QueryStatus(ctx context.Context, outTradeNo string, requesterID uint64) (service.PaymentStatusResponse, error) {
	args := m.Called(ctx, outTradeNo, requesterID)
	return args.Get(0).(service.PaymentStatusResponse), args.Error(1)
}

func (m *PaymentService) Close(ctx context.Context, outTradeNo string, requesterID uint64) error {
	args := m.Called(ctx, outTradeNo, requesterID)
	return args.Error(0)
}

func (m *PaymentService) HandleNotification(ctx context.Context, headers map[string]string, body []byte) error {
	args := m.Called(ctx, headers, body)
	return args.Error(0)
}

func (m *PaymentService) ReconcilePending(ctx context.Context) {
	m.Called(ctx)
}

type UserService struct {
	mock.Mock
}

func (m *UserService) GetBalance(ctx context.Context, userID uint64) (service.BalanceResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(service.BalanceResponse), args.Error(1)
}
