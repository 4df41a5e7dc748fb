package mocks

import (
	"context"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepository) GetByID(id int64) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *OrderRepository) GetByIdempotencyKey(userID uint64, key string) (*model.Order, error) {
	args := m.Called(userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepository) UpdateStatusGuarded(ctx context.Context, orderID int64, to model.OrderStatus, from ...model.OrderStatus) error {
	args := m.Called(ctx, orderID, to, from)
	return args.Error(0)
}

func (m *OrderRepository) ClaimForDelivery(ctx context.Context, orderID int64, attempt int, staleBefore time.Time) error {
	args := m.Called(ctx, orderID, attempt, staleBefore)
	return args.Error(0)
}

func (m *OrderRepository) MarkPaid(ctx context.Context, orderID int64, paidAt time.Time) error {
	args := m.Called(ctx, orderID, paidAt)
	return args.Error(0)
}

func (m *OrderRepository) FindFulfillable(limit int) ([]model.Order, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *OrderRepository) MarkQueued(ctx context.Context, orderID int64, queuedAt time.Time) error {
	args := m.Called(ctx, orderID, queuedAt)
	return args.Error(0)
}

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, record *model.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *PaymentRepository) GetByOutTradeNo(outTradeNo string) (*model.PaymentRecord, error) {
	args := m.Called(outTradeNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRecord), args.Error(1)
}

func (m *PaymentRepository) MarkCompleted(ctx context.Context, outTradeNo string, transactionID string) error {
	args := m.Called(ctx, outTradeNo, transactionID)
	return args.Error(0)
}

func (m *PaymentRepository) MarkClosed(ctx context.Context, outTradeNo string) error {
	args := m.Called(ctx, outTradeNo)
	return args.Error(0)
}

func (m *PaymentRepository) FindStalePending(olderThan time.Time, limit int) ([]model.PaymentRecord, error) {
	args := m.Called(olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentRecord), args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByID(id uint64) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) IncreaseBalance(ctx context.Context, userID uint64, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

type TokenStore struct {
	mock.Mock
}

func (m *TokenStore) Save(ctx context.Context, token *model.SubmissionToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenStore) Consume(ctx context.Context, token string, userID uint64, orderType model.OrderType) error {
	args := m.Called(ctx, token, userID, orderType)
	return args.Error(0)
}

func (m *TokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// TxManager runs the callback inline unless an error is stubbed, so tests see
// the same repository calls a real transaction would make.
type TxManager struct {
	mock.Mock
}

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
