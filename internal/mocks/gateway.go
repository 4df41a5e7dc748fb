package mocks

import (
	"context"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/moderation"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/relayer"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/wechatpay"
	"github.com/stretchr/testify/mock"
)

type PaymentGateway struct {
	mock.Mock
}

func (m *PaymentGateway) Prepay(ctx context.Context, outTradeNo, description string, amountTotal int64) (wechatpay.PrepayResponse, error) {
	args := m.Called(ctx, outTradeNo, description, amountTotal)
	return args.Get(0).(wechatpay.PrepayResponse), args.Error(1)
}

func (m *PaymentGateway) QueryByOutTradeNo(ctx context.Context, outTradeNo string) (*wechatpay.TransactionResult, error) {
	args := m.Called(ctx, outTradeNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wechatpay.TransactionResult), args.Error(1)
}

func (m *PaymentGateway) Close(ctx context.Context, outTradeNo string) error {
	args := m.Called(ctx, outTradeNo)
	return args.Error(0)
}

func (m *PaymentGateway) ParseNotification(headers map[string]string, body []byte) (*wechatpay.TransactionResult, error) {
	args := m.Called(headers, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wechatpay.TransactionResult), args.Error(1)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, exchange string, routingKey string, body []byte) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}

type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) Dispatch(ctx context.Context, req relayer.Request) (relayer.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(relayer.Response), args.Error(1)
}

type Classifier struct {
	mock.Mock
}

func (m *Classifier) Classify(ctx context.Context, text string) (moderation.Result, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(moderation.Result), args.Error(1)
}
