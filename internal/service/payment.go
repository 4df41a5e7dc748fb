package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/wechatpay"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	outTradeNoPrefix = "QS"

	rechargeMin = "0.01"
	rechargeMax = "10000.00"

	// amountTolerance absorbs rounding drift between the stored price and the
	// amount echoed back by a client before checkout.
	amountTolerance = "0.01"

	staleAfter = 15 * time.Minute
	closeAfter = 2 * time.Hour

	reconcileBatchSize = 100
)

type PaymentService interface {
	CreateOrderPayment(ctx context.Context, cmd CreateOrderPaymentCommand) (PayIntentResponse, error)
	CreateRecharge(ctx context.Context, cmd CreateRechargeCommand) (PayIntentResponse, error)
	QueryStatus(ctx context.Context, outTradeNo string, requesterID uint64) (PaymentStatusResponse, error)
	Close(ctx context.Context, outTradeNo string, requesterID uint64) error
	HandleNotification(ctx context.Context, headers map[string]string, body []byte) error
	ReconcilePending(ctx context.Context)
}

type payment struct {
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
	gateway   wechatpay.Gateway
	node      *snowflake.Node
	txManager repository.TxManager
	logger    *zap.Logger
}

func NewPaymentService(payments repository.PaymentRepository, orders repository.OrderRepository,
	users repository.UserRepository, gateway wechatpay.Gateway, node *snowflake.Node,
	txManager repository.TxManager, logger *zap.Logger) PaymentService {
	return &payment{
		payments:  payments,
		orders:    orders,
		users:     users,
		gateway:   gateway,
		node:      node,
		txManager: txManager,
		logger:    logger,
	}
}

func (p *payment) CreateOrderPayment(ctx context.Context, cmd CreateOrderPaymentCommand) (PayIntentResponse, error) {
	row, err := p.orders.GetByID(cmd.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return PayIntentResponse{}, NewServiceError(constants.ErrCodeOrderNotFound, err)
		}
		return PayIntentResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	if row.UserID != cmd.UserID {
		return PayIntentResponse{}, NewServiceError(constants.ErrCodeForbidden,
			errors.New("order belongs to another user"))
	}

	if row.Status != model.OrderStatusPending {
		return PayIntentResponse{}, NewServiceError(constants.ErrCodeInvalidState,
			fmt.Errorf("order is %s, only pending orders are payable", row.Status))
	}

	tolerance := decimal.RequireFromString(amountTolerance)
	if row.Price.Sub(cmd.Amount).Abs().GreaterThan(tolerance) {
		p.logger.Warn("Order payment amount mismatch",
			zap.Int64("orderID", cmd.OrderID),
			zap.String("price", row.Price.String()),
			zap.String("amount", cmd.Amount.String()))
		return PayIntentResponse{}, NewServiceError(constants.ErrCodeAmountMismatch,
			errors.New("amount does not match the stored order price"))
	}

	orderID := row.ID
	record := model.PaymentRecord{
		UserID:     cmd.UserID,
		Amount:     row.Price,
		Type:       model.PaymentTypeOrder,
		Status:     model.PaymentStatusPending,
		OutTradeNo: p.newOutTradeNo(),
		OrderID:    &orderID,
	}

	description := fmt.Sprintf("消息代发-%s订单", row.Type)
	return p.createIntent(ctx, &record, description)
}

func (p *payment) CreateRecharge(ctx context.Context, cmd CreateRechargeCommand) (PayIntentResponse, error) {
	min := decimal.RequireFromString(rechargeMin)
	max := decimal.RequireFromString(rechargeMax)
	if cmd.Amount.LessThan(min) || cmd.Amount.GreaterThan(max) {
		return PayIntentResponse{}, NewServiceError(constants.ErrCodeAmountOutOfRange,
			errors.New("recharge amount out of range"))
	}

	if _, err := p.users.GetByID(cmd.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return PayIntentResponse{}, NewServiceError(constants.ErrCodeUserNotFound, err)
		}
		return PayIntentResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	record := model.PaymentRecord{
		UserID:     cmd.UserID,
		Amount:     cmd.Amount.Round(2),
		Type:       model.PaymentTypeRecharge,
		Status:     model.PaymentStatusPending,
		OutTradeNo: p.newOutTradeNo(),
	}

	return p.createIntent(ctx, &record, "账户余额充值")
}

// createIntent persists the pending record and registers the intent with the
// gateway inside one transaction, so a gateway failure leaves no orphan row.
func (p *payment) createIntent(ctx context.Context, record *model.PaymentRecord, description string) (PayIntentResponse, error) {
	var codeURL string

	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := p.payments.Create(ctx, record); err != nil {
			return err
		}

		prepay, err := p.gateway.Prepay(ctx, record.OutTradeNo, description, toFen(record.Amount))
		if err != nil {
			return err
		}

		codeURL = prepay.CodeURL
		return nil
	})
	if err != nil {
		p.logger.Error("Failed to create payment intent",
			zap.Error(err),
			zap.String("outTradeNo", record.OutTradeNo),
			zap.Uint64("userID", record.UserID))

		if errors.Is(err, repository.ErrPaymentDuplicate) {
			return PayIntentResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
		}
		if isGatewayError(err) {
			return PayIntentResponse{}, NewServiceError(constants.ErrCodeGatewayError, err)
		}
		return PayIntentResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	p.logger.Info("Payment intent created",
		zap.String("outTradeNo", record.OutTradeNo),
		zap.String("type", string(record.Type)),
		zap.String("amount", record.Amount.String()))

	return PayIntentResponse{OutTradeNo: record.OutTradeNo, CodeURL: codeURL}, nil
}

func (p *payment) QueryStatus(ctx context.Context, outTradeNo string, requesterID uint64) (PaymentStatusResponse, error) {
	record, err := p.getOwned(outTradeNo, requesterID)
	if err != nil {
		return PaymentStatusResponse{}, err
	}

	// Terminal records never change again, so the gateway round trip is
	// skipped entirely.
	if record.Status.Terminal() {
		return statusResponse(record), nil
	}

	result, err := p.gateway.QueryByOutTradeNo(ctx, outTradeNo)
	if err != nil {
		p.logger.Warn("Gateway query failed, returning local payment status",
			zap.Error(err),
			zap.String("outTradeNo", outTradeNo))
		return statusResponse(record), nil
	}

	if result.TradeState == wechatpay.TradeStateSuccess {
		if err := p.settle(ctx, record, result); err != nil {
			return PaymentStatusResponse{}, err
		}

		record, err = p.payments.GetByOutTradeNo(outTradeNo)
		if err != nil {
			return PaymentStatusResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
		}
	}

	return statusResponse(record), nil
}

func (p *payment) Close(ctx context.Context, outTradeNo string, requesterID uint64) error {
	record, err := p.getOwned(outTradeNo, requesterID)
	if err != nil {
		return err
	}

	if record.Status.Terminal() {
		return NewServiceError(constants.ErrCodeInvalidState,
			fmt.Errorf("payment is %s, only pending payments can be closed", record.Status))
	}

	if err := p.gateway.Close(ctx, outTradeNo); err != nil {
		p.logger.Error("Gateway close failed",
			zap.Error(err),
			zap.String("outTradeNo", outTradeNo))
		return NewServiceError(constants.ErrCodeGatewayError, err)
	}

	err = p.payments.MarkClosed(ctx, outTradeNo)
	if err != nil && !errors.Is(err, repository.ErrNoRowsAffected) {
		return NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	p.logger.Info("Payment closed", zap.String("outTradeNo", outTradeNo))
	return nil
}

// HandleNotification processes one webhook delivery. Returning nil
// acknowledges the delivery; only signature failures and storage errors make
// the gateway redeliver.
func (p *payment) HandleNotification(ctx context.Context, headers map[string]string, body []byte) error {
	result, err := p.gateway.ParseNotification(headers, body)
	if err != nil {
		p.logger.Warn("Rejected payment notification", zap.Error(err))
		return NewServiceError(constants.ErrCodeSignatureInvalid, err)
	}

	if result.TradeState != wechatpay.TradeStateSuccess {
		p.logger.Info("Ignoring non-success payment notification",
			zap.String("outTradeNo", result.OutTradeNo),
			zap.String("tradeState", result.TradeState))
		return nil
	}

	record, err := p.payments.GetByOutTradeNo(result.OutTradeNo)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			p.logger.Warn("Notification references unknown out trade no",
				zap.String("outTradeNo", result.OutTradeNo))
			return nil
		}
		return NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	// Replayed notification for an already settled record: acknowledge
	// without side effects.
	if record.Status.Terminal() {
		return nil
	}

	return p.settle(ctx, record, result)
}

// settle applies the success result exactly once. The conditional update on
// the record is the gate: whichever of the webhook and the query path arrives
// second hits zero affected rows and leaves without side effects.
func (p *payment) settle(ctx context.Context, record *model.PaymentRecord, result *wechatpay.TransactionResult) error {
	if result.Amount.Total != toFen(record.Amount) {
		p.logger.Error("Gateway reported amount differs from local record, refusing to settle",
			zap.String("outTradeNo", record.OutTradeNo),
			zap.Int64("gatewayTotal", result.Amount.Total),
			zap.String("recordAmount", record.Amount.String()))
		return nil
	}

	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		err := p.payments.MarkCompleted(ctx, record.OutTradeNo, result.TransactionID)
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil
		}
		if err != nil {
			return err
		}

		switch record.Type {
		case model.PaymentTypeRecharge:
			return p.users.IncreaseBalance(ctx, record.UserID, record.Amount)

		case model.PaymentTypeOrder:
			err := p.orders.MarkPaid(ctx, *record.OrderID, time.Now())
			if errors.Is(err, repository.ErrNoRowsAffected) {
				p.logger.Warn("Order already left pending before settlement",
					zap.Int64("orderID", *record.OrderID),
					zap.String("outTradeNo", record.OutTradeNo))
				return nil
			}
			return err
		}

		return nil
	})
	if err != nil {
		p.logger.Error("Settlement failed",
			zap.Error(err),
			zap.String("outTradeNo", record.OutTradeNo))
		return NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	p.logger.Info("Payment settled",
		zap.String("outTradeNo", record.OutTradeNo),
		zap.String("type", string(record.Type)),
		zap.String("transactionID", result.TransactionID))
	return nil
}

// ReconcilePending is the poll half of the dual reconciliation: it settles
// payments whose webhook never arrived and closes intents nobody will pay.
func (p *payment) ReconcilePending(ctx context.Context) {
	records, err := p.payments.FindStalePending(time.Now().Add(-staleAfter), reconcileBatchSize)
	if err != nil {
		p.logger.Error("Failed to list stale pending payments", zap.Error(err))
		return
	}

	for i := range records {
		record := &records[i]

		result, err := p.gateway.QueryByOutTradeNo(ctx, record.OutTradeNo)
		if err != nil {
			if errors.Is(err, wechatpay.ErrOrderNotExists) {
				p.closeAbandoned(ctx, record)
				continue
			}

			p.logger.Warn("Reconcile query failed",
				zap.Error(err),
				zap.String("outTradeNo", record.OutTradeNo))
			continue
		}

		if result.TradeState == wechatpay.TradeStateSuccess {
			if err := p.settle(ctx, record, result); err != nil {
				p.logger.Error("Reconcile settlement failed",
					zap.Error(err),
					zap.String("outTradeNo", record.OutTradeNo))
			}
			continue
		}

		if time.Since(record.CreatedAt) > closeAfter {
			p.closeAbandoned(ctx, record)
		}
	}
}

func (p *payment) closeAbandoned(ctx context.Context, record *model.PaymentRecord) {
	if err := p.gateway.Close(ctx, record.OutTradeNo); err != nil && !errors.Is(err, wechatpay.ErrOrderNotExists) {
		p.logger.Warn("Failed to close abandoned payment at gateway",
			zap.Error(err),
			zap.String("outTradeNo", record.OutTradeNo))
		return
	}

	err := p.payments.MarkClosed(ctx, record.OutTradeNo)
	if err != nil && !errors.Is(err, repository.ErrNoRowsAffected) {
		p.logger.Error("Failed to mark abandoned payment closed",
			zap.Error(err),
			zap.String("outTradeNo", record.OutTradeNo))
		return
	}

	p.logger.Info("Closed abandoned payment", zap.String("outTradeNo", record.OutTradeNo))
}

func (p *payment) getOwned(outTradeNo string, requesterID uint64) (*model.PaymentRecord, error) {
	record, err := p.payments.GetByOutTradeNo(outTradeNo)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, NewServiceError(constants.ErrCodePaymentNotFound, err)
		}
		return nil, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	if record.UserID != requesterID {
		return nil, NewServiceError(constants.ErrCodeForbidden,
			errors.New("payment belongs to another user"))
	}

	return record, nil
}

func (p *payment) newOutTradeNo() string {
	return outTradeNoPrefix + p.node.Generate().String()
}

func statusResponse(record *model.PaymentRecord) PaymentStatusResponse {
	return PaymentStatusResponse{
		OutTradeNo: record.OutTradeNo,
		Status:     string(record.Status),
		Amount:     record.Amount,
	}
}

// toFen converts a yuan amount to the integer fen the gateway speaks.
func toFen(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func isGatewayError(err error) bool {
	return errors.Is(err, wechatpay.ErrTimeout) ||
		errors.Is(err, wechatpay.ErrServerError) ||
		errors.Is(err, wechatpay.ErrOrderNotExists) ||
		errors.Is(err, wechatpay.ErrSignatureInvalid)
}
