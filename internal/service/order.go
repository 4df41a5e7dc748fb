package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"go.uber.org/zap"
)

const maxContentRunes = 500

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// phoneSeparators are characters that imply the field holds more than one
// number; such submissions are rejected outright.
const phoneSeparators = ",;、，； \n\t"

type OrderService interface {
	Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResponse, error)
	GetOrder(ctx context.Context, orderID int64, requesterID uint64) (*model.Order, error)
	UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) error
}

type order struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	tokens     TokenService
	pricing    PricingService
	moderation ModerationService
	txManager  repository.TxManager
	logger     *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository,
	tokens TokenService, pricing PricingService, moderation ModerationService,
	txManager repository.TxManager, logger *zap.Logger) OrderService {
	return &order{
		orders:     orders,
		users:      users,
		tokens:     tokens,
		pricing:    pricing,
		moderation: moderation,
		txManager:  txManager,
		logger:     logger,
	}
}

func (o *order) Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResponse, error) {
	if !cmd.Type.Valid() {
		return SubmitOrderResponse{}, NewServiceError(constants.ErrCodeInvalidOrderType,
			errors.New("unknown order type"))
	}

	if err := o.tokens.Consume(ctx, cmd.SubmissionToken, cmd.UserID, cmd.Type); err != nil {
		return SubmitOrderResponse{}, err
	}

	// Cheap retry path: a duplicate submit returns the stored row before any
	// per-call validation work. The unique index remains the real guard.
	if cmd.IdempotencyKey != "" {
		existing, err := o.orders.GetByIdempotencyKey(cmd.UserID, cmd.IdempotencyKey)
		if err == nil {
			o.logger.Info("Duplicate order submit short-circuited",
				zap.Uint64("userID", cmd.UserID),
				zap.Int64("orderID", existing.ID))
			return SubmitOrderResponse{OrderID: existing.ID, Price: existing.Price, IsDuplicate: true}, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return SubmitOrderResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
		}
	}

	if err := o.validate(cmd); err != nil {
		return SubmitOrderResponse{}, err
	}

	price := o.pricing.ComputePrice(cmd.Type, cmd.Content, cmd.ContactMethod)

	if err := o.moderate(ctx, cmd); err != nil {
		return SubmitOrderResponse{}, err
	}

	if _, err := o.users.GetByID(cmd.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return SubmitOrderResponse{}, NewServiceError(constants.ErrCodeUserNotFound, err)
		}
		return SubmitOrderResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	now := time.Now()
	row := model.Order{
		UserID:        cmd.UserID,
		Type:          cmd.Type,
		ContactTarget: cmd.ContactTarget,
		ContactMethod: cmd.ContactMethod,
		Content:       cmd.Content,
		ScheduledTime: cmd.ScheduledTime,
		Status:        model.OrderStatusPending,
		Price:         price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if cmd.IdempotencyKey != "" {
		key := cmd.IdempotencyKey
		row.IdempotencyKey = &key
	}
	if cmd.Remark != "" {
		remark := cmd.Remark
		row.Remark = &remark
	}

	err := o.txManager.WithTx(ctx, func(ctx context.Context) error {
		return o.orders.Create(ctx, &row)
	})
	if err == nil {
		o.logger.Info("Order created",
			zap.Int64("orderID", row.ID),
			zap.Uint64("userID", cmd.UserID),
			zap.String("type", string(cmd.Type)),
			zap.String("price", price.String()))
		return SubmitOrderResponse{OrderID: row.ID, Price: price}, nil
	}

	// Lost the insert race against a concurrent identical submit: the unique
	// index fired, so the winner's row is authoritative.
	if errors.Is(err, repository.ErrOrderDuplicate) && cmd.IdempotencyKey != "" {
		winner, qerr := o.orders.GetByIdempotencyKey(cmd.UserID, cmd.IdempotencyKey)
		if qerr != nil {
			return SubmitOrderResponse{}, NewServiceError(constants.ErrCodeDatabaseError, qerr)
		}

		o.logger.Warn("Duplicate order insert resolved to winner row",
			zap.Uint64("userID", cmd.UserID),
			zap.Int64("orderID", winner.ID))
		return SubmitOrderResponse{OrderID: winner.ID, Price: winner.Price, IsDuplicate: true}, nil
	}

	o.logger.Error("Failed to create order",
		zap.Error(err),
		zap.Uint64("userID", cmd.UserID))
	return SubmitOrderResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
}

func (o *order) validate(cmd SubmitOrderCommand) error {
	runes := utf8.RuneCountInString(cmd.Content)
	if runes > maxContentRunes {
		return NewServiceError(constants.ErrCodeContentTooLong, errors.New("content too long"))
	}

	if cmd.Type != model.OrderTypeSMS {
		return nil
	}

	if runes == 0 {
		return NewServiceError(constants.ErrCodeContentTooLong, errors.New("content empty"))
	}

	if strings.ContainsAny(cmd.ContactTarget, phoneSeparators) {
		return NewServiceError(constants.ErrCodePhoneFormatInvalid,
			errors.New("contact target holds multiple numbers"))
	}

	if !phonePattern.MatchString(cmd.ContactTarget) {
		return NewServiceError(constants.ErrCodePhoneFormatInvalid,
			errors.New("contact target is not a valid phone number"))
	}

	return nil
}

func (o *order) moderate(ctx context.Context, cmd SubmitOrderCommand) error {
	for _, text := range []string{cmd.Content, cmd.Remark} {
		if text == "" {
			continue
		}

		result := o.moderation.Check(ctx, text)
		if !result.Pass {
			o.logger.Warn("Order content rejected by moderation",
				zap.Uint64("userID", cmd.UserID),
				zap.Strings("forbiddenWords", result.ForbiddenWords))
			return NewServiceErrorWithDetail(constants.ErrCodeContentRejected,
				strings.Join(result.ForbiddenWords, ", "),
				errors.New("content rejected"))
		}
	}

	return nil
}

func (o *order) GetOrder(ctx context.Context, orderID int64, requesterID uint64) (*model.Order, error) {
	row, err := o.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, NewServiceError(constants.ErrCodeOrderNotFound, err)
		}
		return nil, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	if row.UserID != requesterID {
		return nil, NewServiceError(constants.ErrCodeForbidden, errors.New("order belongs to another user"))
	}

	return row, nil
}

func (o *order) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) error {
	if _, err := o.GetOrder(ctx, cmd.OrderID, cmd.RequesterID); err != nil {
		return err
	}

	if err := o.orders.UpdateStatus(ctx, cmd.OrderID, cmd.Status); err != nil {
		o.logger.Error("Failed to update order status",
			zap.Error(err),
			zap.Int64("orderID", cmd.OrderID))
		return NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	return nil
}
