package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"go.uber.org/zap"
)

const tokenTTL = 30 * time.Minute

type TokenService interface {
	Issue(ctx context.Context, userID uint64, orderType model.OrderType) (IssueTokenResponse, error)
	Consume(ctx context.Context, token string, userID uint64, orderType model.OrderType) error
	PurgeExpired(ctx context.Context)
}

type token struct {
	store  repository.TokenStore
	logger *zap.Logger
}

func NewTokenService(store repository.TokenStore, logger *zap.Logger) TokenService {
	return &token{store: store, logger: logger}
}

func (t *token) Issue(ctx context.Context, userID uint64, orderType model.OrderType) (IssueTokenResponse, error) {
	if !orderType.Valid() {
		return IssueTokenResponse{}, NewServiceError(constants.ErrCodeInvalidOrderType,
			errors.New("unknown order type"))
	}

	now := time.Now()
	entry := model.SubmissionToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		OrderType: orderType,
		CreatedAt: now,
		ExpiresAt: now.Add(tokenTTL),
	}

	if err := t.store.Save(ctx, &entry); err != nil {
		t.logger.Error("Failed to store submission token",
			zap.Error(err),
			zap.Uint64("userID", userID))
		return IssueTokenResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	return IssueTokenResponse{Token: entry.Token, ExpiresAt: entry.ExpiresAt.Unix()}, nil
}

func (t *token) Consume(ctx context.Context, tok string, userID uint64, orderType model.OrderType) error {
	err := t.store.Consume(ctx, tok, userID, orderType)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, repository.ErrTokenMissing):
		return NewServiceError(constants.ErrCodeTokenMissing, err)
	case errors.Is(err, repository.ErrTokenExpired):
		return NewServiceError(constants.ErrCodeTokenExpired, err)
	case errors.Is(err, repository.ErrTokenUserMismatch):
		t.logger.Warn("Submission token user mismatch",
			zap.Uint64("userID", userID))
		return NewServiceError(constants.ErrCodeTokenUserMismatch, err)
	case errors.Is(err, repository.ErrTokenTypeMismatch):
		return NewServiceError(constants.ErrCodeTokenTypeMismatch, err)
	}

	t.logger.Error("Failed to consume submission token", zap.Error(err))
	return NewServiceError(constants.ErrCodeDatabaseError, err)
}

func (t *token) PurgeExpired(ctx context.Context) {
	purged, err := t.store.PurgeExpired(ctx)
	if err != nil {
		t.logger.Error("Token sweep failed", zap.Error(err))
		return
	}

	if purged > 0 {
		t.logger.Info("Purged expired submission tokens", zap.Int64("count", purged))
	}
}
