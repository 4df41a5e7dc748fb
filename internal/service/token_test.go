package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/mocks"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestToken_Issue(t *testing.T) {
	logger := zap.NewNop()

	t.Run("issues a fresh token with an expiry", func(t *testing.T) {
		store := &mocks.TokenStore{}
		svc := service.NewTokenService(store, logger)

		var saved *model.SubmissionToken
		store.On("Save", context.Background(), mock.MatchedBy(func(tok *model.SubmissionToken) bool {
			saved = tok
			return tok.UserID == uint64(7) && tok.OrderType == model.OrderTypeSMS && tok.Token != ""
		})).Return(nil)

		resp, err := svc.Issue(context.Background(), 7, model.OrderTypeSMS)

		assert.NoError(t, err)
		assert.Equal(t, saved.Token, resp.Token)
		assert.Equal(t, saved.ExpiresAt.Unix(), resp.ExpiresAt)
		assert.True(t, saved.ExpiresAt.After(time.Now()))
		store.AssertExpectations(t)
	})

	t.Run("rejects unknown order type without touching the store", func(t *testing.T) {
		store := &mocks.TokenStore{}
		svc := service.NewTokenService(store, logger)

		_, err := svc.Issue(context.Background(), 7, model.OrderType("fax"))

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeInvalidOrderType, serviceErr.Code)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("store failure surfaces as database error", func(t *testing.T) {
		store := &mocks.TokenStore{}
		svc := service.NewTokenService(store, logger)

		store.On("Save", context.Background(), mock.Anything).Return(errors.New("connection reset"))

		_, err := svc.Issue(context.Background(), 7, model.OrderTypeCall)

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeDatabaseError, serviceErr.Code)
	})
}

func TestToken_Consume(t *testing.T) {
	logger := zap.NewNop()

	cases := []struct {
		name     string
		storeErr error
		wantCode string
	}{
		{"missing token", repository.ErrTokenMissing, constants.ErrCodeTokenMissing},
		{"expired token", repository.ErrTokenExpired, constants.ErrCodeTokenExpired},
		{"token of another user", repository.ErrTokenUserMismatch, constants.ErrCodeTokenUserMismatch},
		{"token of another order type", repository.ErrTokenTypeMismatch, constants.ErrCodeTokenTypeMismatch},
		{"store outage", errors.New("connection reset"), constants.ErrCodeDatabaseError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mocks.TokenStore{}
			svc := service.NewTokenService(store, logger)

			store.On("Consume", context.Background(), "tok", uint64(7), model.OrderTypeSMS).Return(tc.storeErr)

			err := svc.Consume(context.Background(), "tok", 7, model.OrderTypeSMS)

			var serviceErr service.Error
			assert.True(t, errors.As(err, &serviceErr))
			assert.Equal(t, tc.wantCode, serviceErr.Code)
			store.AssertExpectations(t)
		})
	}

	t.Run("successful consume", func(t *testing.T) {
		store := &mocks.TokenStore{}
		svc := service.NewTokenService(store, logger)

		store.On("Consume", context.Background(), "tok", uint64(7), model.OrderTypeSMS).Return(nil)

		assert.NoError(t, svc.Consume(context.Background(), "tok", 7, model.OrderTypeSMS))
		store.AssertExpectations(t)
	})
}
