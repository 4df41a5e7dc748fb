package service_test

import (
	"context"
	"testing"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/mocks"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestUser_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored balance", func(t *testing.T) {
		users := &mocks.UserRepository{}
		svc := service.NewUserService(users, zap.NewNop())

		users.On("GetByID", uint64(7)).
			Return(&model.User{ID: 7, Balance: decimal.RequireFromString("42.50")}, nil)

		resp, err := svc.GetBalance(ctx, 7)

		assert.NoError(t, err)
		assert.Equal(t, uint64(7), resp.UserID)
		assert.Equal(t, "42.50", resp.Balance.StringFixed(2))
		users.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := &mocks.UserRepository{}
		svc := service.NewUserService(users, zap.NewNop())

		users.On("GetByID", uint64(9)).Return(nil, repository.ErrUserNotFound)

		_, err := svc.GetBalance(ctx, 9)

		assertServiceCode(t, err, constants.ErrCodeUserNotFound)
	})

	t.Run("storage outage", func(t *testing.T) {
		users := &mocks.UserRepository{}
		svc := service.NewUserService(users, zap.NewNop())

		users.On("GetByID", uint64(7)).Return(nil, assert.AnError)

		_, err := svc.GetBalance(ctx, 7)

		assertServiceCode(t, err, constants.ErrCodeDatabaseError)
	})
}
