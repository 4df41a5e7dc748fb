package service

import (
	"context"
	"errors"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"go.uber.org/zap"
)

type UserService interface {
	GetBalance(ctx context.Context, userID uint64) (BalanceResponse, error)
}

type user struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, logger *zap.Logger) UserService {
	return &user{users: users, logger: logger}
}

// GetBalance is read-only; balance writes happen exclusively through the
// recharge settlement path.
func (u *user) GetBalance(ctx context.Context, userID uint64) (BalanceResponse, error) {
	row, err := u.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return BalanceResponse{}, NewServiceError(constants.ErrCodeUserNotFound, err)
		}

		u.logger.Error("Failed to read user balance",
			zap.Uint64("userID", userID), zap.Error(err))
		return BalanceResponse{}, NewServiceError(constants.ErrCodeDatabaseError, err)
	}

	return BalanceResponse{UserID: row.ID, Balance: row.Balance}, nil
}
