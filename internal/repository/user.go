package repository

import (
	"context"
	"errors"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("USER_NOT_FOUND")

type UserRepository interface {
	GetByID(id uint64) (*model.User, error)
	IncreaseBalance(ctx context.Context, userID uint64, amount decimal.Decimal) error
}

type User struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &User{db: db}
}

func (u *User) GetByID(id uint64) (*model.User, error) {
	var user model.User

	err := u.db.Where("id = ?", id).First(&user).Error
	if err == nil {
		return &user, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	return nil, err
}

// IncreaseBalance applies the credit as a single relative update so that
// concurrent settlements never lose a read-modify-write race.
func (u *User) IncreaseBalance(ctx context.Context, userID uint64, amount decimal.Decimal) error {
	db := GetTx(ctx, u.db)

	result := db.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
