package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"gorm.io/gorm"
)

type MySQLTokenStore struct {
	db *gorm.DB
}

func NewMySQLTokenStore(db *gorm.DB) TokenStore {
	return &MySQLTokenStore{db: db}
}

func (s *MySQLTokenStore) Save(ctx context.Context, token *model.SubmissionToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

// Consume deletes the token in a single conditional statement; the delete
// itself is the success determination, so two racing callers cannot both win.
// A zero-row result is classified afterwards with a plain read.
func (s *MySQLTokenStore) Consume(ctx context.Context, token string, userID uint64, orderType model.OrderType) error {
	result := s.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND order_type = ? AND expires_at > ?",
			token, userID, orderType, time.Now()).
		Delete(&model.SubmissionToken{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		return nil
	}

	return s.classifyFailure(ctx, token, userID, orderType)
}

func (s *MySQLTokenStore) classifyFailure(ctx context.Context, token string, userID uint64, orderType model.OrderType) error {
	var stored model.SubmissionToken

	err := s.db.WithContext(ctx).Where("token = ?", token).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTokenMissing
	}
	if err != nil {
		return err
	}

	if stored.UserID != userID {
		return ErrTokenUserMismatch
	}

	if stored.OrderType != orderType {
		return ErrTokenTypeMismatch
	}

	if !stored.ExpiresAt.After(time.Now()) {
		s.db.WithContext(ctx).Where("token = ?", token).Delete(&model.SubmissionToken{})
		return ErrTokenExpired
	}

	// Matched on re-read but the conditional delete missed: a concurrent
	// consumer won the race between the two statements.
	return ErrTokenMissing
}

func (s *MySQLTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.SubmissionToken{})

	return result.RowsAffected, result.Error
}
