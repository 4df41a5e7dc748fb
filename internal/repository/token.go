package repository

import (
	"context"
	"errors"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
)

var (
	ErrTokenMissing      = errors.New("TOKEN_MISSING")
	ErrTokenExpired      = errors.New("TOKEN_EXPIRED")
	ErrTokenUserMismatch = errors.New("TOKEN_USER_MISMATCH")
	ErrTokenTypeMismatch = errors.New("TOKEN_TYPE_MISMATCH")
)

// TokenStore holds submission tokens. Consume must be atomic: when N callers
// race on the same token, exactly one succeeds and the rest observe
// ErrTokenMissing.
type TokenStore interface {
	Save(ctx context.Context, token *model.SubmissionToken) error
	Consume(ctx context.Context, token string, userID uint64, orderType model.OrderType) error
	PurgeExpired(ctx context.Context) (int64, error)
}
