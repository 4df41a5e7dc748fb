package model

import "time"

// SubmissionToken is a one-time credential bound to (user, order type).
// Consumed on the first successful order submit or swept after expiry.
type SubmissionToken struct {
	Token     string    `gorm:"primaryKey;column:token;type:varchar(64);<-:create"`
	UserID    uint64    `gorm:"column:user_id;not null"`
	OrderType OrderType `gorm:"column:order_type;type:varchar(10);not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
}

func (SubmissionToken) TableName() string {
	return "submission_tokens"
}
