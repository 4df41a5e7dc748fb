package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeSMS   OrderType = "sms"
	OrderTypeCall  OrderType = "call"
	OrderTypeHuman OrderType = "human"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeSMS, OrderTypeCall, OrderTypeHuman:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusFailed     OrderStatus = "FAILED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Order rows are never hard-deleted. The unique index on
// (user_id, idempotency_key) is the authoritative duplicate guard; MySQL
// allows any number of NULL keys, so orders submitted without a key never
// collide.
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	UserID         uint64          `gorm:"column:user_id;not null;index;index:idx_user_idem_key,unique"`
	Type           OrderType       `gorm:"column:order_type;type:varchar(10);not null"`
	ContactTarget  string          `gorm:"column:contact_target;type:varchar(255);not null"`
	ContactMethod  string          `gorm:"column:contact_method;type:varchar(50)"`
	Content        string          `gorm:"column:content;type:text"`
	ScheduledTime  *time.Time      `gorm:"column:scheduled_time"`
	Status         OrderStatus     `gorm:"column:status;type:varchar(20);not null;index"`
	Price          decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Remark         *string         `gorm:"column:remark;type:varchar(500)"`
	IdempotencyKey *string         `gorm:"column:idempotency_key;type:varchar(128);index:idx_user_idem_key,unique"`
	QueuedAt       *time.Time      `gorm:"column:queued_at"`
	PaidAt         *time.Time      `gorm:"column:paid_at"`
	AttemptCount   int             `gorm:"column:attempt_count;not null;default:0"`
	LastAttemptAt  *time.Time      `gorm:"column:last_attempt_at"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
