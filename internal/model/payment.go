package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeRecharge PaymentType = "RECHARGE"
	PaymentTypeOrder    PaymentType = "ORDER"
	PaymentTypeConsume  PaymentType = "CONSUME"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusClosed    PaymentStatus = "CLOSED"
)

// Terminal returns true once no further transition may touch this record.
// Status moves forward only: PENDING -> COMPLETED | CLOSED | FAILED.
func (s PaymentStatus) Terminal() bool {
	return s != PaymentStatusPending
}

// PaymentRecord is the local ledger entry for one gateway payment attempt.
// OutTradeNo is the merchant-generated ID sent to the gateway; it is the
// correlation key for both the query and the webhook reconciliation paths.
type PaymentRecord struct {
	ID            int64           `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	UserID        uint64          `gorm:"column:user_id;not null;index"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"`
	Type          PaymentType     `gorm:"column:payment_type;type:varchar(10);not null"`
	Status        PaymentStatus   `gorm:"column:status;type:varchar(10);not null;index"`
	OutTradeNo    string          `gorm:"column:out_trade_no;type:varchar(64);not null;uniqueIndex"`
	TransactionID *string         `gorm:"column:transaction_id;type:varchar(64)"`
	OrderID       *int64          `gorm:"column:order_id;index"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}
