package service

import (
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/shopspring/decimal"
)

type SubmitOrderCommand struct {
	UserID          uint64
	Type            model.OrderType
	ContactTarget   string
	ContactMethod   string
	Content         string
	ScheduledTime   *time.Time
	Remark          string
	IdempotencyKey  string
	SubmissionToken string
}

type UpdateOrderStatusCommand struct {
	OrderID     int64
	RequesterID uint64
	Status      model.OrderStatus
}

type CreateOrderPaymentCommand struct {
	UserID  uint64
	OrderID int64
	Amount  decimal.Decimal
}

type CreateRechargeCommand struct {
	UserID uint64
	Amount decimal.Decimal
}

type RelayOrderCommand struct {
	OrderID       int64  `json:"order_id"`
	OrderType     string `json:"order_type"`
	ContactTarget string `json:"contact_target"`
}
