package v1

import "time"

type IssueTokenRequest struct {
	OrderType string `json:"order_type" validate:"required,oneof=sms call human"`
}

type SubmitOrderRequest struct {
	OrderType       string     `json:"order_type" validate:"required,oneof=sms call human"`
	ContactTarget   string     `json:"contact_target" validate:"required,max=255"`
	ContactMethod   string     `json:"contact_method" validate:"max=50"`
	Content         string     `json:"content" validate:"max=500"`
	ScheduledTime   *time.Time `json:"scheduled_time"`
	Remark          string     `json:"remark" validate:"max=500"`
	IdempotencyKey  string     `json:"idempotency_key" validate:"max=128"`
	SubmissionToken string     `json:"submission_token" validate:"required,max=64"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID PROCESSING COMPLETED FAILED CANCELLED"`
}

type CreateOrderPaymentRequest struct {
	OrderID int64  `json:"order_id" validate:"required,min=1"`
	Amount  string `json:"amount" validate:"required,amount"`
}

type CreateRechargeRequest struct {
	Amount string `json:"amount" validate:"required,amount"`
}
