package service

import "github.com/shopspring/decimal"

type IssueTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type SubmitOrderResponse struct {
	OrderID     int64           `json:"order_id"`
	Price       decimal.Decimal `json:"price"`
	IsDuplicate bool            `json:"is_duplicate"`
}

type PayIntentResponse struct {
	OutTradeNo string `json:"out_trade_no"`
	CodeURL    string `json:"code_url"`
}

type PaymentStatusResponse struct {
	OutTradeNo string          `json:"out_trade_no"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
}

type BalanceResponse struct {
	UserID  uint64          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}
