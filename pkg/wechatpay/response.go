package wechatpay

const (
	TradeStateSuccess  = "SUCCESS"
	TradeStateRefund   = "REFUND"
	TradeStateNotPay   = "NOTPAY"
	TradeStateClosed   = "CLOSED"
	TradeStateUserPay  = "USERPAYING"
	TradeStatePayError = "PAYERROR"
)

type PrepayResponse struct {
	CodeURL string `json:"code_url"`
}

type PayerAmount struct {
	Total      int64  `json:"total"`
	PayerTotal int64  `json:"payer_total"`
	Currency   string `json:"currency"`
}

type Payer struct {
	OpenID string `json:"openid"`
}

// TransactionResult is the decoded transaction resource returned by the
// query endpoint and carried encrypted inside webhook notifications.
type TransactionResult struct {
	AppID          string      `json:"appid"`
	MchID          string      `json:"mchid"`
	OutTradeNo     string      `json:"out_trade_no"`
	TransactionID  string      `json:"transaction_id"`
	TradeType      string      `json:"trade_type"`
	TradeState     string      `json:"trade_state"`
	TradeStateDesc string      `json:"trade_state_desc"`
	SuccessTime    string      `json:"success_time"`
	Payer          Payer       `json:"payer"`
	Amount         PayerAmount `json:"amount"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
