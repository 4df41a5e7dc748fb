package wechatpay

type Amount struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency,omitempty"`
}

type PrepayRequest struct {
	AppID       string `json:"appid"`
	MchID       string `json:"mchid"`
	Description string `json:"description"`
	OutTradeNo  string `json:"out_trade_no"`
	NotifyURL   string `json:"notify_url"`
	Amount      Amount `json:"amount"`
}

type CloseRequest struct {
	MchID string `json:"mchid"`
}
