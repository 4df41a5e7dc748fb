package contract

type Response struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Result  any    `json:"result,omitempty"`
}
