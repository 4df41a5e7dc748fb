package moderation

const (
	ErrorCodeServerError  = "SERVER_ERROR"  // For 5xx HTTP status
	ErrorCodeTimeout      = "TIMEOUT"       // For context timeout
	ErrorCodeNetworkError = "NETWORK_ERROR" // For connection failures
)
