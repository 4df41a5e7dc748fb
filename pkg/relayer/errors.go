package relayer

const (
	ErrorCodeServerError   = "SERVER_ERROR"   // For 5xx HTTP status
	ErrorCodeTimeout       = "TIMEOUT"        // For context timeout
	ErrorCodeInvalidTarget = "INVALID_TARGET" // For 400/validation errors
	ErrorCodeNetworkError  = "NETWORK_ERROR"  // For connection failures
)
