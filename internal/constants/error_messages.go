package constants

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeInvalidOrderType   = "INVALID_ORDER_TYPE"
	ErrCodePhoneFormatInvalid = "PHONE_FORMAT_INVALID"
	ErrCodeContentTooLong     = "CONTENT_TOO_LONG"
	ErrCodeContentRejected    = "CONTENT_REJECTED"
	ErrCodeAmountOutOfRange   = "AMOUNT_OUT_OF_RANGE"

	ErrCodeTokenMissing      = "TOKEN_MISSING"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeTokenUserMismatch = "TOKEN_USER_MISMATCH"
	ErrCodeTokenTypeMismatch = "TOKEN_TYPE_MISMATCH"

	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeOrderNotFound   = "ORDER_NOT_FOUND"
	ErrCodePaymentNotFound = "PAYMENT_NOT_FOUND"

	ErrCodeAmountMismatch   = "AMOUNT_MISMATCH"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeSignatureInvalid = "SIGNATURE_INVALID"

	ErrCodeGatewayError       = "PAYMENT_GATEWAY_ERROR"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
)

var errorMessages = map[string]string{
	ErrCodeInvalidOrderType:   "unknown order type",
	ErrCodePhoneFormatInvalid: "contact target must be a single valid phone number",
	ErrCodeContentTooLong:     "content must be between 1 and 500 characters",
	ErrCodeContentRejected:    "content was rejected by moderation",
	ErrCodeAmountOutOfRange:   "amount must be between 0.01 and 10000.00",
	ErrCodeTokenMissing:       "submission token not found",
	ErrCodeTokenExpired:       "submission token expired, request a new one",
	ErrCodeTokenUserMismatch:  "submission token belongs to another user",
	ErrCodeTokenTypeMismatch:  "submission token was issued for another order type",
	ErrCodeForbidden:          "not allowed to access this resource",
	ErrCodeUnauthorized:       "missing or invalid identity",
	ErrCodeUserNotFound:       "user not found",
	ErrCodeOrderNotFound:      "order not found",
	ErrCodePaymentNotFound:    "payment record not found",
	ErrCodeAmountMismatch:     "amount does not match the order price",
	ErrCodeInvalidState:       "operation not allowed in the current state",
	ErrCodeSignatureInvalid:   "notification signature verification failed",
	ErrCodeGatewayError:       "payment gateway unavailable, safe to retry",
	ErrCodeDatabaseError:      "storage error",
	ErrCodeInternalError:      "internal server error",
	ErrCodeInvalidRequestBody: "failed to parse request body",
	ErrCodeValidationFailed:   "request validation failed",
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return errorMessages[ErrCodeInternalError]
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidOrderType, ErrCodePhoneFormatInvalid, ErrCodeContentTooLong,
		ErrCodeContentRejected, ErrCodeAmountOutOfRange, ErrCodeInvalidRequestBody,
		ErrCodeTokenMissing, ErrCodeTokenExpired, ErrCodeTokenUserMismatch,
		ErrCodeTokenTypeMismatch, ErrCodeAmountMismatch, ErrCodeInvalidState:
		return 400
	case ErrCodeValidationFailed:
		return 422
	case ErrCodeUnauthorized, ErrCodeSignatureInvalid:
		return 401
	case ErrCodeForbidden:
		return 403
	case ErrCodeUserNotFound, ErrCodeOrderNotFound, ErrCodePaymentNotFound:
		return 404
	case ErrCodeGatewayError:
		return 502
	default:
		return 500
	}
}
