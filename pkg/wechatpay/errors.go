package wechatpay

import "errors"

const (
	StatusOK        = 200
	StatusNoContent = 204
	StatusNotFound  = 404
)

const (
	ErrCodeSignatureInvalid = "SIGNATURE_INVALID"
	ErrCodeDecryptFailed    = "DECRYPT_FAILED"
	ErrCodeOrderNotExists   = "ORDER_NOT_EXISTS"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeServerError      = "SERVER_ERROR"
)

var (
	ErrSignatureInvalid = errors.New(ErrCodeSignatureInvalid)
	ErrDecryptFailed    = errors.New(ErrCodeDecryptFailed)
	ErrOrderNotExists   = errors.New(ErrCodeOrderNotExists)
	ErrTimeout          = errors.New(ErrCodeTimeout)
	ErrServerError      = errors.New(ErrCodeServerError)
)

var statusErrorMap = map[int]error{
	StatusNotFound: ErrOrderNotExists,
}

func MapStatusToError(statusCode int) error {
	if err, exists := statusErrorMap[statusCode]; exists {
		return err
	}

	return ErrServerError
}
