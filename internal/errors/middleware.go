package errors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
)

func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":    constants.ErrCodeInternalError,
			"message": constants.GetErrorMessage(constants.ErrCodeInternalError),
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	errorCode := err.Code

	status := constants.GetHTTPStatus(errorCode)
	if status == 500 && err.Code != constants.ErrCodeInternalError {
		errorCode = constants.ErrCodeInternalError
	}

	body := fiber.Map{
		"code":    errorCode,
		"message": constants.GetErrorMessage(errorCode),
	}
	if err.Detail != "" {
		body["detail"] = err.Detail
	}

	return c.Status(status).JSON(body)
}
