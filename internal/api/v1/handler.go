package v1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api/v1/middleware"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api/validator"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/constants"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/metrics"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/wechatpay"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	logger     *zap.Logger
	orders     service.OrderService
	payments   service.PaymentService
	tokens     service.TokenService
	users      service.UserService
	XValidator validator.IXValidator
	metrics    *metrics.Metrics
}

func NewHandler(logger *zap.Logger, orders service.OrderService, payments service.PaymentService,
	tokens service.TokenService, users service.UserService, XValidator validator.IXValidator,
	metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:     logger,
		orders:     orders,
		payments:   payments,
		tokens:     tokens,
		users:      users,
		XValidator: XValidator,
		metrics:    metrics,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) IssueToken(c *fiber.Ctx) error {
	var request IssueTokenRequest

	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	resp, err := h.tokens.Issue(c.UserContext(), middleware.UserID(c), model.OrderType(request.OrderType))
	if err != nil {
		return err
	}

	h.metrics.RecordTokenIssued()
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) SubmitOrder(c *fiber.Ctx) error {
	var request SubmitOrderRequest

	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.SubmitOrderCommand{
		UserID:          middleware.UserID(c),
		Type:            model.OrderType(request.OrderType),
		ContactTarget:   request.ContactTarget,
		ContactMethod:   request.ContactMethod,
		Content:         request.Content,
		ScheduledTime:   request.ScheduledTime,
		Remark:          request.Remark,
		IdempotencyKey:  request.IdempotencyKey,
		SubmissionToken: request.SubmissionToken,
	}

	resp, err := h.orders.Submit(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	if resp.IsDuplicate {
		h.metrics.RecordDuplicateSubmit()
		return c.JSON(resp)
	}

	h.metrics.RecordOrderCreated(request.OrderType)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) GetOrder(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c)
	}

	row, err := h.orders.GetOrder(c.UserContext(), orderID, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(NewOrderResponse(row))
}

func (h *Handler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c)
	}

	var request UpdateOrderStatusRequest

	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.UpdateOrderStatusCommand{
		OrderID:     orderID,
		RequesterID: middleware.UserID(c),
		Status:      model.OrderStatus(request.Status),
	}

	if err := h.orders.UpdateStatus(c.UserContext(), cmd); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"code": "success"})
}

func (h *Handler) CreateOrderPayment(c *fiber.Ctx) error {
	var request CreateOrderPaymentRequest

	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	amount, err := decimal.NewFromString(request.Amount)
	if err != nil {
		return badRequest(c)
	}

	cmd := service.CreateOrderPaymentCommand{
		UserID:  middleware.UserID(c),
		OrderID: request.OrderID,
		Amount:  amount,
	}

	resp, err := h.payments.CreateOrderPayment(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.metrics.RecordPaymentIntent("order")
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) CreateRecharge(c *fiber.Ctx) error {
	var request CreateRechargeRequest

	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	amount, err := decimal.NewFromString(request.Amount)
	if err != nil {
		return badRequest(c)
	}

	cmd := service.CreateRechargeCommand{
		UserID: middleware.UserID(c),
		Amount: amount,
	}

	resp, err := h.payments.CreateRecharge(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.metrics.RecordPaymentIntent("recharge")
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) GetPaymentStatus(c *fiber.Ctx) error {
	outTradeNo := c.Params("outTradeNo")

	resp, err := h.payments.QueryStatus(c.UserContext(), outTradeNo, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func (h *Handler) ClosePayment(c *fiber.Ctx) error {
	outTradeNo := c.Params("outTradeNo")

	if err := h.payments.Close(c.UserContext(), outTradeNo, middleware.UserID(c)); err != nil {
		return err
	}

	h.metrics.RecordPaymentClosed()
	return c.JSON(fiber.Map{"code": "success"})
}

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	resp, err := h.users.GetBalance(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// WechatPayNotify is the webhook endpoint registered with the gateway. The
// response body follows the gateway's acknowledgement contract.
func (h *Handler) WechatPayNotify(c *fiber.Ctx) error {
	headers := map[string]string{
		wechatpay.HeaderTimestamp: c.Get(wechatpay.HeaderTimestamp),
		wechatpay.HeaderNonce:     c.Get(wechatpay.HeaderNonce),
		wechatpay.HeaderSignature: c.Get(wechatpay.HeaderSignature),
		wechatpay.HeaderSerial:    c.Get(wechatpay.HeaderSerial),
	}

	if err := h.payments.HandleNotification(c.UserContext(), headers, c.Body()); err != nil {
		h.metrics.RecordWebhookResult("rejected")
		return err
	}

	h.metrics.RecordWebhookResult("accepted")
	return c.JSON(fiber.Map{"code": "SUCCESS", "message": "成功"})
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    constants.ErrCodeInvalidRequestBody,
		"message": constants.GetErrorMessage(constants.ErrCodeInvalidRequestBody),
	})
}
