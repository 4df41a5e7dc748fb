package api

import (
	"github.com/gofiber/fiber/v2"
	v1 "github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api/v1"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api/v1/middleware"
)

func SetupRoutes(app *fiber.App, handler *v1.Handler) {
	app.Get("/ping", handler.Pong)

	group := app.Group("/api/v1")

	// The gateway signs its own deliveries, so the webhook skips user auth.
	group.Post("/payments/notify/wechat", handler.WechatPayNotify)

	authed := group.Group("", middleware.RequireUser())
	authed.Post("/orders/token", handler.IssueToken)
	authed.Post("/orders", handler.SubmitOrder)
	authed.Get("/orders/:id", handler.GetOrder)
	authed.Patch("/orders/:id/status", handler.UpdateOrderStatus)
	authed.Post("/payments/order", handler.CreateOrderPayment)
	authed.Post("/payments/recharge", handler.CreateRecharge)
	authed.Get("/payments/:outTradeNo", handler.GetPaymentStatus)
	authed.Post("/payments/:outTradeNo/close", handler.ClosePayment)
	authed.Get("/users/balance", handler.GetBalance)
}
