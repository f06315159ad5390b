package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/authclient"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
)

type Deps struct {
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	WebhookHandler  *WebhookHTTP
	JWTSecret       []byte
	AuthClient      *authclient.Client
	Ready           func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.POST("/webhooks/payment", d.WebhookHandler.PaymentNotification)

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)
	auth := authMW.RequireAuth

	e.POST("/checkout", d.CheckoutHandler.Checkout, auth)

	e.GET("/orders", d.OrderHandler.ListOrders, auth)
	e.GET("/orders/:id", d.OrderHandler.GetOrder, auth)
	e.POST("/orders/:id/cancel", d.OrderHandler.CancelOrder, auth)
	e.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus, auth)

	e.POST("/relist/:id", d.OrderHandler.Relist, auth)
	e.GET("/seller/orders", d.OrderHandler.ListSellerOrders, auth)
}
