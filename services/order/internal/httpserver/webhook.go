package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
	"github.com/Skotchmaster/marketplace/services/order/internal/payment"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
)

type WebhookHTTP struct {
	Svc    *service.OrderService
	Secret []byte
}

// PaymentNotification accepts the gateway's signed success notification and
// marks the bound orders paid.
func (h *WebhookHTTP) PaymentNotification(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.payment_webhook")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		l.Warn("payment_webhook_error", "status", 400, "reason", "cannot read body", "error", err)
		return badRequest("cannot read body")
	}
	if err := payment.Verify(h.Secret, body, c.Request().Header.Get(payment.SignatureHeader)); err != nil {
		l.Warn("payment_webhook_error", "status", 401, "reason", "bad signature", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, transport.ErrorResponse{Code: "bad_signature", Message: "invalid signature"})
	}

	var n payment.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		l.Warn("payment_webhook_error", "status", 400, "reason", "invalid body", "error", err)
		return badRequest("invalid body")
	}
	if n.Type != payment.NotificationSucceeded {
		l.Info("payment_webhook_ignored", "type", n.Type)
		return c.JSON(http.StatusOK, map[string]any{"status": "ignored"})
	}

	claimed, err := models.SplitIDs(n.Metadata[payment.MetaOrderIDs])
	if err != nil {
		l.Warn("payment_webhook_bad_metadata", "error", err)
		claimed = nil
	}

	paid, err := h.Svc.ConfirmPayment(ctx, n.Reference, claimed)
	if err != nil {
		return httpError(l, "payment_webhook_error", err)
	}

	l.Info("payment_webhook_success", "reference", n.Reference, "orders_paid", len(paid))
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "order_ids": paid})
}
