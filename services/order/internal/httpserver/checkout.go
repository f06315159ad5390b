package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/services/order/internal/idempotency"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
)

type CheckoutHTTP struct {
	Svc         *service.CheckoutService
	Idempotency *idempotency.Store
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	buyerID, err := middleware.UserID(c)
	if err != nil {
		return httpError(l, "checkout_error", err)
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Code: "invalid_request", Message: "invalid body"})
	}

	key := idempotency.Key(c.Request())
	if h.Idempotency == nil {
		key = ""
	}
	var fingerprint string
	if key != "" {
		var err error
		if fingerprint, err = idempotency.Fingerprint(req); err != nil {
			l.Warn("checkout_idempotency_unavailable", "error", err)
			key = ""
		}
	}
	if key != "" {
		rec, err := h.Idempotency.Begin(ctx, buyerID, key, fingerprint)
		switch {
		case errors.Is(err, idempotency.ErrInFlight), errors.Is(err, idempotency.ErrKeyReused):
			return httpError(l, "checkout_error", err)
		case err != nil:
			l.Warn("checkout_idempotency_unavailable", "error", err)
			key = ""
		case rec != nil:
			l.Info("checkout_replayed", "idempotency_key", key)
			return c.JSONBlob(rec.StatusCode, rec.Body)
		}
	}

	res, err := h.Svc.Checkout(ctx, buyerID, req.ToDomain())
	if err != nil {
		if key != "" {
			if rErr := h.Idempotency.Release(ctx, buyerID, key); rErr != nil {
				l.Warn("checkout_idempotency_release_error", "error", rErr)
			}
		}
		return httpError(l, "checkout_error", err)
	}

	resp := transport.NewCheckoutResponse(res)
	if key != "" {
		body, mErr := json.Marshal(resp)
		if mErr == nil {
			mErr = h.Idempotency.Save(ctx, buyerID, key, idempotency.Record{Fingerprint: fingerprint, StatusCode: http.StatusCreated, Body: body})
		}
		if mErr != nil {
			l.Warn("checkout_idempotency_save_error", "error", mErr)
		}
	}

	l.Info("checkout_success", "checkout_id", res.CheckoutID, "orders", len(res.OrderIDs), "flow", res.Flow)
	return c.JSON(http.StatusCreated, resp)
}
