package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/idempotency"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
)

type errorKind struct {
	target  error
	status  int
	code    string
	message string
}

var errorKinds = []errorKind{
	{domain.ErrItemUnavailable, http.StatusBadRequest, "item_unavailable", ""},
	{domain.ErrQuantityInvalid, http.StatusBadRequest, "quantity_invalid", ""},
	{domain.ErrShippingAddressRequired, http.StatusBadRequest, "shipping_address_required", "a complete shipping address is required for items that ship"},
	{domain.ErrLocalDeliveryDetailsRequired, http.StatusBadRequest, "local_delivery_details_required", "name, phone and a complete address are required for local delivery"},
	{domain.ErrEmptyCart, http.StatusBadRequest, "empty_cart", ""},
	{domain.ErrInvalidRequest, http.StatusBadRequest, "invalid_request", ""},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "unauthorized"},
	{middleware.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden", "not allowed to act on this order"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found", "order not found"},
	{domain.ErrInventoryChanged, http.StatusConflict, "inventory_changed", ""},
	{domain.ErrAlreadyRelisted, http.StatusConflict, "already_relisted", "order was already relisted"},
	{idempotency.ErrInFlight, http.StatusConflict, "request_in_progress", "a request with this idempotency key is in progress"},
	{idempotency.ErrKeyReused, http.StatusUnprocessableEntity, "idempotency_key_reused", "this idempotency key was used with a different request"},
	{domain.ErrConflict, http.StatusConflict, "conflict", ""},
	{domain.ErrPaymentCollaborator, http.StatusInternalServerError, "payment_failed", "payment could not be started, please try again"},
}

// httpError maps a service error to the response and logs it the way the
// other handlers do: warn for client errors, error for the rest.
func httpError(l *slog.Logger, event string, err error) error {
	resp := transport.ErrorResponse{Code: "internal", Message: "internal error"}
	status := http.StatusInternalServerError

	for _, k := range errorKinds {
		if !errors.Is(err, k.target) {
			continue
		}
		status, resp.Code = k.status, k.code
		resp.Message = k.message
		if resp.Message == "" {
			resp.Message = err.Error()
		}
		break
	}

	var ie *domain.ItemError
	if errors.As(err, &ie) {
		id := ie.ItemID
		resp.ItemID = &id
	}
	var pe *domain.PaymentError
	if errors.As(err, &pe) {
		id := pe.CheckoutID
		resp.CheckoutID = &id
		resp.OrderIDs = pe.OrderIDs
	}

	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", resp.Code, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", resp.Code, "error", err)
	}
	return echo.NewHTTPError(status, resp)
}
