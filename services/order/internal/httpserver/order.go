package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Code: "invalid_request", Message: message})
}

func parseOrderID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// ListOrders returns the buyer's orders, or only the listed ones when ?ids= is set.
func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	buyerID, err := middleware.UserID(c)
	if err != nil {
		return httpError(l, "list_orders_error", err)
	}

	if raw := c.QueryParam("ids"); raw != "" {
		ids, err := transport.ParseIDs(raw)
		if err != nil {
			l.Warn("list_orders_error", "status", 400, "reason", "ids are not uuids", "error", err)
			return badRequest("ids must be comma separated uuids")
		}
		orders, err := h.Svc.ListByIDs(ctx, buyerID, ids)
		if err != nil {
			return httpError(l, "list_orders_error", err)
		}
		return c.JSON(http.StatusOK, transport.OrdersResponse{Data: orders})
	}

	page := transport.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := transport.Page(page, transport.ParseIntDefault(c.QueryParam("size"), transport.DefaultPageSize))

	orders, err := h.Svc.ListBuyerOrders(ctx, buyerID, limit, offset)
	if err != nil {
		return httpError(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.OrdersResponse{
		Data: orders,
		Meta: &transport.PageMeta{Page: max(page, 1), Size: limit},
	})
}

func (h *OrderHTTP) ListSellerOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_seller_orders")

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return httpError(l, "list_seller_orders_error", err)
	}

	page := transport.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := transport.Page(page, transport.ParseIntDefault(c.QueryParam("size"), transport.DefaultPageSize))

	orders, err := h.Svc.ListSellerOpenOrders(ctx, sellerID, limit, offset)
	if err != nil {
		return httpError(l, "list_seller_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.OrdersResponse{
		Data: orders,
		Meta: &transport.PageMeta{Page: max(page, 1), Size: limit},
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	actorID, err := middleware.UserID(c)
	if err != nil {
		return httpError(l, "get_order_error", err)
	}
	id, err := parseOrderID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not uuid", "error", err)
		return badRequest("id is not uuid")
	}

	order, err := h.Svc.GetOrder(ctx, actorID, id)
	if err != nil {
		return httpError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	actorID, err := middleware.UserID(c)
	if err != nil {
		return httpError(l, "cancel_order_error", err)
	}
	id, err := parseOrderID(c)
	if err != nil {
		l.Warn("cancel_order_error", "status", 400, "reason", "id is not uuid", "error", err)
		return badRequest("id is not uuid")
	}

	order, err := h.Svc.Cancel(ctx, actorID, id)
	if err != nil {
		return httpError(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return httpError(l, "update_status_error", err)
	}
	id, err := parseOrderID(c)
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "id is not uuid", "error", err)
		return badRequest("id is not uuid")
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return badRequest("invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, sellerID, id, req.Status)
	if err != nil {
		return httpError(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Relist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.relist")

	sellerID, err := middleware.UserID(c)
	if err != nil {
		return httpError(l, "relist_error", err)
	}
	id, err := parseOrderID(c)
	if err != nil {
		l.Warn("relist_error", "status", 400, "reason", "id is not uuid", "error", err)
		return badRequest("id is not uuid")
	}

	order, err := h.Svc.Relist(ctx, sellerID, id)
	if err != nil {
		return httpError(l, "relist_error", err)
	}

	l.Info("relist_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}
