package httpserver

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Checkout *service.CheckoutService
}

func resultStatus(r service.Result) int {
	if r.Success {
		return http.StatusOK
	}
	switch r.Kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidTransition:
		return http.StatusConflict
	case service.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "order_create_error", "invalid body", err)
	}

	order, err := h.Checkout.CreateOrder(ctx, req)
	if err != nil {
		return serviceError(l, "order_create_error", err)
	}

	l.Info("order_create_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Svc.ListOrders(ctx, models.OrderStatus(c.QueryParam("status")))
	if err != nil {
		return serviceError(l, "order_list_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": orders})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "order_get_error", "id not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return serviceError(l, "order_get_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) lifecycle(c echo.Context, op string, fn func(context.Context, uuid.UUID) service.Result) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order."+op)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("order_"+op+"_error", "status", http.StatusBadRequest, "reason", "id not a uuid", "error", err)
		return c.JSON(http.StatusBadRequest, service.Result{Kind: service.KindValidation, Error: "id not a uuid"})
	}

	res := fn(ctx, id)
	status := resultStatus(res)
	if res.Success {
		l.Info("order_"+op+"_success", "order_id", id)
	} else {
		l.Warn("order_"+op+"_error", "status", status, "reason", res.Error, "order_id", id)
	}
	return c.JSON(status, res)
}

func (h *OrderHTTP) ConfirmOrder(c echo.Context) error {
	return h.lifecycle(c, "confirm", h.Svc.ConfirmOrder)
}

func (h *OrderHTTP) CompleteOrder(c echo.Context) error {
	return h.lifecycle(c, "complete", h.Svc.CompleteOrder)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	return h.lifecycle(c, "cancel", h.Svc.CancelOrder)
}

func (h *OrderHTTP) ListDeductions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.deductions")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "order_deductions_error", "id not a uuid", err)
	}

	items, err := h.Svc.ListDeductions(ctx, id)
	if err != nil {
		return serviceError(l, "order_deductions_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *OrderHTTP) RetryDeductions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.retry_deductions")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "order_retry_deductions_error", "id not a uuid", err)
	}
	if _, err := h.Svc.GetOrder(ctx, id); err != nil {
		return serviceError(l, "order_retry_deductions_error", err)
	}

	n, err := h.Svc.RetryFailedDeductions(ctx, &id, 1000)
	if err != nil {
		return serviceError(l, "order_retry_deductions_error", err)
	}

	l.Info("order_retry_deductions_success", "order_id", id, "applied", n)
	return c.JSON(http.StatusOK, map[string]any{"applied": n})
}
