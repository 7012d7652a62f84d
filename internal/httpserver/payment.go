package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/labstack/echo/v4"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) list(c echo.Context, activeOnly bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_method.list")

	items, err := h.Svc.ListPaymentMethods(ctx, activeOnly)
	if err != nil {
		return serviceError(l, "payment_method_list_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *PaymentHTTP) ListActive(c echo.Context) error { return h.list(c, true) }

func (h *PaymentHTTP) ListAll(c echo.Context) error { return h.list(c, false) }

func (h *PaymentHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_method.create")

	var req transport.PaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "payment_method_create_error", "invalid body", err)
	}

	created, err := h.Svc.CreatePaymentMethod(ctx, req)
	if err != nil {
		return serviceError(l, "payment_method_create_error", err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *PaymentHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_method.update")

	var req transport.PatchPaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "payment_method_update_error", "invalid body", err)
	}

	updated, err := h.Svc.UpdatePaymentMethod(ctx, c.Param("id"), req)
	if err != nil {
		return serviceError(l, "payment_method_update_error", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *PaymentHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_method.delete")

	if err := h.Svc.DeletePaymentMethod(ctx, c.Param("id")); err != nil {
		return serviceError(l, "payment_method_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
