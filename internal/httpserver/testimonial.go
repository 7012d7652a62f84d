package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TestimonialHTTP struct {
	Svc *service.TestimonialService
}

func (h *TestimonialHTTP) list(c echo.Context, activeOnly bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.list")

	items, err := h.Svc.ListTestimonials(ctx, activeOnly)
	if err != nil {
		return serviceError(l, "testimonial_list_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *TestimonialHTTP) ListActive(c echo.Context) error { return h.list(c, true) }

func (h *TestimonialHTTP) ListAll(c echo.Context) error { return h.list(c, false) }

func (h *TestimonialHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.create")

	var req transport.TestimonialRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "testimonial_create_error", "invalid body", err)
	}

	created, err := h.Svc.CreateTestimonial(ctx, req)
	if err != nil {
		return serviceError(l, "testimonial_create_error", err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *TestimonialHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "testimonial_update_error", "id not a uuid", err)
	}
	var req transport.PatchTestimonialRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "testimonial_update_error", "invalid body", err)
	}

	updated, err := h.Svc.UpdateTestimonial(ctx, id, req)
	if err != nil {
		return serviceError(l, "testimonial_update_error", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *TestimonialHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "testimonial_delete_error", "id not a uuid", err)
	}
	if err := h.Svc.DeleteTestimonial(ctx, id); err != nil {
		return serviceError(l, "testimonial_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
