package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/labstack/echo/v4"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) list(c echo.Context, activeOnly bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	items, err := h.Svc.ListCategories(ctx, activeOnly)
	if err != nil {
		return serviceError(l, "category_list_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *CategoryHTTP) ListActive(c echo.Context) error { return h.list(c, true) }

func (h *CategoryHTTP) ListAll(c echo.Context) error { return h.list(c, false) }

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_create_error", "invalid body", err)
	}

	created, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return serviceError(l, "category_create_error", err)
	}

	l.Info("category_create_success", "category_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	var req transport.PatchCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_update_error", "invalid body", err)
	}

	updated, err := h.Svc.UpdateCategory(ctx, c.Param("id"), req)
	if err != nil {
		return serviceError(l, "category_update_error", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	if err := h.Svc.DeleteCategory(ctx, c.Param("id")); err != nil {
		return serviceError(l, "category_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHTTP) Reorder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.reorder")

	var req transport.ReorderCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_reorder_error", "invalid body", err)
	}
	if err := h.Svc.ReorderCategories(ctx, req.IDs); err != nil {
		return serviceError(l, "category_reorder_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
