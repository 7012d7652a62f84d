package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/internal/util"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	result, err := h.Svc.ListProducts(ctx, c.QueryParam("category"), page, offset, limit)
	if err != nil {
		return serviceError(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": result.Items,
		"meta": util.Meta(page, offset, limit, result.Total),
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_product_error", "id not a uuid", err)
	}

	product, err := h.Svc.GetPublicProduct(ctx, id)
	if err != nil {
		return serviceError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return serviceError(l, "search_products_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) AdminGetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.admin_get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "admin_get_product_error", "id not a uuid", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return serviceError(l, "admin_get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return serviceError(l, "product_create_error", err)
	}

	l.Info("product_create_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "product_patch_error", "id not a uuid", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch_error", "invalid body", err)
	}

	prod, err := h.Svc.PatchProduct(ctx, req, id)
	if err != nil {
		return serviceError(l, "product_patch_error", err)
	}

	l.Info("product_patch_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "product_delete_error", "id not a uuid", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return serviceError(l, "product_delete_error", err)
	}

	l.Info("product_delete_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) SetProductStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.set_stock")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "product_stock_error", "id not a uuid", err)
	}
	var req transport.SetStockRequest
	if err := c.Bind(&req); err != nil || req.StockQuantity == nil {
		return badRequest(l, "product_stock_error", "stock_quantity required", err)
	}

	prod, err := h.Svc.SetProductStock(ctx, id, *req.StockQuantity)
	if err != nil {
		return serviceError(l, "product_stock_error", err)
	}

	l.Info("product_stock_success", "product_id", id, "stock", prod.StockQuantity)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) CreateVariation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "variation.create")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "variation_create_error", "id not a uuid", err)
	}
	var req transport.CreateVariationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "variation_create_error", "invalid body", err)
	}

	v, err := h.Svc.CreateVariation(ctx, productID, req)
	if err != nil {
		return serviceError(l, "variation_create_error", err)
	}

	l.Info("variation_create_success", "variation_id", v.ID)
	return c.JSON(http.StatusCreated, v)
}

func (h *CatalogHTTP) PatchVariation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "variation.patch")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "variation_patch_error", "id not a uuid", err)
	}
	var req transport.PatchVariationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "variation_patch_error", "invalid body", err)
	}

	v, err := h.Svc.PatchVariation(ctx, req, id)
	if err != nil {
		return serviceError(l, "variation_patch_error", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CatalogHTTP) DeleteVariation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "variation.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "variation_delete_error", "id not a uuid", err)
	}
	if err := h.Svc.DeleteVariation(ctx, id); err != nil {
		return serviceError(l, "variation_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) SetVariationStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "variation.set_stock")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "variation_stock_error", "id not a uuid", err)
	}
	var req transport.SetStockRequest
	if err := c.Bind(&req); err != nil || req.StockQuantity == nil {
		return badRequest(l, "variation_stock_error", "stock_quantity required", err)
	}

	v, err := h.Svc.SetVariationStock(ctx, id, *req.StockQuantity)
	if err != nil {
		return serviceError(l, "variation_stock_error", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CatalogHTTP) ListInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.MaxPageSize)
	offset, limit := util.Calculate(page, size)

	f := transport.ProductFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Stock:    c.QueryParam("stock"),
	}
	total, items, err := h.Svc.ListInventory(ctx, f, offset, limit)
	if err != nil {
		return serviceError(l, "inventory_list_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) InventoryStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.stats")

	stats, err := h.Svc.InventoryStats(ctx)
	if err != nil {
		return serviceError(l, "inventory_stats_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}
