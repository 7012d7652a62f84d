package httpserver

import (
	"context"
	"net/http"

	middleware "github.com/Skotchmaster/peptide_shop/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	Orders       *OrderHTTP
	Catalog      *CatalogHTTP
	Categories   *CategoryHTTP
	Testimonials *TestimonialHTTP
	Payments     *PaymentHTTP
	Auth         *AuthHTTP
	JWTSecret    []byte
	Ready        func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAuthMiddleware(d.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)

	products := e.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)

	e.GET("/categories", d.Categories.ListActive)
	e.GET("/testimonials", d.Testimonials.ListActive)
	e.GET("/payment-methods", d.Payments.ListActive)
	e.POST("/orders", d.Orders.CreateOrder)
	e.GET("/calculator", Calculate)

	admin := e.Group("/admin", authMW.RequireAdmin)

	admin.GET("/orders", d.Orders.ListOrders)
	admin.GET("/orders/:id", d.Orders.GetOrder)
	admin.POST("/orders/:id/confirm", d.Orders.ConfirmOrder)
	admin.POST("/orders/:id/complete", d.Orders.CompleteOrder)
	admin.POST("/orders/:id/cancel", d.Orders.CancelOrder)
	admin.GET("/orders/:id/deductions", d.Orders.ListDeductions)
	admin.POST("/orders/:id/deductions/retry", d.Orders.RetryDeductions)

	admin.POST("/products", d.Catalog.CreateProduct)
	admin.GET("/products/:id", d.Catalog.AdminGetProduct)
	admin.PATCH("/products/:id", d.Catalog.PatchProduct)
	admin.DELETE("/products/:id", d.Catalog.DeleteProduct)
	admin.PUT("/products/:id/stock", d.Catalog.SetProductStock)
	admin.POST("/products/:id/variations", d.Catalog.CreateVariation)
	admin.PATCH("/variations/:id", d.Catalog.PatchVariation)
	admin.DELETE("/variations/:id", d.Catalog.DeleteVariation)
	admin.PUT("/variations/:id/stock", d.Catalog.SetVariationStock)

	admin.GET("/inventory", d.Catalog.ListInventory)
	admin.GET("/inventory/stats", d.Catalog.InventoryStats)

	admin.GET("/categories", d.Categories.ListAll)
	admin.POST("/categories", d.Categories.Create)
	admin.PUT("/categories/order", d.Categories.Reorder)
	admin.PATCH("/categories/:id", d.Categories.Update)
	admin.DELETE("/categories/:id", d.Categories.Delete)

	admin.GET("/testimonials", d.Testimonials.ListAll)
	admin.POST("/testimonials", d.Testimonials.Create)
	admin.PATCH("/testimonials/:id", d.Testimonials.Update)
	admin.DELETE("/testimonials/:id", d.Testimonials.Delete)

	admin.GET("/payment-methods", d.Payments.ListAll)
	admin.POST("/payment-methods", d.Payments.Create)
	admin.PATCH("/payment-methods/:id", d.Payments.Update)
	admin.DELETE("/payment-methods/:id", d.Payments.Delete)
}
