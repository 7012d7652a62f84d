package transport

import (
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderItem struct {
	ProductID   uuid.UUID  `json:"product_id"`
	VariationID *uuid.UUID `json:"variation_id"`
	Quantity    int        `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	ShippingAddress string            `json:"shipping_address"`
	ShippingCity    string            `json:"shipping_city"`
	ShippingState   string            `json:"shipping_state"`
	ShippingZipCode string            `json:"shipping_zip_code"`
	ShippingCountry string            `json:"shipping_country"`
	ShippingFee     *decimal.Decimal  `json:"shipping_fee"`
	PaymentMethodID *string           `json:"payment_method_id"`
	Notes           *string           `json:"notes"`
	Items           []CreateOrderItem `json:"items"`
}

type CreateProductRequest struct {
	Name              string                   `json:"name"`
	Description       string                   `json:"description"`
	Category          string                   `json:"category"`
	BasePrice         decimal.Decimal          `json:"base_price"`
	DiscountPrice     decimal.NullDecimal      `json:"discount_price"`
	DiscountStartDate *time.Time               `json:"discount_start_date"`
	DiscountEndDate   *time.Time               `json:"discount_end_date"`
	DiscountActive    bool                     `json:"discount_active"`
	PurityPercentage  *decimal.Decimal         `json:"purity_percentage"`
	MolecularWeight   *string                  `json:"molecular_weight"`
	CASNumber         *string                  `json:"cas_number"`
	Sequence          *string                  `json:"sequence"`
	StorageConditions string                   `json:"storage_conditions"`
	StockQuantity     int                      `json:"stock_quantity"`
	Available         *bool                    `json:"available"`
	Featured          bool                     `json:"featured"`
	ImageURL          *string                  `json:"image_url"`
	SafetySheetURL    *string                  `json:"safety_sheet_url"`
	Variations        []CreateVariationRequest `json:"variations"`
}

type PatchProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Category          *string          `json:"category"`
	BasePrice         *decimal.Decimal `json:"base_price"`
	DiscountPrice     *decimal.Decimal `json:"discount_price"`
	ClearDiscount     bool             `json:"clear_discount"`
	DiscountStartDate *time.Time       `json:"discount_start_date"`
	DiscountEndDate   *time.Time       `json:"discount_end_date"`
	DiscountActive    *bool            `json:"discount_active"`
	PurityPercentage  *decimal.Decimal `json:"purity_percentage"`
	MolecularWeight   *string          `json:"molecular_weight"`
	CASNumber         *string          `json:"cas_number"`
	Sequence          *string          `json:"sequence"`
	StorageConditions *string          `json:"storage_conditions"`
	StockQuantity     *int             `json:"stock_quantity"`
	Available         *bool            `json:"available"`
	Featured          *bool            `json:"featured"`
	ImageURL          *string          `json:"image_url"`
	SafetySheetURL    *string          `json:"safety_sheet_url"`
}

type CreateVariationRequest struct {
	Name          string          `json:"name"`
	QuantityMg    decimal.Decimal `json:"quantity_mg"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

type PatchVariationRequest struct {
	Name          *string          `json:"name"`
	QuantityMg    *decimal.Decimal `json:"quantity_mg"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
}

type SetStockRequest struct {
	StockQuantity *int `json:"stock_quantity"`
}

type ProductFilter struct {
	Category string
	Search   string
	// Stock is one of in_stock, out_of_stock, low_stock or empty.
	Stock         string
	AvailableOnly bool
}

type CategoryRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	SortOrder *int   `json:"sort_order"`
	Active    *bool  `json:"active"`
}

type PatchCategoryRequest struct {
	Name      *string `json:"name"`
	Icon      *string `json:"icon"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"active"`
}

type ReorderCategoriesRequest struct {
	IDs []string `json:"ids"`
}

type TestimonialRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	ImageURL     string  `json:"image_url"`
	DisplayOrder *int    `json:"display_order"`
	Active       *bool   `json:"active"`
}

type PatchTestimonialRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url"`
	DisplayOrder *int    `json:"display_order"`
	Active       *bool   `json:"active"`
}

type PaymentMethodRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	QRCodeURL     string `json:"qr_code_url"`
	Active        *bool  `json:"active"`
	SortOrder     *int   `json:"sort_order"`
}

type PatchPaymentMethodRequest struct {
	Name          *string `json:"name"`
	AccountNumber *string `json:"account_number"`
	AccountName   *string `json:"account_name"`
	QRCodeURL     *string `json:"qr_code_url"`
	Active        *bool   `json:"active"`
	SortOrder     *int    `json:"sort_order"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type InventoryStats struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	VialsSold      int64           `json:"vials_sold"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
}

type ProductPage struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}
