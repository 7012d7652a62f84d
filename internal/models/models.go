package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"                json:"id"`
	CustomerName      string          `gorm:"not null"                            json:"customer_name"`
	CustomerEmail     string          `gorm:"not null"                            json:"customer_email"`
	CustomerPhone     string          `gorm:"not null"                            json:"customer_phone"`
	ShippingAddress   string          `gorm:"not null"                            json:"shipping_address"`
	ShippingCity      string          `gorm:"not null"                            json:"shipping_city"`
	ShippingState     string          `gorm:"not null"                            json:"shipping_state"`
	ShippingZipCode   string          `gorm:"not null"                            json:"shipping_zip_code"`
	ShippingCountry   string          `gorm:"not null"                            json:"shipping_country"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null"         json:"total_amount"`
	ShippingFee       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping_fee"`
	PaymentMethodID   *string         `                                           json:"payment_method_id,omitempty"`
	PaymentMethodName *string         `                                           json:"payment_method_name,omitempty"`
	Notes             *string         `                                           json:"notes,omitempty"`
	Status            OrderStatus     `gorm:"type:varchar(16);index;not null"     json:"status"`
	ConfirmedAt       *time.Time      `                                           json:"confirmed_at"`
	CompletedAt       *time.Time      `                                           json:"completed_at"`
	CreatedAt         time.Time       `gorm:"index"                               json:"created_at"`
	UpdatedAt         time.Time       `                                           json:"updated_at"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null"      json:"order_id"`
	Position      int             `gorm:"not null;default:0"            json:"-"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"            json:"product_id"`
	ProductName   string          `gorm:"not null"                      json:"product_name"`
	ProductPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"product_price"`
	VariationID   *uuid.UUID      `gorm:"type:uuid"                     json:"variation_id"`
	VariationName *string         `                                     json:"variation_name"`
	Quantity      int             `gorm:"not null;check:quantity>0"     json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"total_price"`
	CreatedAt     time.Time       `                                     json:"created_at"`

	Product *ProductSummary `gorm:"-" json:"product,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ProductSummary is the minimal product identity attached to order items.
type ProductSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL *string   `json:"image_url"`
}

type Product struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"                 json:"id"`
	Name              string              `gorm:"not null"                             json:"name"`
	Description       string              `gorm:"not null;default:''"                  json:"description"`
	Category          string              `gorm:"index;not null"                       json:"category"`
	BasePrice         decimal.Decimal     `gorm:"type:numeric(12,2);not null"          json:"base_price"`
	DiscountPrice     decimal.NullDecimal `gorm:"type:numeric(12,2)"                   json:"discount_price"`
	DiscountStartDate *time.Time          `                                            json:"discount_start_date"`
	DiscountEndDate   *time.Time          `                                            json:"discount_end_date"`
	DiscountActive    bool                `gorm:"not null;default:false"               json:"discount_active"`
	PurityPercentage  decimal.Decimal     `gorm:"type:numeric(5,2);not null;default:99" json:"purity_percentage"`
	MolecularWeight   *string             `                                            json:"molecular_weight"`
	CASNumber         *string             `                                            json:"cas_number"`
	Sequence          *string             `                                            json:"sequence"`
	StorageConditions string              `gorm:"not null;default:''"                  json:"storage_conditions"`
	StockQuantity     int                 `gorm:"not null;default:0;check:stock_quantity>=0" json:"stock_quantity"`
	Available         bool                `gorm:"not null"                json:"available"`
	Featured          bool                `gorm:"not null;default:false"               json:"featured"`
	ImageURL          *string             `                                            json:"image_url"`
	SafetySheetURL    *string             `                                            json:"safety_sheet_url"`
	CreatedAt         time.Time           `                                            json:"created_at"`
	UpdatedAt         time.Time           `                                            json:"updated_at"`
	Variations        []ProductVariation  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variations,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePrice is the discount price when the discount is active and now
// falls inside its window, otherwise the base price.
func (p *Product) EffectivePrice(now time.Time) decimal.Decimal {
	if !p.DiscountActive || !p.DiscountPrice.Valid {
		return p.BasePrice
	}
	if p.DiscountStartDate != nil && now.Before(*p.DiscountStartDate) {
		return p.BasePrice
	}
	if p.DiscountEndDate != nil && now.After(*p.DiscountEndDate) {
		return p.BasePrice
	}
	return p.DiscountPrice.Decimal
}

type ProductVariation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                        json:"id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null"                    json:"product_id"`
	Name          string          `gorm:"not null"                                    json:"name"`
	QuantityMg    decimal.Decimal `gorm:"type:numeric(10,2);not null"                 json:"quantity_mg"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"                 json:"price"`
	StockQuantity int             `gorm:"not null;default:0;check:stock_quantity>=0"  json:"stock_quantity"`
	CreatedAt     time.Time       `                                                   json:"created_at"`
}

func (v *ProductVariation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type Category struct {
	ID        string    `gorm:"primaryKey"               json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Icon      string    `gorm:"not null"                 json:"icon"`
	SortOrder int       `gorm:"not null;default:0"       json:"sort_order"`
	Active    bool      `gorm:"not null"                 json:"active"`
	CreatedAt time.Time `                                json:"created_at"`
	UpdatedAt time.Time `                                json:"updated_at"`
}

type Testimonial struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Title        string    `gorm:"not null"                 json:"title"`
	Description  *string   `                                json:"description"`
	ImageURL     string    `gorm:"not null"                 json:"image_url"`
	DisplayOrder int       `gorm:"not null;default:0"       json:"display_order"`
	Active       bool      `gorm:"not null"                 json:"active"`
	CreatedAt    time.Time `                                json:"created_at"`
	UpdatedAt    time.Time `                                json:"updated_at"`
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type PaymentMethod struct {
	ID            string    `gorm:"primaryKey"               json:"id"`
	Name          string    `gorm:"not null"                 json:"name"`
	AccountNumber string    `gorm:"not null;default:''"      json:"account_number"`
	AccountName   string    `gorm:"not null;default:''"      json:"account_name"`
	QRCodeURL     string    `gorm:"not null;default:''"      json:"qr_code_url"`
	Active        bool      `gorm:"not null"                 json:"active"`
	SortOrder     int       `gorm:"not null;default:0"       json:"sort_order"`
	CreatedAt     time.Time `                                json:"created_at"`
	UpdatedAt     time.Time `                                json:"updated_at"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `                                json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type DeductionStatus string

const (
	DeductionApplied DeductionStatus = "applied"
	DeductionFailed  DeductionStatus = "failed"
	DeductionSkipped DeductionStatus = "skipped"
)

// StockDeduction records the stock effect of one confirmed order item.
// Failed entries are retried until applied; skipped entries referenced a
// product or variation that no longer exists.
type StockDeduction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"            json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"        json:"order_id"`
	OrderItemID uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"  json:"order_item_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"              json:"product_id"`
	VariationID *uuid.UUID      `gorm:"type:uuid"                       json:"variation_id"`
	Quantity    int             `gorm:"not null"                        json:"quantity"`
	Status      DeductionStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	StockBefore *int            `                                       json:"stock_before"`
	StockAfter  *int            `                                       json:"stock_after"`
	Attempts    int             `gorm:"not null;default:0"              json:"attempts"`
	LastError   *string         `                                       json:"last_error"`
	CreatedAt   time.Time       `                                       json:"created_at"`
	UpdatedAt   time.Time       `                                       json:"updated_at"`
}

func (d *StockDeduction) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{
		&User{},
		&Category{},
		&PaymentMethod{},
		&Product{},
		&ProductVariation{},
		&Order{},
		&OrderItem{},
		&Testimonial{},
		&StockDeduction{},
	}
}
