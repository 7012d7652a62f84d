package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/cart"
	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
	Now    func() time.Time
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validateCustomer(req *transport.CreateOrderRequest) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"customer_name", &req.CustomerName},
		{"customer_email", &req.CustomerEmail},
		{"customer_phone", &req.CustomerPhone},
		{"shipping_address", &req.ShippingAddress},
		{"shipping_city", &req.ShippingCity},
		{"shipping_state", &req.ShippingState},
		{"shipping_zip_code", &req.ShippingZipCode},
		{"shipping_country", &req.ShippingCountry},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return fmt.Errorf("%w: %s required", ErrValidation, f.name)
		}
	}
	if !strings.Contains(req.CustomerEmail, "@") {
		return fmt.Errorf("%w: customer_email is not an email address", ErrValidation)
	}
	return nil
}

// CreateOrder prices the requested items from the catalog, checks them
// against stock and stores a pending order with all its items.
func (s *CheckoutService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("op", "checkout.create_order")

	if err := validateCustomer(&req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	shippingFee := decimal.Zero
	if req.ShippingFee != nil {
		if req.ShippingFee.IsNegative() {
			return nil, fmt.Errorf("%w: shipping_fee must be >= 0", ErrValidation)
		}
		shippingFee = *req.ShippingFee
	}

	order := &models.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingState:   req.ShippingState,
		ShippingZipCode: req.ShippingZipCode,
		ShippingCountry: req.ShippingCountry,
		ShippingFee:     shippingFee,
		Notes:           req.Notes,
		Status:          models.OrderStatusPending,
	}

	if req.PaymentMethodID != nil && *req.PaymentMethodID != "" {
		pm, err := s.Repo.GetPaymentMethod(ctx, *req.PaymentMethodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, *req.PaymentMethodID)
			}
			return nil, err
		}
		if !pm.Active {
			return nil, fmt.Errorf("%w: payment method %q is not active", ErrValidation, pm.ID)
		}
		order.PaymentMethodID = &pm.ID
		order.PaymentMethodName = &pm.Name
	}

	now := s.now()
	var c cart.Cart
	products := map[uuid.UUID]*models.Product{}
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: items[%d].product_id required", ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: items[%d].quantity must be > 0", ErrValidation, i)
		}

		p, ok := products[item.ProductID]
		if !ok {
			var err error
			p, err = s.Repo.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: product %s not found", ErrValidation, item.ProductID)
				}
				return nil, err
			}
			products[item.ProductID] = p
		}
		if !p.Available {
			return nil, fmt.Errorf("%w: product %s is not available", ErrValidation, p.Name)
		}

		var v *models.ProductVariation
		if item.VariationID != nil {
			for j := range p.Variations {
				if p.Variations[j].ID == *item.VariationID {
					v = &p.Variations[j]
					break
				}
			}
			if v == nil {
				return nil, fmt.Errorf("%w: variation %s does not belong to product %s", ErrValidation, *item.VariationID, p.ID)
			}
		}

		if _, err := c.Add(cart.LineFor(p, v, now), item.Quantity); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrValidation, p.Name, err)
		}
	}

	for _, line := range c.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			ProductPrice:  line.ProductPrice,
			VariationID:   line.VariationID,
			VariationName: line.VariationName,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			TotalPrice:    line.Total(),
		})
	}
	order.TotalAmount = c.Total().Add(shippingFee)

	created, err := s.Repo.CreateOrder(ctx, order)
	if err != nil {
		l.Error("create_order_error", "reason", "cannot store order", "error", err)
		return nil, err
	}

	total := created.TotalAmount
	publish(ctx, s.Events, topicOrderEvents, created.ID.String(), OrderEvent{
		Type:        "order_created",
		OrderID:     created.ID,
		Status:      created.Status,
		TotalAmount: &total,
		At:          now,
	})
	l.Info("create_order_success", "order_id", created.ID, "items", len(created.Items), "total", total.String())
	return created, nil
}
