package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	if err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", orderedItems).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	orders := []models.Order{order}
	if err := r.attachProducts(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *GormRepo) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Preload("Items", orderedItems)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	if err := r.attachProducts(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) attachProducts(ctx context.Context, orders []models.Order) error {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var summaries []models.ProductSummary
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("id", "name", "image_url").
		Where("id IN ?", ids).
		Find(&summaries).Error; err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*models.ProductSummary, len(summaries))
	for i := range summaries {
		byID[summaries[i].ID] = &summaries[i]
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].Product = byID[orders[i].Items[j].ProductID]
		}
	}
	return nil
}

func (r *GormRepo) GetOrderStatus(ctx context.Context, id uuid.UUID) (models.OrderStatus, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Select("id", "status").Where("id = ?", id).First(&order).Error; err != nil {
		return "", err
	}
	return order.Status, nil
}

// TransitionStatus moves the order to `to` only while its status is one of
// `from`. The bool reports whether a row was changed.
func (r *GormRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []models.OrderStatus, to models.OrderStatus, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case models.OrderStatusConfirmed:
		updates["confirmed_at"] = at
	case models.OrderStatusCompleted:
		updates["completed_at"] = at
	}

	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
