package repo

import (
	"context"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/shopspring/decimal"
)

func (r *GormRepo) InventoryStats(ctx context.Context) (*transport.InventoryStats, error) {
	db := r.DB.WithContext(ctx)
	stats := &transport.InventoryStats{}

	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status = ?", models.OrderStatusCompleted).
		Row().Scan(&stats.TotalSales); err != nil {
		return nil, err
	}

	if err := db.Table("order_items").
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusCompleted).
		Row().Scan(&stats.VialsSold); err != nil {
		return nil, err
	}

	var products []models.Product
	if err := db.Model(&models.Product{}).Select("id", "base_price", "stock_quantity").Find(&products).Error; err != nil {
		return nil, err
	}
	stats.InventoryValue = decimal.Zero
	for _, p := range products {
		stats.InventoryValue = stats.InventoryValue.Add(p.BasePrice.Mul(decimal.NewFromInt(int64(p.StockQuantity))))
		if p.StockQuantity > 0 && p.StockQuantity < LowStockThreshold {
			stats.LowStockCount++
		}
	}
	stats.TotalProducts = int64(len(products))

	return stats, nil
}
