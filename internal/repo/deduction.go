package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAlreadyApplied = errors.New("deduction already applied")

// ApplyDeduction adjusts the stock of the item's variation, or its product
// when no variation is set, and records d as applied in one transaction.
// It returns ErrAlreadyApplied when the item was deducted before.
func (r *GormRepo) ApplyDeduction(ctx context.Context, d *models.StockDeduction, fn func(current int) int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadPrevious(tx, d); err != nil {
			return err
		}

		var model any = &models.Product{}
		target := d.ProductID
		if d.VariationID != nil {
			model = &models.ProductVariation{}
			target = *d.VariationID
		}

		before, after, err := adjustStock(tx, model, target, fn)
		if err != nil {
			return err
		}

		d.Status = models.DeductionApplied
		d.StockBefore = &before
		d.StockAfter = &after
		d.LastError = nil
		d.Attempts++
		return tx.Save(d).Error
	})
}

// RecordDeduction stores d with its current status unless the item is
// already recorded as applied.
func (r *GormRepo) RecordDeduction(ctx context.Context, d *models.StockDeduction) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadPrevious(tx, d); err != nil {
			return err
		}
		d.Attempts++
		return tx.Save(d).Error
	})
}

func loadPrevious(tx *gorm.DB, d *models.StockDeduction) error {
	var prev models.StockDeduction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_item_id = ?", d.OrderItemID).
		Take(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if prev.Status == models.DeductionApplied {
		*d = prev
		return ErrAlreadyApplied
	}
	d.ID = prev.ID
	d.Attempts = prev.Attempts
	d.CreatedAt = prev.CreatedAt
	return nil
}

// adjustStock reads stock_quantity under a row lock, applies fn and writes
// the result back.
func adjustStock(tx *gorm.DB, model any, id uuid.UUID, fn func(int) int) (before, after int, err error) {
	var row struct{ StockQuantity int }
	if err := tx.Model(model).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("stock_quantity").
		Where("id = ?", id).
		Take(&row).Error; err != nil {
		return 0, 0, err
	}

	before = row.StockQuantity
	after = fn(before)
	if after != before {
		if err := tx.Model(model).Where("id = ?", id).Update("stock_quantity", after).Error; err != nil {
			return 0, 0, err
		}
	}
	return before, after, nil
}

func (r *GormRepo) ListDeductions(ctx context.Context, orderID uuid.UUID) ([]models.StockDeduction, error) {
	var items []models.StockDeduction
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListFailedDeductions(ctx context.Context, orderID *uuid.UUID, limit int) ([]models.StockDeduction, error) {
	q := r.DB.WithContext(ctx).Where("status = ?", models.DeductionFailed)
	if orderID != nil {
		q = q.Where("order_id = ?", *orderID)
	}

	var items []models.StockDeduction
	if err := q.Order("updated_at ASC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
