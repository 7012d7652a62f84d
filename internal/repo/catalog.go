package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const LowStockThreshold = 10

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("quantity_mg ASC") }).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetVariation(ctx context.Context, id uuid.UUID) (*models.ProductVariation, error) {
	var v models.ProductVariation
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) filterProducts(ctx context.Context, f transport.ProductFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.AvailableOnly {
		q = q.Where("available = ?", true)
	}
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(cas_number, '')) LIKE ?", like, like)
	}
	switch f.Stock {
	case "in_stock":
		q = q.Where("stock_quantity > 0")
	case "out_of_stock":
		q = q.Where("stock_quantity = 0")
	case "low_stock":
		q = q.Where("stock_quantity > 0 AND stock_quantity < ?", LowStockThreshold)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f transport.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.filterProducts(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.filterProducts(ctx, f).
		Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("quantity_mg ASC") }).
		Order("featured DESC").Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchProducts is the store-side text search used when no search index is
// configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "available = ? AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(COALESCE(cas_number, '')) LIKE ?)"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where(where, true, like, like, like).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(where, true, like, like, like).
		Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	ordered := make([]models.Product, 0, len(items))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Category != nil {
		prod.Category = *req.Category
	}
	if req.BasePrice != nil {
		prod.BasePrice = *req.BasePrice
	}
	if req.ClearDiscount {
		prod.DiscountPrice = decimal.NullDecimal{}
		prod.DiscountStartDate = nil
		prod.DiscountEndDate = nil
		prod.DiscountActive = false
	}
	if req.DiscountPrice != nil {
		prod.DiscountPrice.Decimal = *req.DiscountPrice
		prod.DiscountPrice.Valid = true
	}
	if req.DiscountStartDate != nil {
		prod.DiscountStartDate = req.DiscountStartDate
	}
	if req.DiscountEndDate != nil {
		prod.DiscountEndDate = req.DiscountEndDate
	}
	if req.DiscountActive != nil {
		prod.DiscountActive = *req.DiscountActive
	}
	if req.PurityPercentage != nil {
		prod.PurityPercentage = *req.PurityPercentage
	}
	if req.MolecularWeight != nil {
		prod.MolecularWeight = req.MolecularWeight
	}
	if req.CASNumber != nil {
		prod.CASNumber = req.CASNumber
	}
	if req.Sequence != nil {
		prod.Sequence = req.Sequence
	}
	if req.StorageConditions != nil {
		prod.StorageConditions = *req.StorageConditions
	}
	if req.StockQuantity != nil {
		prod.StockQuantity = *req.StockQuantity
	}
	if req.Available != nil {
		prod.Available = *req.Available
	}
	if req.Featured != nil {
		prod.Featured = *req.Featured
	}
	if req.ImageURL != nil {
		prod.ImageURL = req.ImageURL
	}
	if req.SafetySheetURL != nil {
		prod.SafetySheetURL = req.SafetySheetURL
	}

	if err := r.DB.WithContext(ctx).Omit("Variations").Save(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariation{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) SetProductStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("stock_quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CreateVariation(ctx context.Context, v *models.ProductVariation) (*models.ProductVariation, error) {
	if err := r.DB.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (r *GormRepo) PatchVariation(ctx context.Context, req transport.PatchVariationRequest, id uuid.UUID) (*models.ProductVariation, error) {
	var v models.ProductVariation
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.QuantityMg != nil {
		v.QuantityMg = *req.QuantityMg
	}
	if req.Price != nil {
		v.Price = *req.Price
	}
	if req.StockQuantity != nil {
		v.StockQuantity = *req.StockQuantity
	}

	if err := r.DB.WithContext(ctx).Save(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) DeleteVariation(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductVariation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetVariationStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.ProductVariation{}).Where("id = ?", id).Update("stock_quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
