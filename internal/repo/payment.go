package repo

import (
	"context"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"gorm.io/gorm"
)

func (r *GormRepo) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	q := r.DB.WithContext(ctx).Model(&models.PaymentMethod{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var items []models.PaymentMethod
	if err := q.Order("sort_order ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&pm).Error; err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *GormRepo) CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.DB.WithContext(ctx).Create(pm).Error; err != nil {
		return nil, err
	}
	return pm, nil
}

func (r *GormRepo) PatchPaymentMethod(ctx context.Context, req transport.PatchPaymentMethodRequest, id string) (*models.PaymentMethod, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.AccountNumber != nil {
		updates["account_number"] = *req.AccountNumber
	}
	if req.AccountName != nil {
		updates["account_name"] = *req.AccountName
	}
	if req.QRCodeURL != nil {
		updates["qr_code_url"] = *req.QRCodeURL
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.PaymentMethod{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetPaymentMethod(ctx, id)
}

func (r *GormRepo) DeletePaymentMethod(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.PaymentMethod{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
