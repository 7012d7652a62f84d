package repo

import (
	"context"
	"database/sql"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *GormRepo) ListTestimonials(ctx context.Context, activeOnly bool) ([]models.Testimonial, error) {
	q := r.DB.WithContext(ctx).Model(&models.Testimonial{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var items []models.Testimonial
	if err := q.Order("display_order ASC").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetTestimonial(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MaxDisplayOrder returns the highest display_order and whether any
// testimonial exists.
func (r *GormRepo) MaxDisplayOrder(ctx context.Context) (int, bool, error) {
	var maxOrder sql.NullInt64
	if err := r.DB.WithContext(ctx).Model(&models.Testimonial{}).
		Select("MAX(display_order)").
		Row().Scan(&maxOrder); err != nil {
		return 0, false, err
	}
	if !maxOrder.Valid {
		return 0, false, nil
	}
	return int(maxOrder.Int64), true, nil
}

func (r *GormRepo) CreateTestimonial(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error) {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (r *GormRepo) PatchTestimonial(ctx context.Context, req transport.PatchTestimonialRequest, id uuid.UUID) (*models.Testimonial, error) {
	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Testimonial{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetTestimonial(ctx, id)
}

func (r *GormRepo) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Testimonial{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
