package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/google/uuid"
)

type TestimonialService struct {
	Repo *repo.GormRepo
}

func (s *TestimonialService) ListTestimonials(ctx context.Context, activeOnly bool) ([]models.Testimonial, error) {
	return s.Repo.ListTestimonials(ctx, activeOnly)
}

func (s *TestimonialService) CreateTestimonial(ctx context.Context, req transport.TestimonialRequest) (*models.Testimonial, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.Title == "" || req.ImageURL == "" {
		return nil, fmt.Errorf("%w: title and image_url required", ErrValidation)
	}

	t := &models.Testimonial{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Active:      true,
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if req.DisplayOrder != nil {
		t.DisplayOrder = *req.DisplayOrder
	} else {
		maxOrder, exists, err := s.Repo.MaxDisplayOrder(ctx)
		if err != nil {
			return nil, err
		}
		if exists {
			t.DisplayOrder = max(maxOrder, 0) + 1
		}
	}

	return s.Repo.CreateTestimonial(ctx, t)
}

func (s *TestimonialService) UpdateTestimonial(ctx context.Context, id uuid.UUID, req transport.PatchTestimonialRequest) (*models.Testimonial, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if req.ImageURL != nil && strings.TrimSpace(*req.ImageURL) == "" {
		return nil, fmt.Errorf("%w: image_url cannot be empty", ErrValidation)
	}
	t, err := s.Repo.PatchTestimonial(ctx, req, id)
	if err != nil {
		return nil, notFound(err, "testimonial")
	}
	return t, nil
}

func (s *TestimonialService) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteTestimonial(ctx, id); err != nil {
		return notFound(err, "testimonial")
	}
	return nil
}
