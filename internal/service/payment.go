package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"gorm.io/gorm"
)

type PaymentService struct {
	Repo *repo.GormRepo
}

func (s *PaymentService) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	return s.Repo.ListPaymentMethods(ctx, activeOnly)
}

func (s *PaymentService) CreatePaymentMethod(ctx context.Context, req transport.PaymentMethodRequest) (*models.PaymentMethod, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	id, err := resolveID(req.ID, req.Name)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetPaymentMethod(ctx, id); err == nil {
		return nil, fmt.Errorf("%w: payment method %q already exists", ErrConflict, id)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pm := &models.PaymentMethod{
		ID:            id,
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		QRCodeURL:     req.QRCodeURL,
		Active:        true,
	}
	if req.Active != nil {
		pm.Active = *req.Active
	}
	if req.SortOrder != nil {
		pm.SortOrder = *req.SortOrder
	}

	created, err := s.Repo.CreatePaymentMethod(ctx, pm)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: payment method %q already exists", ErrConflict, id)
		}
		return nil, err
	}
	return created, nil
}

func (s *PaymentService) UpdatePaymentMethod(ctx context.Context, id string, req transport.PatchPaymentMethodRequest) (*models.PaymentMethod, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	pm, err := s.Repo.PatchPaymentMethod(ctx, req, id)
	if err != nil {
		return nil, notFound(err, "payment method")
	}
	return pm, nil
}

func (s *PaymentService) DeletePaymentMethod(ctx context.Context, id string) error {
	if err := s.Repo.DeletePaymentMethod(ctx, id); err != nil {
		return notFound(err, "payment method")
	}
	return nil
}
