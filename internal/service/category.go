package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"gorm.io/gorm"
)

var (
	kebabID = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	nonSlug = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaces  = regexp.MustCompile(`\s+`)
	dashes  = regexp.MustCompile(`-+`)
)

// SlugFromName turns a display name into a kebab-case id,
// e.g. "Hot Drinks!" becomes "hot-drinks".
func SlugFromName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlug.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ValidKebabID(id string) bool {
	return kebabID.MatchString(id)
}

func resolveID(id, name string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = SlugFromName(name)
	}
	if !ValidKebabID(id) {
		return "", fmt.Errorf("%w: id must be kebab-case (e.g. \"hot-drinks\")", ErrValidation)
	}
	return id, nil
}

type CategoryService struct {
	Repo *repo.GormRepo
}

func (s *CategoryService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx, activeOnly)
}

func (s *CategoryService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Icon = strings.TrimSpace(req.Icon)
	if req.Name == "" || req.Icon == "" {
		return nil, fmt.Errorf("%w: name and icon required", ErrValidation)
	}
	id, err := resolveID(req.ID, req.Name)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetCategory(ctx, id); err == nil {
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, id)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &models.Category{
		ID:     id,
		Name:   req.Name,
		Icon:   req.Icon,
		Active: true,
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	} else {
		maxOrder, err := s.Repo.MaxCategorySortOrder(ctx)
		if err != nil {
			return nil, err
		}
		c.SortOrder = max(maxOrder, 0) + 1
	}

	created, err := s.Repo.CreateCategory(ctx, c)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, id)
		}
		return nil, err
	}
	return created, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, req transport.PatchCategoryRequest) (*models.Category, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Icon != nil && strings.TrimSpace(*req.Icon) == "" {
		return nil, fmt.Errorf("%w: icon cannot be empty", ErrValidation)
	}
	c, err := s.Repo.PatchCategory(ctx, req, id)
	if err != nil {
		return nil, notFound(err, "category")
	}
	return c, nil
}

// DeleteCategory refuses to remove a category that still has products.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.Repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q has %d products", ErrConflict, id, n)
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return notFound(err, "category")
	}
	return nil
}

func (s *CategoryService) ReorderCategories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids required", ErrValidation)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	if err := s.Repo.ReorderCategories(ctx, ids); err != nil {
		return notFound(err, "category")
	}
	return nil
}
