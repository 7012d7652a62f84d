package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/cache"
	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductSearcher interface {
	Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error)
	Index(ctx context.Context, p *models.Product) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// StoreSearcher searches the relational store directly. Indexing is a no-op.
type StoreSearcher struct {
	Repo *repo.GormRepo
}

func (s StoreSearcher) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (StoreSearcher) Index(context.Context, *models.Product) error { return nil }

func (StoreSearcher) Remove(context.Context, uuid.UUID) error { return nil }

type CatalogService struct {
	Repo     *repo.GormRepo
	Searcher ProductSearcher
	Cache    cache.ListingCache
	Events   EventPublisher
}

func (s *CatalogService) listingCache() cache.ListingCache {
	if s.Cache == nil {
		return cache.Noop{}
	}
	return s.Cache
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// ListProducts returns one page of available products, served from the
// listing cache when possible.
func (s *CatalogService) ListProducts(ctx context.Context, category string, page, offset, limit int) (*transport.ProductPage, error) {
	l := logging.FromContext(ctx)
	key := cache.ListingKey(category, page, limit)

	cached, err := s.listingCache().Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn("listing_cache_get_failed", "key", key, "error", err)
	}

	total, items, err := s.Repo.ListProducts(ctx, transport.ProductFilter{Category: category, AvailableOnly: true}, offset, limit)
	if err != nil {
		return nil, err
	}
	result := &transport.ProductPage{Total: total, Items: items}

	if err := s.listingCache().Set(ctx, key, result); err != nil {
		l.Warn("listing_cache_set_failed", "key", key, "error", err)
	}
	return result, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

// GetPublicProduct hides products that are not available.
func (s *CatalogService) GetPublicProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Available {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	return p, nil
}

// SearchProducts queries the search index and falls back to the store when
// the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: q required", ErrValidation)
	}

	if s.Searcher != nil {
		total, items, err := s.Searcher.Search(ctx, query, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to store", "error", err)
	}
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *CatalogService) ListInventory(ctx context.Context, f transport.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	switch f.Stock {
	case "", "all", "in_stock", "out_of_stock", "low_stock":
	default:
		return 0, nil, fmt.Errorf("%w: unknown stock filter %q", ErrValidation, f.Stock)
	}
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func (s *CatalogService) InventoryStats(ctx context.Context) (*transport.InventoryStats, error) {
	return s.Repo.InventoryStats(ctx)
}

func validatePrice(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must be >= 0", ErrValidation, name)
	}
	return nil
}

func validateStock(qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: stock_quantity must be >= 0", ErrValidation)
	}
	return nil
}

func validateVariation(req transport.CreateVariationRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: variation name required", ErrValidation)
	}
	if !req.QuantityMg.IsPositive() {
		return fmt.Errorf("%w: quantity_mg must be > 0", ErrValidation)
	}
	if err := validatePrice("price", req.Price); err != nil {
		return err
	}
	return validateStock(req.StockQuantity)
}

func (s *CatalogService) checkCategory(ctx context.Context, id string) error {
	if _, err := s.Repo.GetCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown category %q", ErrValidation, id)
		}
		return err
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Category == "" {
		return nil, fmt.Errorf("%w: category required", ErrValidation)
	}
	if err := validatePrice("base_price", req.BasePrice); err != nil {
		return nil, err
	}
	if req.DiscountPrice.Valid {
		if err := validatePrice("discount_price", req.DiscountPrice.Decimal); err != nil {
			return nil, err
		}
	}
	if err := validateStock(req.StockQuantity); err != nil {
		return nil, err
	}
	for _, v := range req.Variations {
		if err := validateVariation(v); err != nil {
			return nil, err
		}
	}
	if err := s.checkCategory(ctx, req.Category); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		BasePrice:         req.BasePrice,
		DiscountPrice:     req.DiscountPrice,
		DiscountStartDate: req.DiscountStartDate,
		DiscountEndDate:   req.DiscountEndDate,
		DiscountActive:    req.DiscountActive,
		PurityPercentage:  decimal.NewFromInt(99),
		MolecularWeight:   req.MolecularWeight,
		CASNumber:         req.CASNumber,
		Sequence:          req.Sequence,
		StorageConditions: req.StorageConditions,
		StockQuantity:     req.StockQuantity,
		Available:         true,
		Featured:          req.Featured,
		ImageURL:          req.ImageURL,
		SafetySheetURL:    req.SafetySheetURL,
	}
	if req.PurityPercentage != nil {
		prod.PurityPercentage = *req.PurityPercentage
	}
	if req.Available != nil {
		prod.Available = *req.Available
	}
	for _, v := range req.Variations {
		prod.Variations = append(prod.Variations, models.ProductVariation{
			Name:          strings.TrimSpace(v.Name),
			QuantityMg:    v.QuantityMg,
			Price:         v.Price,
			StockQuantity: v.StockQuantity,
		})
	}

	created, err := s.Repo.CreateProduct(ctx, prod)
	if err != nil {
		return nil, err
	}
	s.productChanged(ctx, "product_created", created.ID)
	return created, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.BasePrice != nil {
		if err := validatePrice("base_price", *req.BasePrice); err != nil {
			return nil, err
		}
	}
	if req.DiscountPrice != nil {
		if err := validatePrice("discount_price", *req.DiscountPrice); err != nil {
			return nil, err
		}
	}
	if req.StockQuantity != nil {
		if err := validateStock(*req.StockQuantity); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if err := s.checkCategory(ctx, *req.Category); err != nil {
			return nil, err
		}
	}

	if _, err := s.Repo.PatchProduct(ctx, req, id); err != nil {
		return nil, notFound(err, "product")
	}
	s.productChanged(ctx, "product_updated", id)
	return s.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}
	s.productChanged(ctx, "product_deleted", id)
	return nil
}

func (s *CatalogService) SetProductStock(ctx context.Context, id uuid.UUID, qty int) (*models.Product, error) {
	if err := validateStock(qty); err != nil {
		return nil, err
	}
	if err := s.Repo.SetProductStock(ctx, id, qty); err != nil {
		return nil, notFound(err, "product")
	}
	s.productChanged(ctx, "product_stock_set", id)
	return s.GetProduct(ctx, id)
}

func (s *CatalogService) CreateVariation(ctx context.Context, productID uuid.UUID, req transport.CreateVariationRequest) (*models.ProductVariation, error) {
	if err := validateVariation(req); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, notFound(err, "product")
	}

	v, err := s.Repo.CreateVariation(ctx, &models.ProductVariation{
		ProductID:     productID,
		Name:          strings.TrimSpace(req.Name),
		QuantityMg:    req.QuantityMg,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		return nil, err
	}
	s.productChanged(ctx, "variation_created", productID)
	return v, nil
}

func (s *CatalogService) PatchVariation(ctx context.Context, req transport.PatchVariationRequest, id uuid.UUID) (*models.ProductVariation, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.QuantityMg != nil && !req.QuantityMg.IsPositive() {
		return nil, fmt.Errorf("%w: quantity_mg must be > 0", ErrValidation)
	}
	if req.Price != nil {
		if err := validatePrice("price", *req.Price); err != nil {
			return nil, err
		}
	}
	if req.StockQuantity != nil {
		if err := validateStock(*req.StockQuantity); err != nil {
			return nil, err
		}
	}

	v, err := s.Repo.PatchVariation(ctx, req, id)
	if err != nil {
		return nil, notFound(err, "variation")
	}
	s.productChanged(ctx, "variation_updated", v.ProductID)
	return v, nil
}

func (s *CatalogService) DeleteVariation(ctx context.Context, id uuid.UUID) error {
	v, err := s.Repo.GetVariation(ctx, id)
	if err != nil {
		return notFound(err, "variation")
	}
	if err := s.Repo.DeleteVariation(ctx, id); err != nil {
		return notFound(err, "variation")
	}
	s.productChanged(ctx, "variation_deleted", v.ProductID)
	return nil
}

func (s *CatalogService) SetVariationStock(ctx context.Context, id uuid.UUID, qty int) (*models.ProductVariation, error) {
	if err := validateStock(qty); err != nil {
		return nil, err
	}
	if err := s.Repo.SetVariationStock(ctx, id, qty); err != nil {
		return nil, notFound(err, "variation")
	}
	v, err := s.Repo.GetVariation(ctx, id)
	if err != nil {
		return nil, notFound(err, "variation")
	}
	s.productChanged(ctx, "variation_stock_set", v.ProductID)
	return v, nil
}

// StockDeducted refreshes listings and the search document after an order
// confirmation changed a product's stock.
func (s *CatalogService) StockDeducted(ctx context.Context, productID uuid.UUID) {
	s.productChanged(ctx, "product_stock_deducted", productID)
}

// productChanged drops cached listings, refreshes the search document and
// publishes a product event. Every step is best-effort.
func (s *CatalogService) productChanged(ctx context.Context, eventType string, id uuid.UUID) {
	l := logging.FromContext(ctx).With("product_id", id)

	if err := s.listingCache().Invalidate(ctx); err != nil {
		l.Warn("listing_cache_invalidate_failed", "error", err)
	}

	event := ProductEvent{Type: eventType, ProductID: id, At: time.Now().UTC()}
	if s.Searcher != nil {
		if eventType == "product_deleted" {
			if err := s.Searcher.Remove(ctx, id); err != nil {
				l.Warn("search_index_remove_failed", "error", err)
			}
		} else if p, err := s.Repo.GetProduct(ctx, id); err == nil {
			event.Name = p.Name
			if err := s.Searcher.Index(ctx, p); err != nil {
				l.Warn("search_index_update_failed", "error", err)
			}
		}
	}

	publish(ctx, s.Events, topicProductEvents, id.String(), event)
}

// ReindexAll pushes every product into the search index.
func (s *CatalogService) ReindexAll(ctx context.Context) (int, error) {
	if s.Searcher == nil {
		return 0, nil
	}
	const batch = 100
	n := 0
	for offset := 0; ; offset += batch {
		_, items, err := s.Repo.ListProducts(ctx, transport.ProductFilter{}, offset, batch)
		if err != nil {
			return n, err
		}
		for i := range items {
			if err := s.Searcher.Index(ctx, &items[i]); err != nil {
				return n, err
			}
			n++
		}
		if len(items) < batch {
			return n, nil
		}
	}
}
