package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic, key, event})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if typed, ok := e.event.(interface{ EventType() string }); ok {
			out = append(out, typed.EventType())
		}
	}
	return out
}

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(testutil.NewDB(t))
}

func seedCategory(t *testing.T, r *repo.GormRepo, id string) {
	t.Helper()
	_, err := r.CreateCategory(context.Background(), &models.Category{ID: id, Name: id, Icon: "flask", Active: true})
	require.NoError(t, err)
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, stock int) *models.Product {
	t.Helper()
	p, err := r.CreateProduct(context.Background(), &models.Product{
		Name:             name,
		Category:         "research",
		BasePrice:        decimal.RequireFromString("40.00"),
		PurityPercentage: decimal.NewFromInt(99),
		StockQuantity:    stock,
		Available:        true,
	})
	require.NoError(t, err)
	return p
}

func seedVariation(t *testing.T, r *repo.GormRepo, productID uuid.UUID, name string, stock int) *models.ProductVariation {
	t.Helper()
	v, err := r.CreateVariation(context.Background(), &models.ProductVariation{
		ProductID:     productID,
		Name:          name,
		QuantityMg:    decimal.NewFromInt(10),
		Price:         decimal.RequireFromString("75.00"),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return v
}

type itemSpec struct {
	product   *models.Product
	variation *models.ProductVariation
	qty       int
}

func seedOrder(t *testing.T, r *repo.GormRepo, status models.OrderStatus, items ...itemSpec) *models.Order {
	t.Helper()
	o := &models.Order{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "555-0100",
		ShippingAddress: "1 Main St",
		ShippingCity:    "Springfield",
		ShippingState:   "IL",
		ShippingZipCode: "62701",
		ShippingCountry: "US",
		Status:          status,
	}
	total := decimal.Zero
	for _, it := range items {
		price := it.product.BasePrice
		oi := models.OrderItem{
			ProductID:    it.product.ID,
			ProductName:  it.product.Name,
			ProductPrice: it.product.BasePrice,
			Quantity:     it.qty,
		}
		if it.variation != nil {
			price = it.variation.Price
			oi.VariationID = &it.variation.ID
			oi.VariationName = &it.variation.Name
		}
		oi.UnitPrice = price
		oi.TotalPrice = price.Mul(decimal.NewFromInt(int64(it.qty)))
		total = total.Add(oi.TotalPrice)
		o.Items = append(o.Items, oi)
	}
	o.TotalAmount = total

	created, err := r.CreateOrder(context.Background(), o)
	require.NoError(t, err)
	return created
}

func productStock(t *testing.T, r *repo.GormRepo, id uuid.UUID) int {
	t.Helper()
	p, err := r.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func variationStock(t *testing.T, r *repo.GormRepo, id uuid.UUID) int {
	t.Helper()
	v, err := r.GetVariation(context.Background(), id)
	require.NoError(t, err)
	return v.StockQuantity
}

func newOrderService(t *testing.T) (*OrderService, *repo.GormRepo, *recordingPublisher) {
	t.Helper()
	r := newRepo(t)
	pub := &recordingPublisher{}
	return &OrderService{Repo: r, Events: pub, Now: func() time.Time { return fixedNow }}, r, pub
}
