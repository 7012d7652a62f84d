package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutBody(productID uuid.UUID, qty int) map[string]any {
	return map[string]any{
		"customer_name":     "Ada Lovelace",
		"customer_email":    "ada@example.com",
		"customer_phone":    "555-0100",
		"shipping_address":  "1 Main St",
		"shipping_city":     "Springfield",
		"shipping_state":    "IL",
		"shipping_zip_code": "62701",
		"shipping_country":  "US",
		"items": []map[string]any{
			{"product_id": productID, "quantity": qty},
		},
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	admin := adminCookie(t)
	p := env.seedProduct(t, "BPC-157", 10)

	rec := env.do(t, http.MethodPost, "/orders", checkoutBody(p.ID, 3))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, decimal.NewFromInt(90).Equal(order.TotalAmount))

	rec = env.do(t, http.MethodPost, "/admin/orders/"+order.ID.String()+"/confirm", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Result{Success: true}, decode[service.Result](t, rec))

	got, err := env.Repo.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.StockQuantity)

	rec = env.do(t, http.MethodPost, "/admin/orders/"+order.ID.String()+"/confirm", nil, admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	res := decode[service.Result](t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, service.KindInvalidTransition, res.Kind)
	assert.Equal(t, "Order is already confirmed or completed", res.Error)

	rec = env.do(t, http.MethodGet, "/admin/orders/"+order.ID.String()+"/deductions", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	ledger := decode[struct {
		Data []models.StockDeduction `json:"data"`
	}](t, rec)
	require.Len(t, ledger.Data, 1)
	assert.Equal(t, models.DeductionApplied, ledger.Data[0].Status)

	rec = env.do(t, http.MethodPost, "/admin/orders/"+order.ID.String()+"/deductions/retry", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"applied": float64(0)}, decode[map[string]any](t, rec))

	rec = env.do(t, http.MethodPost, "/admin/orders/"+order.ID.String()+"/complete", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/orders/"+order.ID.String()+"/cancel", nil, admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Completed orders cannot be cancelled", decode[service.Result](t, rec).Error)

	rec = env.do(t, http.MethodGet, "/admin/orders/"+order.ID.String(), nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderStatusCompleted, detail.Status)
	require.Len(t, detail.Items, 1)
	require.NotNil(t, detail.Items[0].Product)
	assert.Equal(t, "BPC-157", detail.Items[0].Product.Name)
}

func TestLifecycleStatusMapping(t *testing.T) {
	env := newTestEnv(t)
	admin := adminCookie(t)

	rec := env.do(t, http.MethodPost, "/admin/orders/"+uuid.NewString()+"/confirm", nil, admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
	res := decode[service.Result](t, rec)
	assert.Equal(t, service.KindNotFound, res.Kind)
	assert.Equal(t, "Order not found", res.Error)

	rec = env.do(t, http.MethodPost, "/admin/orders/not-a-uuid/cancel", nil, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.KindValidation, decode[service.Result](t, rec).Kind)

	assert.Equal(t, http.StatusInternalServerError, resultStatus(service.Result{Kind: service.KindStoreFailure}))
}

func TestCancelKeepsStock(t *testing.T) {
	env := newTestEnv(t)
	admin := adminCookie(t)
	p := env.seedProduct(t, "TB-500", 5)

	rec := env.do(t, http.MethodPost, "/orders", checkoutBody(p.ID, 2))
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[models.Order](t, rec)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/admin/orders/"+order.ID.String()+"/confirm", nil, admin).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/admin/orders/"+order.ID.String()+"/cancel", nil, admin).Code)

	got, err := env.Repo.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Empty", 0)

	rec := env.do(t, http.MethodPost, "/orders", checkoutBody(p.ID, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := checkoutBody(p.ID, 1)
	body["customer_email"] = ""
	rec = env.do(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersFilter(t *testing.T) {
	env := newTestEnv(t)
	admin := adminCookie(t)
	p := env.seedProduct(t, "Semax", 10)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/orders", checkoutBody(p.ID, 1)).Code)

	rec := env.do(t, http.MethodGet, "/admin/orders?status=pending", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Data []models.Order `json:"data"`
	}](t, rec)
	assert.Len(t, list.Data, 1)

	rec = env.do(t, http.MethodGet, "/admin/orders?status=bogus", nil, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
