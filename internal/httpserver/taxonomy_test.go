package httpserver

import (
	"net/http"
	"testing"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := adminCookie(t)

	rec := env.do(t, http.MethodPost, "/admin/categories", map[string]any{"name": "Weight Loss", "icon": "scale"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "weight-loss", decode[models.Category](t, rec).ID)

	rec = env.do(t, http.MethodPost, "/admin/categories", map[string]any{"id": "weight-loss", "name": "Dup", "icon": "x"}, admin)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, "/admin/categories/order", map[string]any{"ids": []string{"weight-loss", "research"}}, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[page[models.Category]](t, rec)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "weight-loss", list.Data[0].ID)

	rec = env.do(t, http.MethodPatch, "/admin/categories/weight-loss", map[string]any{"active": false}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/categories", nil)
	assert.Len(t, decode[page[models.Category]](t, rec).Data, 1)

	env.seedProduct(t, "BPC-157", 1)
	require.Equal(t, http.StatusConflict, env.do(t, http.MethodDelete, "/admin/categories/research", nil, admin).Code)
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/admin/categories/weight-loss", nil, admin).Code)
}

func TestTestimonialEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := adminCookie(t)

	rec := env.do(t, http.MethodPost, "/admin/testimonials", map[string]any{"title": "Great", "image_url": "https://img/1.png"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Testimonial](t, rec)

	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/admin/testimonials", map[string]any{"title": "x"}, admin).Code)

	rec = env.do(t, http.MethodGet, "/testimonials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[page[models.Testimonial]](t, rec).Data, 1)

	rec = env.do(t, http.MethodPatch, "/admin/testimonials/"+created.ID.String(), map[string]any{"title": "Greater"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Greater", decode[models.Testimonial](t, rec).Title)

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/admin/testimonials/"+created.ID.String(), nil, admin).Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/admin/testimonials/"+created.ID.String(), nil, admin).Code)
}

func TestPaymentMethodEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := adminCookie(t)

	rec := env.do(t, http.MethodPost, "/admin/payment-methods", map[string]any{"name": "Bank Transfer", "account_number": "123"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPatch, "/admin/payment-methods/bank-transfer", map[string]any{"active": false}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/payment-methods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[page[models.PaymentMethod]](t, rec).Data)

	rec = env.do(t, http.MethodGet, "/admin/payment-methods", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[page[models.PaymentMethod]](t, rec).Data, 1)

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/admin/payment-methods/bank-transfer", nil, admin).Code)
}
