package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gadgethub/admin"
	"gadgethub/memstore"
	"gadgethub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func price(v float64) *float64 { return &v }

func TestDashboardMetrics(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	ps := memstore.NewProductStore()
	require.NoError(t, ps.InsertMany(ctx, []*models.Product{
		{ID: primitive.NewObjectID(), Name: "A", Price: 100, InStock: true, Featured: true, PromoPrice: price(90), Category: models.CategoryPhone, Condition: models.ConditionBrandNew, CreatedAt: now},
		{ID: primitive.NewObjectID(), Name: "B", Price: 200, InStock: false, Featured: true, Category: models.CategoryPhone, Condition: models.ConditionBrandNew, CreatedAt: now},
		{ID: primitive.NewObjectID(), Name: "C", Price: 300, InStock: true, Category: models.CategoryPhone, Condition: models.ConditionBrandNew, CreatedAt: now},
		{ID: primitive.NewObjectID(), Name: "Gone", Price: 400, InStock: true, Featured: true, PromoPrice: price(1), IsDeleted: true, Category: models.CategoryPhone, Condition: models.ConditionBrandNew, CreatedAt: now},
	}))

	us := memstore.NewUserStore()
	require.NoError(t, us.Insert(ctx, &models.User{Name: "u", Email: "u@example.com", Phone: "0801", CreatedAt: now}))
	require.NoError(t, us.Insert(ctx, &models.User{Name: "v", Email: "v@example.com", Phone: "0802", CreatedAt: now}))

	ords := memstore.NewOrderStore()
	for _, o := range []models.Order{
		{TotalAmount: 100.10, PaymentStatus: models.PaymentPaid},
		{TotalAmount: 200.20, PaymentStatus: models.PaymentPaid},
		{TotalAmount: 999, PaymentStatus: models.PaymentPending},
		{TotalAmount: 50, PaymentStatus: models.PaymentFailed},
	} {
		o.CreatedAt = now
		require.NoError(t, ords.Insert(ctx, &o))
	}

	d := admin.NewDashboard(ps, us, ords)
	m, err := d.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardMetrics{
		TotalProducts:    3,
		InStockProducts:  2,
		FeaturedProducts: 2,
		PromoProducts:    1,
		TotalUsers:       2,
		TotalOrders:      4,
		Sales:            300.30,
	}, *m)

	rec := httptest.NewRecorder()
	d.GetMetrics(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                    `json:"success"`
		Data    models.DashboardMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.EqualValues(t, 3, body.Data.TotalProducts)
}

func TestDashboardEmpty(t *testing.T) {
	d := admin.NewDashboard(memstore.NewProductStore(), memstore.NewUserStore(), memstore.NewOrderStore())
	m, err := d.Metrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, *m)
}
