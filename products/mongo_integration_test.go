//go:build integration

package products_test

import (
	"context"
	"testing"

	"gadgethub/models"
	"gadgethub/products"
	"gadgethub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoProductQueries(t *testing.T) {
	database := testutil.StartMongo(t)
	svc := products.NewService(products.NewMongoStore(database.ProductCollection))
	ctx := context.Background()

	var in []products.ProductInput
	for i, p := range []float64{100, 200, 300, 400, 500} {
		in = append(in, products.ProductInput{
			Name:        []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}[i],
			Description: "phone (refurb)",
			Price:       ptr(p),
			Category:    models.CategoryPhone,
			Condition:   models.ConditionUKUsed,
		})
	}
	created, err := svc.BulkCreate(ctx, in)
	require.NoError(t, err)
	require.Len(t, created, 5)

	page, err := svc.FilteredQuery(ctx, models.ProductQuery{MinPrice: ptr(200.0), MaxPrice: ptr(400.0), Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	found, err := svc.Search(ctx, "(refurb)")
	require.NoError(t, err)
	assert.Len(t, found, 5, "regex metacharacters are literal")

	require.NoError(t, svc.SoftDelete(ctx, created[0].ID.Hex()))
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
