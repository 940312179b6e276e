//go:build integration

package orders_test

import (
	"context"
	"testing"
	"time"

	"gadgethub/models"
	"gadgethub/orders"
	"gadgethub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoOrderStore(t *testing.T) {
	database := testutil.StartMongo(t)
	store := orders.NewMongoStore(database.OrderCollection)
	ctx := context.Background()

	user := primitive.NewObjectID()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []primitive.ObjectID
	for i, amount := range []float64{100, 250.5, 75} {
		o := &models.Order{
			ID:              primitive.NewObjectID(),
			User:            user,
			Products:        []models.OrderLine{{Product: primitive.NewObjectID(), Quantity: 1, Price: amount}},
			TotalAmount:     amount,
			ShippingAddress: "1 Test Street",
			PaymentStatus:   models.PaymentPending,
			OrderStatus:     models.OrderProcessing,
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Insert(ctx, o))
		ids = append(ids, o.ID)
	}

	mine, err := store.FindByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, ids[2], mine[0].ID, "newest first")

	paid := models.PaymentPaid
	updated, err := store.SetStatus(ctx, ids[1], models.StatusUpdate{PaymentStatus: &paid}, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, models.OrderProcessing, updated.OrderStatus)

	missing, err := store.SetStatus(ctx, primitive.NewObjectID(), models.StatusUpdate{PaymentStatus: &paid}, base)
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, sales, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, 250.5, sales)
}
