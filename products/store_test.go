package products

import (
	"testing"

	"gadgethub/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestQueryFilter(t *testing.T) {
	inStock := true
	lo, hi := 100.0, 500.0

	t.Run("empty query only excludes deleted", func(t *testing.T) {
		assert.Equal(t, bson.M{"isDeleted": false}, QueryFilter(models.ProductQuery{}))
	})

	t.Run("all fields", func(t *testing.T) {
		got := QueryFilter(models.ProductQuery{
			Category:  "phone",
			Brand:     "Apple",
			Condition: models.ConditionBrandNew,
			InStock:   &inStock,
			MinPrice:  &lo,
			MaxPrice:  &hi,
		})
		assert.Equal(t, bson.M{
			"isDeleted": false,
			"category":  "phone",
			"brand":     "Apple",
			"condition": "Brand New",
			"inStock":   true,
			"price":     bson.M{"$gte": 100.0, "$lte": 500.0},
		}, got)
	})

	t.Run("single price bound", func(t *testing.T) {
		got := QueryFilter(models.ProductQuery{MaxPrice: &hi})
		assert.Equal(t, bson.M{"$lte": 500.0}, got["price"])
	})
}

func TestSearchFilterQuotesInput(t *testing.T) {
	got := SearchFilter("iphone (pro)")
	or, ok := got["$or"].(bson.A)
	if !assert.True(t, ok) {
		return
	}
	assert.Len(t, or, 2)
	assert.Equal(t, bson.M{"name": primitive.Regex{Pattern: `iphone \(pro\)`, Options: "i"}}, or[0])
	assert.Equal(t, false, got["isDeleted"])
}

func TestPromoFilter(t *testing.T) {
	assert.Equal(t, bson.M{
		"isDeleted":  false,
		"inStock":    true,
		"promoPrice": bson.M{"$exists": true, "$ne": nil},
	}, PromoFilter())
}

func TestMetricFiltersSkipDeleted(t *testing.T) {
	total, inStock, featured, promo := MetricFilters()
	for _, f := range []bson.M{total, inStock, featured, promo} {
		assert.Equal(t, false, f["isDeleted"])
	}
	assert.Equal(t, true, inStock["inStock"])
	assert.Equal(t, true, featured["featured"])
	assert.NotContains(t, featured, "inStock")
	assert.Equal(t, bson.M{"$ne": nil}, promo["promoPrice"])
}
