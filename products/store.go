package products

import (
	"context"
	"regexp"

	"gadgethub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindOptions controls paging and ordering of a Find. Zero values mean
// storage order and no limit.
type FindOptions struct {
	Skip        int64
	Limit       int64
	NewestFirst bool
}

// Store is the persistence boundary for products. Filters are MongoDB query
// documents built by this package.
type Store interface {
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]models.Product, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	// FindOne returns (nil, nil) when nothing matches.
	FindOne(ctx context.Context, filter bson.M) (*models.Product, error)
	InsertMany(ctx context.Context, products []*models.Product) error
	// UpdateOne applies $set to the first match and returns the updated
	// document, or (nil, nil) when nothing matched.
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*models.Product, error)
}

func activeFilter() bson.M {
	return bson.M{"isDeleted": false}
}

// QueryFilter builds the conjunctive filter for the advanced listing.
func QueryFilter(q models.ProductQuery) bson.M {
	filter := activeFilter()
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Brand != "" {
		filter["brand"] = q.Brand
	}
	if q.Condition != "" {
		filter["condition"] = q.Condition
	}
	if q.InStock != nil {
		filter["inStock"] = *q.InStock
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

// SearchFilter matches term as a literal, case-insensitive substring of the
// name or description.
func SearchFilter(term string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := activeFilter()
	filter["$or"] = bson.A{
		bson.M{"name": re},
		bson.M{"description": re},
	}
	return filter
}

func FeaturedFilter() bson.M {
	filter := activeFilter()
	filter["featured"] = true
	filter["inStock"] = true
	return filter
}

func PromoFilter() bson.M {
	filter := activeFilter()
	filter["promoPrice"] = bson.M{"$exists": true, "$ne": nil}
	filter["inStock"] = true
	return filter
}

// MetricFilters are the filters behind the dashboard's product counts. All
// of them skip soft-deleted products.
func MetricFilters() (total, inStock, featured, promo bson.M) {
	total = activeFilter()
	inStock = activeFilter()
	inStock["inStock"] = true
	featured = activeFilter()
	featured["featured"] = true
	promo = activeFilter()
	promo["promoPrice"] = bson.M{"$ne": nil}
	return total, inStock, featured, promo
}
