package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMatch(t *testing.T) {
	doc := bson.M{
		"name":       "iPhone 15",
		"price":      float64(1200),
		"stock":      int32(4),
		"isDeleted":  false,
		"promoPrice": nil,
		"category":   "phone",
	}

	cases := []struct {
		name   string
		filter bson.M
		want   bool
	}{
		{"empty", bson.M{}, true},
		{"equality", bson.M{"category": "phone", "isDeleted": false}, true},
		{"equality miss", bson.M{"category": "laptop"}, false},
		{"numeric kinds compare by value", bson.M{"stock": 4}, true},
		{"range", bson.M{"price": bson.M{"$gte": 1000.0, "$lte": 1200.0}}, true},
		{"range exclusive", bson.M{"price": bson.M{"$lt": 1200.0}}, false},
		{"ne nil on nil", bson.M{"promoPrice": bson.M{"$ne": nil}}, false},
		{"ne nil on missing", bson.M{"brand": bson.M{"$ne": nil}}, false},
		{"exists", bson.M{"brand": bson.M{"$exists": false}}, true},
		{"in", bson.M{"category": bson.M{"$in": []string{"tablet", "phone"}}}, true},
		{"regex", bson.M{"name": primitive.Regex{Pattern: "iphone", Options: "i"}}, true},
		{"regex case sensitive", bson.M{"name": primitive.Regex{Pattern: "iphone"}}, false},
		{"or", bson.M{"$or": bson.A{bson.M{"category": "laptop"}, bson.M{"price": 1200.0}}}, true},
		{"and", bson.M{"$and": bson.A{bson.M{"category": "phone"}, bson.M{"stock": bson.M{"$gt": 10}}}}, false},
		{"unknown operator", bson.M{"price": bson.M{"$mod": bson.A{2, 0}}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Match(doc, c.filter))
		})
	}
}

func TestCollectionUniqueAndPaging(t *testing.T) {
	c := collection{unique: []string{"email"}}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.insert(
		bson.M{"email": "a@x", "createdAt": base},
		bson.M{"email": "b@x", "createdAt": base.Add(time.Hour)},
		bson.M{"email": "c@x", "createdAt": base.Add(2 * time.Hour)},
	))

	err := c.insert(bson.M{"email": "d@x"}, bson.M{"email": "a@x"})
	assert.True(t, errors.Is(err, errDuplicate))
	assert.EqualValues(t, 3, c.count(bson.M{}), "failed batch inserts nothing")

	page := c.find(bson.M{}, 1, 1, true)
	require.Len(t, page, 1)
	assert.Equal(t, "b@x", page[0]["email"])
	assert.Empty(t, c.find(bson.M{}, 5, 0, false))

	assert.True(t, c.delete(bson.M{"email": "b@x"}))
	assert.False(t, c.delete(bson.M{"email": "b@x"}))
}

func TestRevocationListExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRevocationList()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, l.Revoke(ctx, "a", time.Minute))
	require.NoError(t, l.Revoke(ctx, "b", 0))

	revoked, _ := l.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = l.IsRevoked(ctx, "b")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = l.IsRevoked(ctx, "a")
	assert.False(t, revoked)
}
