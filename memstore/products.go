package memstore

import (
	"context"

	"gadgethub/models"
	"gadgethub/products"

	"go.mongodb.org/mongo-driver/bson"
)

// ProductStore implements products.Store by evaluating the same filter
// documents MongoDB would receive.
type ProductStore struct {
	coll collection
}

func NewProductStore() *ProductStore {
	return &ProductStore{}
}

func (s *ProductStore) Find(_ context.Context, filter bson.M, o products.FindOptions) ([]models.Product, error) {
	docs := s.coll.find(filter, o.Skip, o.Limit, o.NewestFirst)
	out := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		var p models.Product
		if err := fromDoc(d, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *ProductStore) Count(_ context.Context, filter bson.M) (int64, error) {
	return s.coll.count(filter), nil
}

func (s *ProductStore) FindOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	found, err := s.Find(ctx, filter, products.FindOptions{Limit: 1})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (s *ProductStore) InsertMany(_ context.Context, ps []*models.Product) error {
	docs := make([]bson.M, 0, len(ps))
	for _, p := range ps {
		d, err := toDoc(p)
		if err != nil {
			return err
		}
		docs = append(docs, d)
	}
	return s.coll.insert(docs...)
}

func (s *ProductStore) UpdateOne(_ context.Context, filter bson.M, set bson.M) (*models.Product, error) {
	d, err := s.coll.update(filter, set, normalizeAs[models.Product])
	if err != nil || d == nil {
		return nil, err
	}
	var p models.Product
	if err := fromDoc(d, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
