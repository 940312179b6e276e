package memstore

import (
	"context"
	"errors"

	"gadgethub/models"
	"gadgethub/users"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore enforces the same unique email and phone constraints as the
// MongoDB indexes.
type UserStore struct {
	coll collection
}

func NewUserStore() *UserStore {
	return &UserStore{coll: collection{unique: []string{"email", "phone"}}}
}

func (s *UserStore) FindOne(ctx context.Context, filter bson.M) (*models.User, error) {
	docs := s.coll.find(filter, 0, 1, false)
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeUser(docs[0])
}

func (s *UserStore) Find(_ context.Context, filter bson.M) ([]models.User, error) {
	docs := s.coll.find(filter, 0, 0, true)
	out := make([]models.User, 0, len(docs))
	for _, d := range docs {
		u, err := decodeUser(d)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

func (s *UserStore) Count(_ context.Context, filter bson.M) (int64, error) {
	return s.coll.count(filter), nil
}

func (s *UserStore) Insert(_ context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	d, err := toDoc(u)
	if err != nil {
		return err
	}
	return userErr(s.coll.insert(d))
}

func (s *UserStore) UpdateOne(_ context.Context, filter bson.M, set bson.M) (*models.User, error) {
	d, err := s.coll.update(filter, set, normalizeAs[models.User])
	if err != nil || d == nil {
		return nil, userErr(err)
	}
	return decodeUser(d)
}

func (s *UserStore) DeleteOne(_ context.Context, filter bson.M) (bool, error) {
	return s.coll.delete(filter), nil
}

func decodeUser(d bson.M) (*models.User, error) {
	var u models.User
	if err := fromDoc(d, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func userErr(err error) error {
	if errors.Is(err, errDuplicate) {
		return users.ErrDuplicate
	}
	return err
}
