package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) FindByUser(ctx context.Context, user primitive.ObjectID) (*models.Cart, error) {
	var c models.Cart
	err := s.coll.FindOne(ctx, bson.M{"user": user}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return &c, nil
}

// AddItem first tries $inc on an existing line that has room. If the cart
// has no such line it pushes one, upserting the cart; the unique index on
// user turns a concurrent first insert into a duplicate key error, after
// which the whole operation is retried once. A second duplicate means the
// line exists but is full.
func (s *MongoStore) AddItem(ctx context.Context, user, product primitive.ObjectID, quantity int, now time.Time) (*models.Cart, error) {
	if quantity > utils.MaxQuantity {
		return nil, ErrQuantityLimit
	}
	c, err := s.addItem(ctx, user, product, quantity, now)
	if mongo.IsDuplicateKeyError(err) {
		c, err = s.addItem(ctx, user, product, quantity, now)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrQuantityLimit
		}
	}
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return c, nil
}

func (s *MongoStore) addItem(ctx context.Context, user, product primitive.ObjectID, quantity int, now time.Time) (*models.Cart, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	c, err := s.findOneAndUpdate(ctx,
		bson.M{"user": user, "items": bson.M{"$elemMatch": bson.M{
			"product":  product,
			"quantity": bson.M{"$lte": utils.MaxQuantity - quantity},
		}}},
		bson.M{
			"$inc": bson.M{"items.$.quantity": quantity},
			"$set": bson.M{"updatedAt": now},
		},
		after,
	)
	if err != nil || c != nil {
		return c, err
	}

	return s.findOneAndUpdate(ctx,
		bson.M{"user": user, "items.product": bson.M{"$ne": product}},
		bson.M{
			"$push":        bson.M{"items": models.CartItem{Product: product, Quantity: quantity}},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		after.SetUpsert(true),
	)
}

func (s *MongoStore) SetQuantity(ctx context.Context, user, product primitive.ObjectID, quantity int, now time.Time) (*models.Cart, error) {
	c, err := s.findOneAndUpdate(ctx,
		bson.M{"user": user, "items.product": product},
		bson.M{"$set": bson.M{"items.$.quantity": quantity, "updatedAt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return c, nil
}

func (s *MongoStore) RemoveItem(ctx context.Context, user, product primitive.ObjectID, now time.Time) (*models.Cart, error) {
	c, err := s.findOneAndUpdate(ctx,
		bson.M{"user": user, "items.product": product},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product": product}},
			"$set":  bson.M{"updatedAt": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return c, nil
}

func (s *MongoStore) DeleteByUser(ctx context.Context, user primitive.ObjectID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"user": user}); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *MongoStore) TakeByUser(ctx context.Context, user primitive.ObjectID) (*models.Cart, error) {
	var c models.Cart
	err := s.coll.FindOneAndDelete(ctx, bson.M{"user": user, "items.0": bson.M{"$exists": true}}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take cart: %w", err)
	}
	return &c, nil
}

func (s *MongoStore) findOneAndUpdate(ctx context.Context, filter, update bson.M, opts *options.FindOneAndUpdateOptions) (*models.Cart, error) {
	var c models.Cart
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
