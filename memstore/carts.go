package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"gadgethub/cart"
	"gadgethub/models"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartStore keeps one cart per user behind a single mutex, which gives each
// call the same atomicity a single-document MongoDB update has.
type CartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (s *CartStore) FindByUser(_ context.Context, user primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.carts[user]), nil
}

func (s *CartStore) AddItem(_ context.Context, user, product primitive.ObjectID, quantity int, now time.Time) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity > utils.MaxQuantity {
		return nil, cart.ErrQuantityLimit
	}
	c, ok := s.carts[user]
	if !ok {
		c = &models.Cart{ID: primitive.NewObjectID(), User: user, CreatedAt: now}
		s.carts[user] = c
	}
	if i := lineIndex(c, product); i >= 0 {
		if c.Items[i].Quantity > utils.MaxQuantity-quantity {
			return nil, cart.ErrQuantityLimit
		}
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, models.CartItem{Product: product, Quantity: quantity})
	}
	c.UpdatedAt = now
	return cloneCart(c), nil
}

func (s *CartStore) SetQuantity(_ context.Context, user, product primitive.ObjectID, quantity int, now time.Time) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[user]
	if !ok {
		return nil, nil
	}
	i := lineIndex(c, product)
	if i < 0 {
		return nil, nil
	}
	c.Items[i].Quantity = quantity
	c.UpdatedAt = now
	return cloneCart(c), nil
}

func (s *CartStore) RemoveItem(_ context.Context, user, product primitive.ObjectID, now time.Time) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[user]
	if !ok {
		return nil, nil
	}
	i := lineIndex(c, product)
	if i < 0 {
		return nil, nil
	}
	c.Items = slices.Delete(c.Items, i, i+1)
	c.UpdatedAt = now
	return cloneCart(c), nil
}

func (s *CartStore) DeleteByUser(_ context.Context, user primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, user)
	return nil
}

func (s *CartStore) TakeByUser(_ context.Context, user primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[user]
	if !ok || len(c.Items) == 0 {
		return nil, nil
	}
	delete(s.carts, user)
	return cloneCart(c), nil
}

func lineIndex(c *models.Cart, product primitive.ObjectID) int {
	return slices.IndexFunc(c.Items, func(it models.CartItem) bool { return it.Product == product })
}

func cloneCart(c *models.Cart) *models.Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = slices.Clone(c.Items)
	if out.Items == nil {
		out.Items = []models.CartItem{}
	}
	return &out
}
